package sqlstore

import (
	"context"
	"time"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

const messageColumns = `m.id, m.text, m."timestamp", m.user_id, u.username`

func (s *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	query := s.rebind(`INSERT INTO messages (text, "timestamp", user_id) VALUES (?, ?, ?) RETURNING id`)
	err := s.q.QueryRowContext(ctx, query, msg.Text, msg.Timestamp, msg.UserID).Scan(&msg.ID)
	return classify(err)
}

func (s *queries) GetMessage(ctx context.Context, id int) (*models.Message, error) {
	query := s.rebind("SELECT " + messageColumns + " FROM messages m JOIN users u ON u.id = m.user_id WHERE m.id = ?")
	var m models.Message
	err := s.q.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Text, &m.Timestamp, &m.UserID, &m.Username)
	if err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (s *queries) DeleteMessage(ctx context.Context, id int) error {
	return s.execOne(ctx, "DELETE FROM messages WHERE id = ?", id)
}

func (s *queries) ListUserMessages(ctx context.Context, userID, limit int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = ?
		ORDER BY m."timestamp" DESC, m.id DESC
		LIMIT ?
	`)
	return s.listMessages(ctx, query, userID, store.Limit(limit))
}

func (s *queries) Timeline(ctx context.Context, userID, limit int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = ?
		   OR m.user_id IN (SELECT f.user_being_followed_id FROM follows f WHERE f.user_following_id = ?)
		ORDER BY m."timestamp" DESC, m.id DESC
		LIMIT ?
	`)
	return s.listMessages(ctx, query, userID, userID, store.Limit(limit))
}

func (s *queries) ListLikedMessages(ctx context.Context, userID int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT ` + messageColumns + `
		FROM messages m
		JOIN users u ON u.id = m.user_id
		JOIN likes l ON l.message_id = m.id
		WHERE l.user_id = ?
		ORDER BY m."timestamp" DESC, m.id DESC
	`)
	return s.listMessages(ctx, query, userID)
}

func (s *queries) listMessages(ctx context.Context, query string, args ...any) ([]models.Message, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Text, &m.Timestamp, &m.UserID, &m.Username); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

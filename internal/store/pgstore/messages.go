package pgstore

import (
	"context"
	"time"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

const messageColumns = `m.id, m.text, m."timestamp", m.user_id, u.username`

func (q *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	err := q.tx.QueryRow(ctx, `INSERT INTO messages (text, "timestamp", user_id) VALUES ($1, $2, $3) RETURNING id`,
		msg.Text, msg.Timestamp, msg.UserID).Scan(&msg.ID)
	return classify(err)
}

func (q *queries) GetMessage(ctx context.Context, id int) (*models.Message, error) {
	var m models.Message
	err := q.tx.QueryRow(ctx,
		"SELECT "+messageColumns+" FROM messages m JOIN users u ON u.id = m.user_id WHERE m.id = $1", id,
	).Scan(&m.ID, &m.Text, &m.Timestamp, &m.UserID, &m.Username)
	if err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (q *queries) DeleteMessage(ctx context.Context, id int) error {
	return q.execOne(ctx, "DELETE FROM messages WHERE id = $1", id)
}

func (q *queries) ListUserMessages(ctx context.Context, userID, limit int) ([]models.Message, error) {
	return q.listMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1
		ORDER BY m."timestamp" DESC, m.id DESC
		LIMIT $2
	`, userID, store.Limit(limit))
}

func (q *queries) Timeline(ctx context.Context, userID, limit int) ([]models.Message, error) {
	return q.listMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1
		   OR m.user_id IN (SELECT f.user_being_followed_id FROM follows f WHERE f.user_following_id = $1)
		ORDER BY m."timestamp" DESC, m.id DESC
		LIMIT $2
	`, userID, store.Limit(limit))
}

func (q *queries) ListLikedMessages(ctx context.Context, userID int) ([]models.Message, error) {
	return q.listMessages(ctx, `
		SELECT `+messageColumns+`
		FROM messages m
		JOIN users u ON u.id = m.user_id
		JOIN likes l ON l.message_id = m.id
		WHERE l.user_id = $1
		ORDER BY m."timestamp" DESC, m.id DESC
	`, userID)
}

func (q *queries) listMessages(ctx context.Context, sql string, args ...any) ([]models.Message, error) {
	rows, err := q.tx.Query(ctx, sql, args...)
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
	return messages, classify(rows.Err())
}

package sqlstore

import (
	"context"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

func (s *queries) AddFollow(ctx context.Context, f models.Follows) error {
	_, err := s.exec(ctx, "INSERT INTO follows (user_being_followed_id, user_following_id) VALUES (?, ?)",
		f.UserBeingFollowedID, f.UserFollowingID)
	return err
}

func (s *queries) RemoveFollow(ctx context.Context, f models.Follows) error {
	return s.execOne(ctx, "DELETE FROM follows WHERE user_being_followed_id = ? AND user_following_id = ?",
		f.UserBeingFollowedID, f.UserFollowingID)
}

func (s *queries) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM follows WHERE user_following_id = ? AND user_being_followed_id = ?)")
	err := s.q.QueryRowContext(ctx, query, followerID, followedID).Scan(&exists)
	return exists, classify(err)
}

func (s *queries) ListFollowers(ctx context.Context, userID int) ([]models.User, error) {
	query := s.rebind(`
		SELECT ` + userColumns + `
		FROM users u
		JOIN follows f ON u.id = f.user_following_id
		WHERE f.user_being_followed_id = ?
		ORDER BY u.username
	`)
	return s.listUsers(ctx, query, userID)
}

func (s *queries) ListFollowing(ctx context.Context, userID int) ([]models.User, error) {
	query := s.rebind(`
		SELECT ` + userColumns + `
		FROM users u
		JOIN follows f ON u.id = f.user_being_followed_id
		WHERE f.user_following_id = ?
		ORDER BY u.username
	`)
	return s.listUsers(ctx, query, userID)
}

func (s *queries) AddLike(ctx context.Context, l models.Like) error {
	_, err := s.exec(ctx, "INSERT INTO likes (user_id, message_id) VALUES (?, ?)", l.UserID, l.MessageID)
	return err
}

func (s *queries) RemoveLike(ctx context.Context, l models.Like) error {
	return s.execOne(ctx, "DELETE FROM likes WHERE user_id = ? AND message_id = ?", l.UserID, l.MessageID)
}

func (s *queries) IsLiked(ctx context.Context, l models.Like) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = ? AND message_id = ?)")
	err := s.q.QueryRowContext(ctx, query, l.UserID, l.MessageID).Scan(&exists)
	return exists, classify(err)
}

func (s *queries) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	err := s.q.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM follows),
		(SELECT COUNT(*) FROM likes)`).Scan(&c.Users, &c.Messages, &c.Follows, &c.Likes)
	return c, classify(err)
}

func (s *queries) Purge(ctx context.Context) error {
	for _, table := range store.PurgeOrder {
		if _, err := s.exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

package pgstore

import (
	"context"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

func (q *queries) AddFollow(ctx context.Context, f models.Follows) error {
	_, err := q.exec(ctx, "INSERT INTO follows (user_being_followed_id, user_following_id) VALUES ($1, $2)",
		f.UserBeingFollowedID, f.UserFollowingID)
	return err
}

func (q *queries) RemoveFollow(ctx context.Context, f models.Follows) error {
	return q.execOne(ctx, "DELETE FROM follows WHERE user_being_followed_id = $1 AND user_following_id = $2",
		f.UserBeingFollowedID, f.UserFollowingID)
}

func (q *queries) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var exists bool
	err := q.tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM follows WHERE user_following_id = $1 AND user_being_followed_id = $2)",
		followerID, followedID).Scan(&exists)
	return exists, classify(err)
}

func (q *queries) ListFollowers(ctx context.Context, userID int) ([]models.User, error) {
	return q.listUsers(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN follows f ON u.id = f.user_following_id
		WHERE f.user_being_followed_id = $1
		ORDER BY u.username
	`, userID)
}

func (q *queries) ListFollowing(ctx context.Context, userID int) ([]models.User, error) {
	return q.listUsers(ctx, `
		SELECT `+userColumns+`
		FROM users u
		JOIN follows f ON u.id = f.user_being_followed_id
		WHERE f.user_following_id = $1
		ORDER BY u.username
	`, userID)
}

func (q *queries) AddLike(ctx context.Context, l models.Like) error {
	_, err := q.exec(ctx, "INSERT INTO likes (user_id, message_id) VALUES ($1, $2)", l.UserID, l.MessageID)
	return err
}

func (q *queries) RemoveLike(ctx context.Context, l models.Like) error {
	return q.execOne(ctx, "DELETE FROM likes WHERE user_id = $1 AND message_id = $2", l.UserID, l.MessageID)
}

func (q *queries) IsLiked(ctx context.Context, l models.Like) (bool, error) {
	var exists bool
	err := q.tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND message_id = $2)",
		l.UserID, l.MessageID).Scan(&exists)
	return exists, classify(err)
}

func (q *queries) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	err := q.tx.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM messages),
		(SELECT COUNT(*) FROM follows),
		(SELECT COUNT(*) FROM likes)`).Scan(&c.Users, &c.Messages, &c.Follows, &c.Likes)
	return c, classify(err)
}

func (q *queries) Purge(ctx context.Context) error {
	for _, table := range store.PurgeOrder {
		if _, err := q.exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

const messageColumns = `m.id, m.text, m."timestamp", m.user_id, u.username`

func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	row := newUserRow(user)
	row.ID = 0
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return classify(err)
	}
	user.ID = row.ID
	return nil
}

func (q *queries) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var row userRow
	if err := q.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		return nil, classify(err)
	}
	u := row.model()
	return &u, nil
}

func (q *queries) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return q.getUser(ctx, "id = ?", id)
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return q.getUser(ctx, "username = ?", username)
}

func (q *queries) UpdateUser(ctx context.Context, user *models.User) error {
	result := q.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":            user.Email,
		"username":         user.Username,
		"image_url":        user.ImageURL,
		"header_image_url": user.HeaderImageURL,
		"bio":              user.Bio,
		"location":         user.Location,
		"password":         user.Password,
	})
	return affectedOne(result)
}

func (q *queries) DeleteUser(ctx context.Context, id int) error {
	return affectedOne(q.db.WithContext(ctx).Delete(&userRow{}, id))
}

func (q *queries) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var rows []userRow
	err := q.db.WithContext(ctx).
		Table("users AS u").
		Where(store.SearchUsernameClause, store.SearchPattern(query)).
		Order("u.username").
		Limit(store.DefaultLimit).
		Find(&rows).Error
	return userModels(rows), classify(err)
}

func (q *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	row := messageRow{Text: msg.Text, Timestamp: msg.Timestamp, UserID: msg.UserID}
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		return classify(err)
	}
	msg.ID = row.ID
	return nil
}

// messages starts a query over messages joined with their authors.
func (q *queries) messages(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx).
		Table("messages AS m").
		Select(messageColumns).
		Joins("JOIN users u ON u.id = m.user_id")
}

func (q *queries) GetMessage(ctx context.Context, id int) (*models.Message, error) {
	var view messageView
	if err := q.messages(ctx).Where("m.id = ?", id).Take(&view).Error; err != nil {
		return nil, classify(err)
	}
	m := models.Message(view)
	return &m, nil
}

func (q *queries) DeleteMessage(ctx context.Context, id int) error {
	return affectedOne(q.db.WithContext(ctx).Delete(&messageRow{}, id))
}

func (q *queries) ListUserMessages(ctx context.Context, userID, limit int) ([]models.Message, error) {
	var views []messageView
	err := q.messages(ctx).
		Where("m.user_id = ?", userID).
		Order(`m."timestamp" DESC, m.id DESC`).
		Limit(store.Limit(limit)).
		Scan(&views).Error
	return messageModels(views), classify(err)
}

func (q *queries) Timeline(ctx context.Context, userID, limit int) ([]models.Message, error) {
	followed := q.db.Session(&gorm.Session{NewDB: true}).
		Model(&followRow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	var views []messageView
	err := q.messages(ctx).
		Where("m.user_id = ? OR m.user_id IN (?)", userID, followed).
		Order(`m."timestamp" DESC, m.id DESC`).
		Limit(store.Limit(limit)).
		Scan(&views).Error
	return messageModels(views), classify(err)
}

func (q *queries) ListLikedMessages(ctx context.Context, userID int) ([]models.Message, error) {
	var views []messageView
	err := q.messages(ctx).
		Joins("JOIN likes l ON l.message_id = m.id").
		Where("l.user_id = ?", userID).
		Order(`m."timestamp" DESC, m.id DESC`).
		Scan(&views).Error
	return messageModels(views), classify(err)
}

func (q *queries) AddFollow(ctx context.Context, f models.Follows) error {
	row := followRow(f)
	return classify(q.db.WithContext(ctx).Create(&row).Error)
}

func (q *queries) RemoveFollow(ctx context.Context, f models.Follows) error {
	return affectedOne(q.db.WithContext(ctx).
		Where("user_being_followed_id = ? AND user_following_id = ?", f.UserBeingFollowedID, f.UserFollowingID).
		Delete(&followRow{}))
}

func (q *queries) IsFollowing(ctx context.Context, followerID, followedID int) (bool, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&followRow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&n).Error
	return n > 0, classify(err)
}

func (q *queries) listFollowUsers(ctx context.Context, joinOn, where string, userID int) ([]models.User, error) {
	var rows []userRow
	err := q.db.WithContext(ctx).
		Select("users.*").
		Joins("JOIN follows ON "+joinOn).
		Where(where, userID).
		Order("users.username").
		Find(&rows).Error
	return userModels(rows), classify(err)
}

func (q *queries) ListFollowers(ctx context.Context, userID int) ([]models.User, error) {
	return q.listFollowUsers(ctx, "users.id = follows.user_following_id", "follows.user_being_followed_id = ?", userID)
}

func (q *queries) ListFollowing(ctx context.Context, userID int) ([]models.User, error) {
	return q.listFollowUsers(ctx, "users.id = follows.user_being_followed_id", "follows.user_following_id = ?", userID)
}

func (q *queries) AddLike(ctx context.Context, l models.Like) error {
	row := likeRow(l)
	return classify(q.db.WithContext(ctx).Create(&row).Error)
}

func (q *queries) RemoveLike(ctx context.Context, l models.Like) error {
	return affectedOne(q.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", l.UserID, l.MessageID).
		Delete(&likeRow{}))
}

func (q *queries) IsLiked(ctx context.Context, l models.Like) (bool, error) {
	var n int64
	err := q.db.WithContext(ctx).Model(&likeRow{}).
		Where("user_id = ? AND message_id = ?", l.UserID, l.MessageID).
		Count(&n).Error
	return n > 0, classify(err)
}

func (q *queries) Counts(ctx context.Context) (store.Counts, error) {
	var c store.Counts
	counts := []struct {
		model any
		dest  *int64
	}{
		{&userRow{}, &c.Users},
		{&messageRow{}, &c.Messages},
		{&followRow{}, &c.Follows},
		{&likeRow{}, &c.Likes},
	}
	for _, cnt := range counts {
		if err := q.db.WithContext(ctx).Model(cnt.model).Count(cnt.dest).Error; err != nil {
			return store.Counts{}, classify(err)
		}
	}
	return c, nil
}

func (q *queries) Purge(ctx context.Context) error {
	for _, table := range store.PurgeOrder {
		if err := q.db.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
			return classify(err)
		}
	}
	return nil
}

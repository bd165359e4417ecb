package gormstore

import (
	"time"

	"github.com/pliu/warbler/internal/models"
)

// Row types map the shared tables. The DDL comes from store.Schema, never
// from AutoMigrate.

type userRow struct {
	ID             int    `gorm:"primaryKey;column:id"`
	Email          string `gorm:"column:email"`
	Username       string `gorm:"column:username"`
	ImageURL       string `gorm:"column:image_url"`
	HeaderImageURL string `gorm:"column:header_image_url"`
	Bio            string `gorm:"column:bio"`
	Location       string `gorm:"column:location"`
	Password       string `gorm:"column:password"`
}

func (userRow) TableName() string { return "users" }

func newUserRow(u *models.User) userRow {
	return userRow{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		Location:       u.Location,
		Password:       u.Password,
	}
}

func (r userRow) model() models.User {
	return models.User{
		ID:             r.ID,
		Email:          r.Email,
		Username:       r.Username,
		ImageURL:       r.ImageURL,
		HeaderImageURL: r.HeaderImageURL,
		Bio:            r.Bio,
		Location:       r.Location,
		Password:       r.Password,
	}
}

func userModels(rows []userRow) []models.User {
	if len(rows) == 0 {
		return nil
	}
	users := make([]models.User, len(rows))
	for i, r := range rows {
		users[i] = r.model()
	}
	return users
}

type messageRow struct {
	ID        int       `gorm:"primaryKey;column:id"`
	Text      string    `gorm:"column:text"`
	Timestamp time.Time `gorm:"column:timestamp"`
	UserID    int       `gorm:"column:user_id"`
}

func (messageRow) TableName() string { return "messages" }

// messageView is a message joined with its author's username.
type messageView struct {
	ID        int       `gorm:"column:id"`
	Text      string    `gorm:"column:text"`
	Timestamp time.Time `gorm:"column:timestamp"`
	UserID    int       `gorm:"column:user_id"`
	Username  string    `gorm:"column:username"`
}

func messageModels(rows []messageView) []models.Message {
	if len(rows) == 0 {
		return nil
	}
	messages := make([]models.Message, len(rows))
	for i, r := range rows {
		messages[i] = models.Message(r)
	}
	return messages
}

type followRow struct {
	UserBeingFollowedID int `gorm:"primaryKey;autoIncrement:false;column:user_being_followed_id"`
	UserFollowingID     int `gorm:"primaryKey;autoIncrement:false;column:user_following_id"`
}

func (followRow) TableName() string { return "follows" }

type likeRow struct {
	UserID    int `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	MessageID int `gorm:"primaryKey;autoIncrement:false;column:message_id"`
}

func (likeRow) TableName() string { return "likes" }

package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"

	// MaxMessageLength is counted in runes.
	MaxMessageLength = 140
)

type User struct {
	ID             int    `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
	Password       string `json:"-"`

	// Loaded on demand, empty on a fresh value.
	Messages  []Message `json:"messages,omitempty"`
	Followers []User    `json:"followers,omitempty"`
	Following []User    `json:"following,omitempty"`
}

// NewUser returns an unsaved user with the default images filled in.
func NewUser(username, email, password string) *User {
	return &User{
		Username:       username,
		Email:          email,
		Password:       password,
		ImageURL:       DefaultImageURL,
		HeaderImageURL: DefaultHeaderImageURL,
	}
}

func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}

type Message struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username,omitempty"`
}

// Follows is a directed edge: UserFollowingID follows UserBeingFollowedID.
type Follows struct {
	UserBeingFollowedID int `json:"user_being_followed_id"`
	UserFollowingID     int `json:"user_following_id"`
}

type Like struct {
	UserID    int `json:"user_id"`
	MessageID int `json:"message_id"`
}

// MaskEmail hides most of the local part of an address for public listings.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local, domain := []rune(parts[0]), parts[1]
	length := len(local)
	visible := 1
	if length > 2 {
		visible = length / 2
		if visible > 3 {
			visible = 3
		}
	}
	if length == 0 {
		return "@" + domain
	}

	maskedLocal := string(local[:visible]) + strings.Repeat("*", length-visible)
	return maskedLocal + "@" + domain
}

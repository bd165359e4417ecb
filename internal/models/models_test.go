package models

import (
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	u := NewUser("testuser", "test@test.com", "HASHED_PASSWORD")

	// A fresh user has no messages and no followers.
	assert.Len(t, u.Messages, 0)
	assert.Len(t, u.Followers, 0)
	assert.Len(t, u.Following, 0)
	assert.Equal(t, DefaultImageURL, u.ImageURL)
	assert.Equal(t, DefaultHeaderImageURL, u.HeaderImageURL)
	assert.Zero(t, u.ID)
}

func TestUserString(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"unsaved", User{Username: "testuser", Email: "test@test.com"}, "<User #0: testuser, test@test.com>"},
		{"saved", User{ID: 42, Username: "alice", Email: "alice@example.com"}, "<User #42: alice, alice@example.com>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.String())
			assert.Equal(t, tt.want, fmt.Sprint(tt.user))
			assert.Equal(t, tt.want, fmt.Sprintf("%v", &tt.user))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"not-an-email", "not-an-email"},
		{"a@example.com", "a@example.com"},
		{"ab@example.com", "a*@example.com"},
		{"alice@example.com", "al***@example.com"},
		{"christopher@example.com", "chr********@example.com"},
		{"@example.com", "@example.com"},
		{"éloïse@example.com", "élo***@example.com"},
		{"日本@example.jp", "日*@example.jp"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := MaskEmail(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

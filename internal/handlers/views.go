package handlers

import "github.com/pliu/warbler/internal/models"

// publicUser is how other people see an account.
type publicUser struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

func newPublicUser(u models.User) publicUser {
	return publicUser{
		ID:             u.ID,
		Username:       u.Username,
		Email:          models.MaskEmail(u.Email),
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		Location:       u.Location,
	}
}

func newPublicUsers(users []models.User) []publicUser {
	out := make([]publicUser, len(users))
	for i, u := range users {
		out[i] = newPublicUser(u)
	}
	return out
}

type profileView struct {
	User           publicUser       `json:"user"`
	Messages       []models.Message `json:"messages"`
	FollowersCount int              `json:"followers_count"`
	FollowingCount int              `json:"following_count"`
}

func messagesOrEmpty(m []models.Message) []models.Message {
	if m == nil {
		return []models.Message{}
	}
	return m
}

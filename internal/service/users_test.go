package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

func TestNewUserServiceCost(t *testing.T) {
	assert.Equal(t, bcrypt.MinCost, NewUserService(bcrypt.MinCost).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewUserService(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewUserService(bcrypt.MaxCost+1).cost)
}

func TestUserModel(t *testing.T) {
	u := models.NewUser("testuser", "test@test.com", "HASHED_PASSWORD")

	assert.Empty(t, u.Messages)
	assert.Empty(t, u.Followers)
}

func TestUserSignup(t *testing.T) {
	tx := newTx(t)

	user, err := newUserService().Signup(ctx, tx, SignupParams{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "HASHED_PASSWORD",
	})
	require.NoError(t, err)

	stored, err := tx.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, user.Password, stored.Password)

	assert.NotEqual(t, "HASHED_PASSWORD", stored.Password)
	assert.True(t, auth.VerifyPassword(stored.Password, "HASHED_PASSWORD"))
	assert.Equal(t, models.DefaultImageURL, stored.ImageURL)
}

func TestUserSignupImageURL(t *testing.T) {
	tx := newTx(t)

	user, err := newUserService().Signup(ctx, tx, SignupParams{
		Username: "testuser",
		Email:    "test@test.com",
		Password: "password",
		ImageURL: "/static/images/me.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "/static/images/me.png", user.ImageURL)
}

func TestUserSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		p     SignupParams
		field string
	}{
		{"missing username", SignupParams{Email: "a@test.com", Password: "pw"}, "username"},
		{"blank username", SignupParams{Username: "  ", Email: "a@test.com", Password: "pw"}, "username"},
		{"missing email", SignupParams{Username: "a", Password: "pw"}, "email"},
		{"bad email", SignupParams{Username: "a", Email: "nope", Password: "pw"}, "email"},
		{"missing password", SignupParams{Username: "a", Email: "a@test.com"}, "password"},
		{"long password", SignupParams{Username: "a", Email: "a@test.com", Password: string(make([]byte, 73))}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newTx(t)
			_, err := newUserService().Signup(ctx, tx, tt.p)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestUserSignupDuplicate(t *testing.T) {
	tx := newTx(t)
	signup(t, tx, "testuser", "password")
	svc := newUserService()

	_, err := svc.Signup(ctx, tx, SignupParams{Username: "testuser", Email: "other@test.com", Password: "password"})
	assert.ErrorIs(t, err, ErrAccountTaken)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = svc.Signup(ctx, tx, SignupParams{Username: "other", Email: "testuser@test.com", Password: "password"})
	assert.ErrorIs(t, err, ErrAccountTaken)
}

func TestUserAuthenticate(t *testing.T) {
	tx := newTx(t)
	created := signup(t, tx, "testuser", "HASHED_PASSWORD")
	svc := newUserService()

	user, err := svc.Authenticate(ctx, tx, "testuser", "HASHED_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	user, err = svc.Authenticate(ctx, tx, "testuser", "badpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)

	user, err = svc.Authenticate(ctx, tx, "nobody", "HASHED_PASSWORD")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestUserAuthenticateTrimsUsername(t *testing.T) {
	tx := newTx(t)
	svc := newUserService()
	created, err := svc.Signup(ctx, tx, SignupParams{Username: " bob ", Email: "bob@test.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)

	for _, name := range []string{" bob ", "bob"} {
		user, err := svc.Authenticate(ctx, tx, name, "password")
		require.NoError(t, err, name)
		assert.Equal(t, created.ID, user.ID)
	}
}

func TestUnknownUserStillComparesHash(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		svc := NewUserService(cost)
		got, err := bcrypt.Cost([]byte(svc.dummyHash))
		require.NoError(t, err)
		assert.Equal(t, cost, got)
	}
}

func TestUserIsFollowing(t *testing.T) {
	tx := newTx(t)
	user1 := signup(t, tx, "testuser", "HASHED_PASSWORD")
	user2 := signup(t, tx, "testuser2", "another_password")
	user3 := signup(t, tx, "testuser3", "third_password")
	svc := newUserService()

	require.NoError(t, tx.AddFollow(ctx, models.Follows{UserBeingFollowedID: user1.ID, UserFollowingID: user2.ID}))
	require.NoError(t, tx.AddFollow(ctx, models.Follows{UserBeingFollowedID: user2.ID, UserFollowingID: user1.ID}))

	following, err := svc.IsFollowing(ctx, tx, user1.ID, user2.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = svc.IsFollowing(ctx, tx, user1.ID, user3.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUserIsFollowedBy(t *testing.T) {
	tx := newTx(t)
	user1 := signup(t, tx, "testuser", "HASHED_PASSWORD")
	user2 := signup(t, tx, "testuser2", "another_password")
	svc := newUserService()

	require.NoError(t, svc.Follow(ctx, tx, user2.ID, user1.ID))

	followedBy, err := svc.IsFollowedBy(ctx, tx, user1.ID, user2.ID)
	require.NoError(t, err)
	assert.True(t, followedBy)

	followedBy, err = svc.IsFollowedBy(ctx, tx, user2.ID, user1.ID)
	require.NoError(t, err)
	assert.False(t, followedBy)

	following, err := svc.IsFollowing(ctx, tx, user2.ID, user1.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestUserRepr(t *testing.T) {
	user := models.NewUser("testuser", "test@test.com", "HASHED_PASSWORD")

	assert.Equal(t, fmt.Sprintf("<User #%d: %s, %s>", user.ID, user.Username, user.Email), fmt.Sprint(user))
}

func TestFollowRules(t *testing.T) {
	tx := newTx(t)
	a := signup(t, tx, "alice", "password")
	b := signup(t, tx, "bob", "password")
	svc := newUserService()

	assert.ErrorIs(t, svc.Follow(ctx, tx, a.ID, a.ID), ErrSelfFollow)
	assert.ErrorIs(t, svc.Unfollow(ctx, tx, a.ID, a.ID), ErrSelfFollow)
	assert.ErrorIs(t, svc.Follow(ctx, tx, a.ID, 9999), store.ErrNotFound)
	assert.ErrorIs(t, svc.Follow(ctx, tx, 9999, b.ID), ErrAccountGone)
	assert.ErrorIs(t, svc.Unfollow(ctx, tx, 9999, b.ID), ErrAccountGone)

	require.NoError(t, svc.Follow(ctx, tx, a.ID, b.ID))
	assert.ErrorIs(t, svc.Follow(ctx, tx, a.ID, b.ID), store.ErrDuplicate)

	require.NoError(t, svc.Unfollow(ctx, tx, a.ID, b.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, tx, a.ID, b.ID), store.ErrNotFound)

	following, err := svc.IsFollowing(ctx, tx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestUpdateProfile(t *testing.T) {
	tx := newTx(t)
	user := signup(t, tx, "testuser", "password")
	signup(t, tx, "taken", "password")
	svc := newUserService()

	_, err := svc.UpdateProfile(ctx, tx, user.ID, "wrong", ProfileUpdate{Bio: "hi"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.UpdateProfile(ctx, tx, user.ID, "password", ProfileUpdate{Username: "taken"})
	assert.ErrorIs(t, err, ErrAccountTaken)

	_, err = svc.UpdateProfile(ctx, tx, user.ID, "password", ProfileUpdate{Email: "nope"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	updated, err := svc.UpdateProfile(ctx, tx, user.ID, "password", ProfileUpdate{
		Username: "renamed",
		Bio:      "Just warbling",
		Location: "Oakland",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "testuser@test.com", updated.Email)

	stored, err := tx.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", stored.Username)
	assert.Equal(t, "Just warbling", stored.Bio)
	assert.Equal(t, "Oakland", stored.Location)
	assert.Equal(t, models.DefaultImageURL, stored.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, stored.HeaderImageURL)

	_, err = svc.UpdateProfile(ctx, tx, 9999, "password", ProfileUpdate{})
	assert.ErrorIs(t, err, ErrAccountGone)
}

func TestProfile(t *testing.T) {
	tx := newTx(t)
	a := signup(t, tx, "alice", "password")
	b := signup(t, tx, "bob", "password")
	c := signup(t, tx, "carol", "password")
	svc := newUserService()
	messages := NewMessageService()

	require.NoError(t, svc.Follow(ctx, tx, a.ID, b.ID))
	require.NoError(t, svc.Follow(ctx, tx, c.ID, a.ID))
	_, err := messages.Post(ctx, tx, a.ID, "hello")
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, tx, a.ID)
	require.NoError(t, err)
	require.Len(t, profile.Messages, 1)
	assert.Equal(t, "hello", profile.Messages[0].Text)
	require.Len(t, profile.Following, 1)
	assert.Equal(t, "bob", profile.Following[0].Username)
	require.Len(t, profile.Followers, 1)
	assert.Equal(t, "carol", profile.Followers[0].Username)

	followers, err := svc.Followers(ctx, tx, a.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 1)
	following, err := svc.Following(ctx, tx, a.ID)
	require.NoError(t, err)
	assert.Len(t, following, 1)

	_, err = svc.Profile(ctx, tx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Followers(ctx, tx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSearch(t *testing.T) {
	tx := newTx(t)
	signup(t, tx, "warbler", "password")
	signup(t, tx, "warblette", "password")
	signup(t, tx, "robin", "password")

	users, err := newUserService().Search(ctx, tx, " warbl ")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "warbler", users[0].Username)
	assert.Equal(t, "warblette", users[1].Username)
}

func TestDeleteUser(t *testing.T) {
	tx := newTx(t)
	a := signup(t, tx, "alice", "password")
	b := signup(t, tx, "bob", "password")
	svc := newUserService()

	require.NoError(t, svc.Follow(ctx, tx, b.ID, a.ID))
	_, err := NewMessageService().Post(ctx, tx, a.ID, "bye")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, tx, a.ID))

	counts, err := tx.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Counts{Users: 1}, counts)

	assert.ErrorIs(t, svc.Delete(ctx, tx, a.ID), store.ErrNotFound)
}

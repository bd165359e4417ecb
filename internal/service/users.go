package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/store"
)

// bcrypt ignores everything past the first 72 bytes and newer versions
// refuse longer input outright.
const maxPasswordBytes = 72

// UserService holds the account and follow-graph rules. Every method runs
// against the caller's unit of work.
type UserService struct {
	cost int
	// dummyHash is checked for unknown usernames.
	dummyHash string
}

// NewUserService returns a UserService hashing with the given bcrypt cost.
// Out of range costs fall back to bcrypt.DefaultCost.
func NewUserService(cost int) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := auth.HashPassword("warbler-unknown-user", cost)
	if err != nil {
		panic(err)
	}
	return &UserService{cost: cost, dummyHash: dummy}
}

type SignupParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
}

// ProfileUpdate carries the editable profile fields. An empty Username or
// Email keeps the current value; empty image URLs reset to the defaults.
type ProfileUpdate struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", "is required")
	}
	if len(password) > maxPasswordBytes {
		return invalid("password", "must be at most 72 bytes")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return invalid("email", "is not a valid address")
	}
	return nil
}

// Signup hashes the password and inserts the user.
func (s *UserService) Signup(ctx context.Context, q store.Queries, p SignupParams) (*models.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username == "" {
		return nil, invalid("username", "is required")
	}
	if err := validateEmail(p.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(p.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(p.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(p.Username, p.Email, hash)
	if p.ImageURL != "" {
		user.ImageURL = p.ImageURL
	}
	if err := q.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAccountTaken
		}
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user when username and password match.
func (s *UserService) Authenticate(ctx context.Context, q store.Queries, username, password string) (*models.User, error) {
	user, err := q.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.VerifyPassword(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile applies upd after re-checking the user's current password.
func (s *UserService) UpdateProfile(ctx context.Context, q store.Queries, userID int, password string, upd ProfileUpdate) (*models.User, error) {
	user, err := q.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAccountGone
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	if u := strings.TrimSpace(upd.Username); u != "" {
		user.Username = u
	}
	if e := strings.TrimSpace(upd.Email); e != "" {
		if err := validateEmail(e); err != nil {
			return nil, err
		}
		user.Email = e
	}
	user.ImageURL = upd.ImageURL
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	user.HeaderImageURL = upd.HeaderImageURL
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}
	user.Bio = upd.Bio
	user.Location = upd.Location

	if err := q.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAccountTaken
		}
		return nil, err
	}
	return user, nil
}

// IsFollowing reports whether userID follows otherID.
func (s *UserService) IsFollowing(ctx context.Context, q store.Queries, userID, otherID int) (bool, error) {
	return q.IsFollowing(ctx, userID, otherID)
}

// IsFollowedBy reports whether otherID follows userID.
func (s *UserService) IsFollowedBy(ctx context.Context, q store.Queries, userID, otherID int) (bool, error) {
	return q.IsFollowing(ctx, otherID, userID)
}

func (s *UserService) Follow(ctx context.Context, q store.Queries, followerID, followedID int) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if err := requireAccount(ctx, q, followerID); err != nil {
		return err
	}
	if _, err := q.GetUserByID(ctx, followedID); err != nil {
		return err
	}
	return q.AddFollow(ctx, models.Follows{UserBeingFollowedID: followedID, UserFollowingID: followerID})
}

func (s *UserService) Unfollow(ctx context.Context, q store.Queries, followerID, followedID int) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	if err := requireAccount(ctx, q, followerID); err != nil {
		return err
	}
	return q.RemoveFollow(ctx, models.Follows{UserBeingFollowedID: followedID, UserFollowingID: followerID})
}

// Profile loads the user together with their messages, followers and follows.
func (s *UserService) Profile(ctx context.Context, q store.Queries, id int) (*models.User, error) {
	user, err := q.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Messages, err = q.ListUserMessages(ctx, id, store.DefaultLimit); err != nil {
		return nil, err
	}
	if user.Followers, err = q.ListFollowers(ctx, id); err != nil {
		return nil, err
	}
	if user.Following, err = q.ListFollowing(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Followers(ctx context.Context, q store.Queries, id int) ([]models.User, error) {
	if _, err := q.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	return q.ListFollowers(ctx, id)
}

func (s *UserService) Following(ctx context.Context, q store.Queries, id int) ([]models.User, error) {
	if _, err := q.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	return q.ListFollowing(ctx, id)
}

func (s *UserService) Search(ctx context.Context, q store.Queries, query string) ([]models.User, error) {
	return q.SearchUsers(ctx, strings.TrimSpace(query))
}

// Delete removes the user. Messages, follows and likes go with it.
func (s *UserService) Delete(ctx context.Context, q store.Queries, id int) error {
	return q.DeleteUser(ctx, id)
}

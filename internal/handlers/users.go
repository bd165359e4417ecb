package handlers

import (
	"context"
	"net/http"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/metrics"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/service"
	"github.com/pliu/warbler/internal/store"
)

type UserHandler struct {
	Store    store.Store
	Users    *service.UserService
	Messages *service.MessageService
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		users, err = h.Users.Search(r.Context(), tx, r.URL.Query().Get("q"))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPublicUsers(users))
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var user *models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		user, err = h.Users.Profile(r.Context(), tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileView{
		User:           newPublicUser(*user),
		Messages:       messagesOrEmpty(user.Messages),
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
	})
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request,
	list func(ctx context.Context, q store.Queries, id int) ([]models.User, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var users []models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		users, err = list(r.Context(), tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPublicUsers(users))
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.Users.Following)
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.Users.Followers)
}

func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var messages []models.Message
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		messages, err = h.Messages.Likes(r.Context(), tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesOrEmpty(messages))
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, "follow", h.Users.Follow)
}

func (h *UserHandler) StopFollowing(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, "unfollow", h.Users.Unfollow)
}

type followFunc func(ctx context.Context, q store.Queries, followerID, followedID int) error

func (h *UserHandler) changeFollow(w http.ResponseWriter, r *http.Request, action string, fn followFunc) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	otherID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		return fn(r.Context(), tx, userID, otherID)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.FollowsTotal.WithLabelValues(action).Inc()
	w.WriteHeader(http.StatusNoContent)
}

type ProfileRequest struct {
	Password string `json:"password"`
	service.ProfileUpdate
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !decode(w, r, &req) {
		return
	}

	var user *models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		user, err = h.Users.UpdateProfile(r.Context(), tx, userID, req.Password, req.ProfileUpdate)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		return h.Users.Delete(r.Context(), tx, userID)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, auth.ClearedCookie())
	w.WriteHeader(http.StatusNoContent)
}

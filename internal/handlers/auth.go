package handlers

import (
	"errors"
	"net/http"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/metrics"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/service"
	"github.com/pliu/warbler/internal/store"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Store  store.Store
	Users  *service.UserService
	Signer *auth.Signer
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupParams
	if !decode(w, r, &req) {
		return
	}

	var user *models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		user, err = h.Users.Signup(r.Context(), tx, req)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.SignupsTotal.Inc()
	http.SetCookie(w, h.Signer.SessionCookie(user.ID))
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if !decode(w, r, &creds) {
		return
	}

	var user *models.User
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		user, err = h.Users.Authenticate(r.Context(), tx, creds.Username, creds.Password)
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		writeError(w, r, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	http.SetCookie(w, h.Signer.SessionCookie(user.ID))
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedCookie())
	w.WriteHeader(http.StatusNoContent)
}

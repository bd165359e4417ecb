package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/pliu/warbler/internal/auth"
	"github.com/pliu/warbler/internal/middleware"
	"github.com/pliu/warbler/internal/service"
	"github.com/pliu/warbler/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps service and store errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrSelfFollow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, service.ErrAccountGone):
		http.SetCookie(w, auth.ClearedCookie())
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, service.ErrAccountTaken):
		http.Error(w, "Username or email already taken", http.StatusConflict)
	case errors.Is(err, store.ErrDuplicate):
		http.Error(w, "Already exists", http.StatusConflict)
	case errors.Is(err, store.ErrForeignKey):
		http.Error(w, "Referenced record does not exist", http.StatusConflict)
	case errors.Is(err, store.ErrConstraint):
		http.Error(w, "Invalid data", http.StatusBadRequest)
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// pathID reads the numeric {id} route variable.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// currentUser returns the id AuthMiddleware stored on the request.
func currentUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

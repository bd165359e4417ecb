package handlers

import (
	"net/http"
	"strconv"

	"github.com/pliu/warbler/internal/metrics"
	"github.com/pliu/warbler/internal/models"
	"github.com/pliu/warbler/internal/service"
	"github.com/pliu/warbler/internal/store"
)

type MessageHandler struct {
	Store    store.Store
	Messages *service.MessageService
}

type NewMessageRequest struct {
	Text string `json:"text"`
}

// Timeline lists the newest messages by the logged in user and everyone
// they follow. ?limit= caps the result.
func (h *MessageHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var messages []models.Message
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		messages, err = h.Messages.Timeline(r.Context(), tx, userID, limit)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messagesOrEmpty(messages))
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req NewMessageRequest
	if !decode(w, r, &req) {
		return
	}

	var msg *models.Message
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		msg, err = h.Messages.Post(r.Context(), tx, userID, req.Text)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	metrics.MessagesPostedTotal.Inc()
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var msg *models.Message
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		msg, err = h.Messages.Get(r.Context(), tx, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		return h.Messages.Delete(r.Context(), tx, userID, id)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var liked bool
	err := store.WithTx(r.Context(), h.Store, func(tx store.Tx) error {
		var err error
		liked, err = h.Messages.ToggleLike(r.Context(), tx, userID, id)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

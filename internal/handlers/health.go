package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/pliu/warbler/internal/store"
)

// Health reports whether a transaction can be opened against the database.
func Health(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tx, err := s.Begin(r.Context())
		if err != nil {
			log.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		_ = tx.Rollback()
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

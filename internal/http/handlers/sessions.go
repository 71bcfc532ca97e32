package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/session"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
)

func ActiveSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.ActiveSession(r.Context())
		if err != nil {
			writeError(w, err, "Failed to load active session")
			return
		}
		if sess == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type startSessionRequest struct {
	Date string `json:"date"`
}

func StartSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			log.Error("Failed to decode start session request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		sess, err := svc.StartSession(r.Context(), req.Date)
		if err != nil {
			writeError(w, err, "Failed to start session")
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// EndSessionHandler ends the session and triggers its snapshot. The snapshot
// outcome does not affect the response.
func EndSessionHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.EndSession(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err, "Failed to end session")
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

type checkInBody struct {
	PlayerID  string  `json:"playerId"`
	MaxRounds *int    `json:"maxRounds,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// CheckInHandler answers 201 for a new check-in and 200 when the player was
// already checked in.
func CheckInHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body checkInBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			log.Error("Failed to decode check-in request", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		checkIn, created, err := svc.CheckIn(r.Context(), session.CheckInRequest{
			SessionID: r.PathValue("id"),
			PlayerID:  body.PlayerID,
			MaxRounds: body.MaxRounds,
			Notes:     body.Notes,
		})
		if err != nil {
			writeError(w, err, "Failed to check in player")
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, checkIn)
	}
}

func CheckoutHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Checkout(r.Context(), r.PathValue("id"), r.PathValue("playerId")); err != nil {
			writeError(w, err, "Failed to check out player")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SnapshotHandler captures the snapshot of an ended session on demand. It is
// idempotent and returns the stored snapshot when one exists.
func SnapshotHandler(builder *snapshot.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if IsDryRunFromContext(r) {
			log.Info("[Dry Run] Would have snapshotted session", "session_id", r.PathValue("id"))
			w.Write([]byte("Snapshot not created (dry run)"))
			return
		}
		snap, err := builder.SnapshotSession(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err, "Failed to snapshot session")
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

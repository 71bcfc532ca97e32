package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/attendance"
	"github.com/marchalgreen/Rundeklar-sub002/internal/club"
	"github.com/marchalgreen/Rundeklar-sub002/internal/session"
	"github.com/marchalgreen/Rundeklar-sub002/internal/snapshot"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	return session.IsDryRun(r.Context())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes. Store failures are not
// echoed to the client.
func writeError(w http.ResponseWriter, err error, msg string) {
	status := http.StatusInternalServerError
	body := msg
	switch {
	case club.IsValidation(err):
		status, body = http.StatusBadRequest, err.Error()
	case club.IsNotFound(err):
		status, body = http.StatusNotFound, err.Error()
	case errors.Is(err, snapshot.ErrSessionNotEnded):
		status, body = http.StatusConflict, err.Error()
	default:
		log.Error(msg, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: body})
}

// filterFromQuery reads from, to and groups (comma separated).
func filterFromQuery(r *http.Request) attendance.Filter {
	q := r.URL.Query()
	return attendance.Filter{
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
		Groups:   splitList(q.Get("groups")),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// limitFromQuery reads a positive limit, falling back to def.
func limitFromQuery(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn("Invalid 'limit' parameter provided. Using default.", "limit_param", raw, "default", def)
		return def
	}
	return n
}

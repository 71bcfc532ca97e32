package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/marchalgreen/Rundeklar-sub002/internal/pubsub"
)

// Invalidator drops cached reads.
type Invalidator interface {
	Invalidate()
}

// SnapshotCreatedHandler receives snapshot-created push messages. Another
// instance wrote history, so the local cache is dropped.
func SnapshotCreatedHandler(cache Invalidator, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received snapshot created message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.SnapshotCreated
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			// Acknowledge anyway, redelivery would not decode either.
			log.Error("Dropping undecodable snapshot event", "error", err)
			w.Write([]byte("OK"))
			return
		}
		log.Info("Snapshot created elsewhere, invalidating cache", "session_id", event.SessionID, "snapshot_id", event.SnapshotID)
		if !IsDryRunFromContext(r) {
			cache.Invalidate()
		}
		w.Write([]byte("OK"))
	}
}

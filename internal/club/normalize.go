package club

import (
	"bytes"
	"encoding/json"

	"github.com/charmbracelet/log"
)

// maxEncodingDepth bounds how many layers of string-encoding CoerceArray unwraps.
const maxEncodingDepth = 3

var emptyArray = json.RawMessage("[]")

// CoerceArray returns raw as a JSON array. Historical rows may hold the array
// as a JSON string, sometimes encoded twice; those are unwrapped. Anything
// that does not resolve to a valid array becomes an empty array and ok is false.
func CoerceArray(raw []byte) (arr json.RawMessage, ok bool) {
	data := bytes.TrimSpace(raw)
	for depth := 0; depth <= maxEncodingDepth; depth++ {
		if len(data) == 0 {
			return emptyArray, false
		}
		switch data[0] {
		case '[':
			if !json.Valid(data) {
				return emptyArray, false
			}
			return data, true
		case '"':
			var inner string
			if err := json.Unmarshal(data, &inner); err != nil {
				return emptyArray, false
			}
			data = bytes.TrimSpace([]byte(inner))
		default:
			return emptyArray, false
		}
	}
	return emptyArray, false
}

// decodeArray decodes a JSON array column into a slice, never failing. Rows
// that cannot be decoded are logged and yield an empty slice.
func decodeArray[T any](raw []byte, column, rowID string) []T {
	out := []T{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out
	}
	arr, ok := CoerceArray(raw)
	if !ok {
		log.Warn("Normalized malformed array column to empty", "column", column, "id", rowID)
		return out
	}
	if err := json.Unmarshal(arr, &out); err != nil {
		log.Warn("Failed to decode array column, using empty", "column", column, "id", rowID, "error", err)
		return []T{}
	}
	return out
}

// UnmarshalJSON accepts the player id under both playerId and player_id.
func (c *CheckIn) UnmarshalJSON(data []byte) error {
	var raw rawCheckIn
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	playerID := raw.PlayerID
	if playerID == "" {
		playerID = raw.LegacyPlayerID
	}
	*c = CheckIn{
		ID:        raw.ID,
		SessionID: raw.SessionID,
		PlayerID:  playerID,
		CreatedAt: raw.CreatedAt,
		MaxRounds: raw.MaxRounds,
		Notes:     raw.Notes,
	}
	return nil
}

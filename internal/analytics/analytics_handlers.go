package analytics

import (
	"encoding/json"
	"net/http"

	"taskhub-backend/internal/response"
)

// SuggestionFeedbackHandler records whether the user acted on a suggestion.
// Only the suggestion kind and position are stored, not the text.
func SuggestionFeedbackHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Action   string `json:"action"`   // accepted|dismissed
			Kind     string `json:"kind"`     // lexical|clusters|combined
			Position int    `json:"position"` // zero based index in the served list
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		var event string
		switch body.Action {
		case "accepted":
			event = "suggestion_accepted"
		case "dismissed":
			event = "suggestion_dismissed"
		default:
			response.Error(w, http.StatusBadRequest, "action must be accepted or dismissed")
			return
		}

		switch body.Kind {
		case "lexical", "clusters", "combined":
		default:
			response.Error(w, http.StatusBadRequest, "kind must be lexical, clusters or combined")
			return
		}
		if body.Position < 0 {
			response.Error(w, http.StatusBadRequest, "position must not be negative")
			return
		}

		rec.Track(r, event, map[string]any{
			"kind":     body.Kind,
			"position": body.Position,
		})

		response.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

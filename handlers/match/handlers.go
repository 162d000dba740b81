package match

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/notifications"
	"meetmate/backend/services/llm"
	"meetmate/backend/services/matchmaker"

	"github.com/gorilla/mux"
)

// GenerateMatchesHandler runs the AI matchmaker for the authenticated user
// Used by: /api/matches/generate
// Response: {"matches": [...]}
func GenerateMatchesHandler(db *sql.DB, ai *llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req struct {
			EventID *string `json:"event_id"`
		}
		if r.Body != nil {
			// An empty body means an unscoped run; decode errors on an
			// otherwise-present body are still rejected.
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
				return
			}
		}

		matches, err := matchmaker.GenerateMatches(r.Context(), db, ai, userID, req.EventID)
		if err != nil {
			writeAIError(w, err, "Error generating matches")
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"matches": matches})
	}
}

// GetMatchesHandler returns stored matches for the authenticated user
func GetMatchesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var eventID *string
		if v := r.URL.Query().Get("event_id"); v != "" {
			eventID = &v
		}

		matches, err := matchmaker.StoredMatches(db, userID, eventID)
		if err != nil {
			log.Printf("Error fetching matches: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error fetching matches"})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{"matches": matches})
	}
}

// UpdateMatchStatusHandler accepts or rejects a match suggestion
func UpdateMatchStatusHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		matchID := mux.Vars(r)["id"]

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
			return
		}

		if req.Status != "accepted" && req.Status != "rejected" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Status must be 'accepted' or 'rejected'"})
			return
		}

		var matchedUserID string
		err = db.QueryRow(`
			UPDATE matches
			SET status = $1, updated_at = CURRENT_TIMESTAMP
			WHERE id = $2 AND user_id = $3
			RETURNING matched_user_id
		`, req.Status, matchID, userID).Scan(&matchedUserID)

		if err == sql.ErrNoRows {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Match not found"})
			return
		}
		if err != nil {
			log.Printf("Error updating match status: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Database error"})
			return
		}

		if req.Status == "accepted" {
			notifications.SendNotification(matchedUserID, "match_accepted")
		}

		json.NewEncoder(w).Encode(map[string]string{"status": req.Status})
	}
}

// writeAIError maps gateway failures onto the status codes the client keys
// its messaging on: 429 for rate limits, 402 for exhausted credits, 500
// otherwise.
func writeAIError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "Rate limit exceeded. Please try again later."})
	case errors.Is(err, llm.ErrQuotaExhausted):
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"error": "AI credits depleted. Please add credits."})
	default:
		log.Printf("%s: %v", fallback, err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": fallback})
	}
}

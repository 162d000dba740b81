package status

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"meetmate/backend/handlers/auth"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
)

// Status represents the matchmaking readiness of a profile
type Status struct {
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"` // "complete" or "incomplete"
	IsVisible  bool      `json:"is_visible"`
	LastUpdate time.Time `json:"last_update"`
}

// GetStatusHandler returns the profile status of a user
func GetStatusHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		vars := mux.Vars(r)
		userID := vars["id"]

		status, err := GetProfileStatus(db, userID)
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(status)
	}
}

// GetMyStatusHandler returns the profile status of the authenticated user
func GetMyStatusHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		status, err := GetProfileStatus(db, userID)
		if err == sql.ErrNoRows {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(status)
	}
}

// GetProfileStatus retrieves the stored status of a profile
func GetProfileStatus(db *sql.DB, userID string) (*Status, error) {
	var status Status
	err := db.QueryRow(`
		SELECT
			p.id,
			p.status,
			p.is_visible,
			CURRENT_TIMESTAMP as last_update
		FROM profiles p
		WHERE p.id = $1
	`, userID).Scan(&status.UserID, &status.Status, &status.IsVisible, &status.LastUpdate)

	if err != nil {
		return nil, err
	}

	return &status, nil
}

// UpdateProfileStatus recomputes a profile's status based on completion.
// A profile needs a name, a title or company, and at least one skill and
// interest before the matchmaker will consider it.
func UpdateProfileStatus(tx *sql.Tx, userID string) error {
	var profile struct {
		FullName  string
		Title     sql.NullString
		Company   sql.NullString
		Skills    []string
		Interests []string
	}

	err := tx.QueryRow(`
		SELECT
			full_name,
			title,
			company,
			skills,
			interests
		FROM profiles
		WHERE id = $1
	`, userID).Scan(
		&profile.FullName,
		&profile.Title,
		&profile.Company,
		pq.Array(&profile.Skills),
		pq.Array(&profile.Interests),
	)

	var newStatus string
	if err == sql.ErrNoRows {
		newStatus = "incomplete"
	} else if err != nil {
		return err
	} else if profile.FullName != "" &&
		(profile.Title.String != "" || profile.Company.String != "") &&
		len(profile.Skills) > 0 &&
		len(profile.Interests) > 0 {
		newStatus = "complete"
	} else {
		newStatus = "incomplete"
	}

	_, err = tx.Exec("UPDATE profiles SET status = $1 WHERE id = $2", newStatus, userID)
	return err
}

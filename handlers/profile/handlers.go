package profile

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/status"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
)

// GetMyProfileHandler returns the authenticated user's full profile
func GetMyProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var response ProfileResponse
		err = db.QueryRow(SelectProfileQuery, userID).Scan(
			&response.ID,
			&response.FullName,
			&response.Title,
			&response.Company,
			&response.Location,
			&response.Bio,
			pq.Array(&response.Skills),
			pq.Array(&response.Interests),
			pq.Array(&response.Goals),
			&response.LinkedinURL,
			&response.TwitterURL,
			&response.WebsiteURL,
			&response.AvatarURL,
			&response.IsVisible,
			&response.Status,
			&response.UpdatedAt,
		)

		if err == sql.ErrNoRows {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		} else if err != nil {
			log.Printf("Database error fetching profile for user %s: %v", userID, err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(response)
	}
}

// GetProfileHandler returns another attendee's public profile
func GetProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if _, err := auth.GetUserIDFromToken(r); err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		vars := mux.Vars(r)
		userID := vars["id"]

		var response PublicProfile
		err := db.QueryRow(SelectPublicProfileQuery, userID).Scan(
			&response.ID,
			&response.FullName,
			&response.Title,
			&response.Company,
			&response.Location,
			&response.Bio,
			pq.Array(&response.Skills),
			pq.Array(&response.Interests),
			&response.AvatarURL,
		)

		if err == sql.ErrNoRows {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		} else if err != nil {
			log.Printf("Database error fetching profile %s: %v", userID, err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(response)
	}
}

// ListAttendeesHandler returns the visible attendee directory
func ListAttendeesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(ListAttendeesQuery, userID)
		if err != nil {
			log.Printf("Error querying attendees: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		attendees := []PublicProfile{}
		for rows.Next() {
			var p PublicProfile
			err := rows.Scan(
				&p.ID,
				&p.FullName,
				&p.Title,
				&p.Company,
				&p.Location,
				&p.Bio,
				pq.Array(&p.Skills),
				pq.Array(&p.Interests),
				&p.AvatarURL,
			)
			if err != nil {
				log.Printf("Error scanning attendee: %v", err)
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			attendees = append(attendees, p)
		}

		if err = rows.Err(); err != nil {
			log.Printf("Error iterating attendees: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(attendees)
	}
}

// UpdateProfileHandler handles updating the authenticated user's profile
func UpdateProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		// Fetch the existing profile first so partial updates keep
		// unmentioned fields intact.
		var existing ProfileResponse
		err = db.QueryRow(SelectProfileQuery, userID).Scan(
			&existing.ID,
			&existing.FullName,
			&existing.Title,
			&existing.Company,
			&existing.Location,
			&existing.Bio,
			pq.Array(&existing.Skills),
			pq.Array(&existing.Interests),
			pq.Array(&existing.Goals),
			&existing.LinkedinURL,
			&existing.TwitterURL,
			&existing.WebsiteURL,
			&existing.AvatarURL,
			&existing.IsVisible,
			&existing.Status,
			&existing.UpdatedAt,
		)
		if err != nil {
			log.Printf("Error fetching existing profile: %v", err)
			http.Error(w, "Error fetching existing profile", http.StatusInternalServerError)
			return
		}

		var updateRequest struct {
			FullName    *string   `json:"full_name,omitempty"`
			Title       *string   `json:"title,omitempty"`
			Company     *string   `json:"company,omitempty"`
			Location    *string   `json:"location,omitempty"`
			Bio         *string   `json:"bio,omitempty"`
			Skills      *[]string `json:"skills,omitempty"`
			Interests   *[]string `json:"interests,omitempty"`
			Goals       *[]string `json:"goals,omitempty"`
			LinkedinURL *string   `json:"linkedin_url,omitempty"`
			TwitterURL  *string   `json:"twitter_url,omitempty"`
			WebsiteURL  *string   `json:"website_url,omitempty"`
			IsVisible   *bool     `json:"is_visible,omitempty"`
		}

		if err := json.NewDecoder(r.Body).Decode(&updateRequest); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if updateRequest.FullName != nil {
			existing.FullName = *updateRequest.FullName
		}
		if updateRequest.Title != nil {
			existing.Title = updateRequest.Title
		}
		if updateRequest.Company != nil {
			existing.Company = updateRequest.Company
		}
		if updateRequest.Location != nil {
			existing.Location = updateRequest.Location
		}
		if updateRequest.Bio != nil {
			existing.Bio = updateRequest.Bio
		}
		if updateRequest.Skills != nil {
			existing.Skills = *updateRequest.Skills
		}
		if updateRequest.Interests != nil {
			existing.Interests = *updateRequest.Interests
		}
		if updateRequest.Goals != nil {
			existing.Goals = *updateRequest.Goals
		}
		if updateRequest.LinkedinURL != nil {
			existing.LinkedinURL = updateRequest.LinkedinURL
		}
		if updateRequest.TwitterURL != nil {
			existing.TwitterURL = updateRequest.TwitterURL
		}
		if updateRequest.WebsiteURL != nil {
			existing.WebsiteURL = updateRequest.WebsiteURL
		}
		if updateRequest.IsVisible != nil {
			existing.IsVisible = *updateRequest.IsVisible
		}

		tx, err := db.Begin()
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		_, err = tx.Exec(UpdateProfileQuery,
			existing.FullName,
			existing.Title,
			existing.Company,
			existing.Location,
			existing.Bio,
			pq.Array(existing.Skills),
			pq.Array(existing.Interests),
			pq.Array(existing.Goals),
			existing.LinkedinURL,
			existing.TwitterURL,
			existing.WebsiteURL,
			existing.IsVisible,
			userID,
		)
		if err != nil {
			log.Printf("Error updating profile: %v", err)
			http.Error(w, "Error updating profile", http.StatusInternalServerError)
			return
		}

		if err := status.UpdateProfileStatus(tx, userID); err != nil {
			log.Printf("Error updating profile status: %v", err)
			http.Error(w, "Error updating profile status", http.StatusInternalServerError)
			return
		}

		if err = tx.Commit(); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(existing)
	}
}

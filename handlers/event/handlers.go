package event

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"meetmate/backend/handlers/auth"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// newJoinSlug mints an unguessable join link token
func newJoinSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func isOrganizer(db *sql.DB, userID string) bool {
	var ok bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role IN ('organizer', 'admin')
		)
	`, userID).Scan(&ok)
	return err == nil && ok
}

// CreateEventHandler creates an event with a fresh join slug. Organizer role
// required.
func CreateEventHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		if !isOrganizer(db, userID) {
			http.Error(w, "Organizer role required", http.StatusForbidden)
			return
		}

		var req CreateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.StartDate.IsZero() || req.EndDate.IsZero() {
			http.Error(w, "name, start_date and end_date are required", http.StatusBadRequest)
			return
		}
		if req.EndDate.Before(req.StartDate) {
			http.Error(w, "end_date must not precede start_date", http.StatusBadRequest)
			return
		}

		event := Event{
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			OrganizerID: userID,
			JoinSlug:    newJoinSlug(),
		}
		err = db.QueryRow(CreateEventQuery,
			event.Name, event.Description, event.Location,
			event.StartDate, event.EndDate, event.OrganizerID, event.JoinSlug,
		).Scan(&event.ID, &event.CreatedAt)
		if err != nil {
			log.Printf("Error creating event: %v", err)
			http.Error(w, "Failed to create event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(event)
	}
}

// ListEventsHandler lists all events with attendee counts
func ListEventsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(ListEventsQuery, userID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		events := []Event{}
		for rows.Next() {
			var e Event
			err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location,
				&e.StartDate, &e.EndDate, &e.OrganizerID, &e.JoinSlug,
				&e.AttendeeCount, &e.Joined, &e.CreatedAt)
			if err != nil {
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			events = append(events, e)
		}

		json.NewEncoder(w).Encode(events)
	}
}

// GetEventHandler returns a single event
func GetEventHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var e Event
		err = db.QueryRow(GetEventQuery, mux.Vars(r)["id"], userID).Scan(
			&e.ID, &e.Name, &e.Description, &e.Location,
			&e.StartDate, &e.EndDate, &e.OrganizerID, &e.JoinSlug,
			&e.AttendeeCount, &e.Joined, &e.CreatedAt)
		if err == sql.ErrNoRows {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(e)
	}
}

// UpdateEventHandler lets the organizer edit event details
func UpdateEventHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req CreateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.EndDate.Before(req.StartDate) {
			http.Error(w, "Invalid event details", http.StatusBadRequest)
			return
		}

		result, err := db.Exec(UpdateEventQuery,
			req.Name, req.Description, req.Location, req.StartDate, req.EndDate,
			mux.Vars(r)["id"], userID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// JoinEventHandler joins the caller to the event a slug points at.
// Re-joining is a no-op.
func JoinEventHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req struct {
			Slug string `json:"slug"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Slug == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var eventID, eventName string
		err = db.QueryRow(ResolveSlugQuery, req.Slug).Scan(&eventID, &eventName)
		if err == sql.ErrNoRows {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if _, err := db.Exec(JoinEventQuery, eventID, userID); err != nil {
			log.Printf("Error joining event: %v", err)
			http.Error(w, "Failed to join event", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"event_id":   eventID,
			"event_name": eventName,
		})
	}
}

// LeaveEventHandler removes the caller from the event
func LeaveEventHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		result, err := db.Exec(LeaveEventQuery, mux.Vars(r)["id"], userID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "Not attending this event", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// GetAttendeesHandler lists an event's visible attendees
func GetAttendeesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if _, err := auth.GetUserIDFromToken(r); err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(ListAttendeesQuery, mux.Vars(r)["id"])
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		attendees := []Attendee{}
		for rows.Next() {
			var a Attendee
			if err := rows.Scan(&a.UserID, &a.FullName, &a.Title, &a.Company, &a.JoinedAt); err != nil {
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			attendees = append(attendees, a)
		}

		json.NewEncoder(w).Encode(attendees)
	}
}

// RegenerateSlugHandler replaces the join slug, revoking shared links
func RegenerateSlugHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var slug string
		err = db.QueryRow(RegenerateSlugQuery, newJoinSlug(), mux.Vars(r)["id"], userID).Scan(&slug)
		if err == sql.ErrNoRows {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"join_slug": slug})
	}
}

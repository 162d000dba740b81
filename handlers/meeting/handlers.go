package meeting

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/notifications"
	"meetmate/backend/services/llm"
)

// MeetingsHandler dispatches the meetings endpoint's actions
// Used by: POST /api/meetings
func MeetingsHandler(db *sql.DB, ai *llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		switch req.Action {
		case "create":
			handleCreate(w, r, db, userID, req)
		case "suggest":
			handleSuggest(w, r, db, ai, userID, req)
		case "update":
			handleUpdate(w, db, userID, req)
		case "cancel":
			handleCancel(w, db, userID, req)
		default:
			http.Error(w, "Invalid action", http.StatusBadRequest)
		}
	}
}

func handleCreate(w http.ResponseWriter, r *http.Request, db *sql.DB, userID string, req ActionRequest) {
	if req.AttendeeID == "" || req.Title == "" || req.ScheduledAt == "" {
		http.Error(w, "attendee_id, title and scheduled_at are required", http.StatusBadRequest)
		return
	}
	if req.AttendeeID == userID {
		http.Error(w, "Cannot schedule a meeting with yourself", http.StatusBadRequest)
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		http.Error(w, "scheduled_at must be RFC 3339", http.StatusBadRequest)
		return
	}
	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 30
	}
	meetingType := req.MeetingType
	if meetingType == "" {
		meetingType = "video"
	}

	meeting := Meeting{
		OrganizerID:     userID,
		AttendeeID:      req.AttendeeID,
		Title:           req.Title,
		MeetingType:     meetingType,
		Location:        req.Location,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          "scheduled",
		EventID:         req.EventID,
	}
	err = db.QueryRow(CreateMeetingQuery,
		meeting.OrganizerID, meeting.AttendeeID, meeting.Title, meeting.MeetingType,
		meeting.Location, meeting.ScheduledAt, meeting.DurationMinutes, meeting.EventID,
	).Scan(&meeting.ID, &meeting.CreatedAt)
	if err != nil {
		log.Printf("Error creating meeting: %v", err)
		http.Error(w, "Failed to create meeting", http.StatusInternalServerError)
		return
	}

	// Side effects are best-effort; the meeting already exists
	_, err = db.Exec(`
		INSERT INTO notifications (user_id, type, title, message, data)
		VALUES ($1, 'meeting', 'New Meeting Scheduled', $2, $3)
	`, req.AttendeeID, fmt.Sprintf("You have a new meeting: %s", req.Title),
		mustJSON(map[string]string{"meeting_id": meeting.ID}))
	if err != nil {
		log.Printf("Error inserting meeting notification: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO analytics_events (user_id, event_id, event_type, event_data)
		VALUES ($1, $2, 'meeting_scheduled', $3)
	`, userID, req.EventID,
		mustJSON(map[string]string{"meeting_id": meeting.ID, "attendee_id": req.AttendeeID}))
	if err != nil {
		log.Printf("Error inserting meeting analytics event: %v", err)
	}

	notifications.SendNotification(req.AttendeeID, "new_meeting")

	json.NewEncoder(w).Encode(map[string]interface{}{"meeting": meeting})
}

func handleSuggest(w http.ResponseWriter, r *http.Request, db *sql.DB, ai *llm.Client, userID string, req ActionRequest) {
	if req.AttendeeID == "" {
		http.Error(w, "attendee_id is required", http.StatusBadRequest)
		return
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = 30
	}

	prompt := buildSuggestPrompt(db, userID, req.AttendeeID, duration)
	content, err := ai.ChatCompletion(r.Context(), []llm.Message{
		{Role: "system", Content: "You are a scheduling assistant. Return only valid JSON."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		writeAIError(w, err, "Failed to suggest meeting times")
		return
	}

	suggestions := []Suggestion{}
	if err := llm.ExtractJSONArray(content, &suggestions); err != nil {
		log.Printf("Could not parse meeting suggestions: %v", err)
		suggestions = []Suggestion{}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"suggestions": suggestions})
}

func handleUpdate(w http.ResponseWriter, db *sql.DB, userID string, req ActionRequest) {
	if req.MeetingID == "" {
		http.Error(w, "meeting_id is required", http.StatusBadRequest)
		return
	}

	meeting, ok := loadMeeting(w, db, req.MeetingID, userID)
	if !ok {
		return
	}

	if req.Title != "" {
		meeting.Title = req.Title
	}
	if req.MeetingType != "" {
		meeting.MeetingType = req.MeetingType
	}
	if req.Location != "" {
		meeting.Location = req.Location
	}
	if req.ScheduledAt != "" {
		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			http.Error(w, "scheduled_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		meeting.ScheduledAt = scheduledAt
	}
	if req.DurationMinutes > 0 {
		meeting.DurationMinutes = req.DurationMinutes
	}

	_, err := db.Exec(UpdateMeetingQuery,
		meeting.Title, meeting.MeetingType, meeting.Location,
		meeting.ScheduledAt, meeting.DurationMinutes, meeting.ID)
	if err != nil {
		log.Printf("Error updating meeting: %v", err)
		http.Error(w, "Failed to update meeting", http.StatusInternalServerError)
		return
	}
	meeting.Status = "rescheduled"

	notifications.SendNotification(otherParty(meeting, userID), "meeting_updated")
	json.NewEncoder(w).Encode(map[string]interface{}{"meeting": meeting})
}

func handleCancel(w http.ResponseWriter, db *sql.DB, userID string, req ActionRequest) {
	if req.MeetingID == "" {
		http.Error(w, "meeting_id is required", http.StatusBadRequest)
		return
	}

	meeting, ok := loadMeeting(w, db, req.MeetingID, userID)
	if !ok {
		return
	}

	if _, err := db.Exec(CancelMeetingQuery, meeting.ID); err != nil {
		log.Printf("Error cancelling meeting: %v", err)
		http.Error(w, "Failed to cancel meeting", http.StatusInternalServerError)
		return
	}
	meeting.Status = "cancelled"

	notifications.SendNotification(otherParty(meeting, userID), "meeting_cancelled")
	json.NewEncoder(w).Encode(map[string]interface{}{"meeting": meeting})
}

// GetMeetingsHandler lists the caller's meetings
// Used by: GET /api/meetings
func GetMeetingsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(ListMeetingsQuery, userID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		meetings := []Meeting{}
		for rows.Next() {
			var m Meeting
			err := rows.Scan(&m.ID, &m.OrganizerID, &m.AttendeeID, &m.Title,
				&m.MeetingType, &m.Location, &m.ScheduledAt, &m.DurationMinutes,
				&m.Status, &m.EventID, &m.OtherUserName, &m.CreatedAt)
			if err != nil {
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			meetings = append(meetings, m)
		}

		json.NewEncoder(w).Encode(meetings)
	}
}

// loadMeeting fetches a meeting only if the caller is a party to it.
// On failure it writes the response itself.
func loadMeeting(w http.ResponseWriter, db *sql.DB, meetingID, userID string) (Meeting, bool) {
	var m Meeting
	err := db.QueryRow(SelectMeetingQuery, meetingID, userID).Scan(
		&m.ID, &m.OrganizerID, &m.AttendeeID, &m.Title, &m.MeetingType,
		&m.Location, &m.ScheduledAt, &m.DurationMinutes, &m.Status,
		&m.EventID, &m.CreatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "Meeting not found", http.StatusNotFound)
		return Meeting{}, false
	}
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return Meeting{}, false
	}
	return m, true
}

func otherParty(m Meeting, userID string) string {
	if m.OrganizerID == userID {
		return m.AttendeeID
	}
	return m.OrganizerID
}

func buildSuggestPrompt(db *sql.DB, userID, attendeeID string, duration int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Given the existing meetings, suggest 3 optimal time slots for a new %d-minute meeting.\n\n", duration)
	fmt.Fprintf(&b, "Current time: %s\n\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("EXISTING MEETINGS:\n")
	b.WriteString(existingMeetings(db, userID, attendeeID))
	b.WriteString(`
CONSTRAINTS:
- Suggest slots within business hours (9 AM - 6 PM)
- Leave at least a 15 minute buffer around existing meetings
- Prefer morning slots
- Consider both participants' time zones

Return a JSON array of exactly 3 objects:
[{ "datetime": "ISO datetime string", "reason": "brief reason" }]

Only return valid JSON, no other text.`)
	return b.String()
}

func existingMeetings(db *sql.DB, userID, attendeeID string) string {
	rows, err := db.Query(UpcomingMeetingsQuery, userID, attendeeID)
	if err != nil {
		return "No existing meetings\n"
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var at time.Time
		var minutes int
		if err := rows.Scan(&at, &minutes); err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s (%d min)\n", at.UTC().Format(time.RFC3339), minutes)
	}
	if b.Len() == 0 {
		return "No existing meetings\n"
	}
	return b.String()
}

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

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

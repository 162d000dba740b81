package meeting

import "time"

// Meeting is a scheduled one-on-one between two attendees
type Meeting struct {
	ID              string    `json:"id"`
	OrganizerID     string    `json:"organizer_id"`
	AttendeeID      string    `json:"attendee_id"`
	Title           string    `json:"title"`
	MeetingType     string    `json:"meeting_type"`
	Location        string    `json:"location,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	EventID         *string   `json:"event_id,omitempty"`
	OtherUserName   string    `json:"other_user_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ActionRequest is the single meetings endpoint's dispatch envelope
type ActionRequest struct {
	Action          string  `json:"action"`
	MeetingID       string  `json:"meeting_id,omitempty"`
	AttendeeID      string  `json:"attendee_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	MeetingType     string  `json:"meeting_type,omitempty"`
	Location        string  `json:"location,omitempty"`
	ScheduledAt     string  `json:"scheduled_at,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	EventID         *string `json:"event_id,omitempty"`
}

// Suggestion is one AI-proposed meeting slot
type Suggestion struct {
	Datetime string `json:"datetime"`
	Reason   string `json:"reason"`
}

package event

import "time"

// Event is a conference or meetup attendees can join by slug
type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Location      string    `json:"location,omitempty"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	OrganizerID   string    `json:"organizer_id"`
	JoinSlug      string    `json:"join_slug,omitempty"`
	AttendeeCount int       `json:"attendee_count"`
	Joined        bool      `json:"joined"`
	CreatedAt     time.Time `json:"created_at"`
}

// Attendee is an event participant's public profile snapshot
type Attendee struct {
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name"`
	Title    string    `json:"title,omitempty"`
	Company  string    `json:"company,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateEventRequest is the organizer's event definition
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

package profile

import "time"

// ProfileResponse represents a full attendee profile
type ProfileResponse struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Title       *string   `json:"title,omitempty"`
	Company     *string   `json:"company,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Skills      []string  `json:"skills"`
	Interests   []string  `json:"interests"`
	Goals       []string  `json:"goals"`
	LinkedinURL *string   `json:"linkedin_url,omitempty"`
	TwitterURL  *string   `json:"twitter_url,omitempty"`
	WebsiteURL  *string   `json:"website_url,omitempty"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsVisible   bool      `json:"is_visible"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicProfile represents the profile fields other attendees may see
type PublicProfile struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Title     *string  `json:"title,omitempty"`
	Company   *string  `json:"company,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Bio       *string  `json:"bio,omitempty"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

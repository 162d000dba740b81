package connection

import "time"

// Connection represents a recorded relationship between two users
type Connection struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`            // The user who initiated the connection
	ConnectedUserID  string    `json:"connected_user_id"`  // The user who was scanned / added
	ConnectedVia     string    `json:"connected_via"`      // "qr_code" or "manual"
	CreatedAt        time.Time `json:"created_at"`
	OtherUserID      string    `json:"other_user_id"`
	OtherUserName    string    `json:"other_user_name"`
	OtherUserTitle   string    `json:"other_user_title,omitempty"`
	OtherUserCompany string    `json:"other_user_company,omitempty"`
	OtherUserAvatar  string    `json:"other_user_avatar,omitempty"`
	Direction        string    `json:"direction"` // "initiated" or "received"
}

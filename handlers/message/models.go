package message

import "time"

// Conversation is a two-party thread keyed by the unordered participant pair
type Conversation struct {
	ID              string     `json:"id"`
	ParticipantOne  string     `json:"participant_one"`
	ParticipantTwo  string     `json:"participant_two"`
	OtherUserID     string     `json:"other_user_id"`
	OtherUserName   string     `json:"other_user_name"`
	OtherUserAvatar string     `json:"other_user_avatar,omitempty"`
	LastMessage     string     `json:"last_message,omitempty"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	UnreadCount     int        `json:"unread_count"`
}

// Message is one append-only entry in a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

// TypingMessage is a transient typing indicator relayed over the websocket
type TypingMessage struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Typing         bool   `json:"typing"`
}

// participantPair canonicalizes the unordered pair so one row represents a
// conversation regardless of who opened it
func participantPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

package message

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/notifications"

	"github.com/gorilla/mux"
)

// GetConversationsHandler returns the authenticated user's conversations
func GetConversationsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(GetConversationsQuery, userID)
		if err != nil {
			log.Printf("Error querying conversations: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		conversations := []Conversation{}
		for rows.Next() {
			var c Conversation
			var avatar sql.NullString
			var lastMessageAt sql.NullTime
			err := rows.Scan(
				&c.ID,
				&c.ParticipantOne,
				&c.ParticipantTwo,
				&c.OtherUserID,
				&c.OtherUserName,
				&avatar,
				&c.LastMessage,
				&lastMessageAt,
				&c.UnreadCount,
			)
			if err != nil {
				log.Printf("Failed to scan conversation row: %v", err)
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			c.OtherUserAvatar = avatar.String
			if lastMessageAt.Valid {
				c.LastMessageAt = &lastMessageAt.Time
			}
			conversations = append(conversations, c)
		}

		if err = rows.Err(); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(conversations)
	}
}

// CreateConversationHandler opens (or returns) the conversation with a
// connected user
func CreateConversationHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.UserID == userID {
			http.Error(w, "Cannot open a conversation with yourself", http.StatusBadRequest)
			return
		}

		var connected bool
		if err := db.QueryRow(CheckConnectedQuery, userID, req.UserID).Scan(&connected); err != nil {
			log.Printf("Error checking connection: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		if !connected {
			http.Error(w, "You can only message your connections", http.StatusForbidden)
			return
		}

		one, two := participantPair(userID, req.UserID)
		if _, err := db.Exec(CreateConversationQuery, one, two); err != nil {
			log.Printf("Error creating conversation: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		var conversationID string
		if err := db.QueryRow(SelectConversationIDQuery, one, two).Scan(&conversationID); err != nil {
			log.Printf("Error fetching conversation id: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"id": conversationID})
	}
}

// GetMessagesHandler returns a conversation's messages in creation order
func GetMessagesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		conversationID := mux.Vars(r)["id"]
		if !isParticipant(db, conversationID, userID) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}

		rows, err := db.Query(GetMessagesQuery, conversationID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		messages := []Message{}
		for rows.Next() {
			var m Message
			if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.CreatedAt, &m.Read); err != nil {
				http.Error(w, "Database error", http.StatusInternalServerError)
				return
			}
			messages = append(messages, m)
		}

		json.NewEncoder(w).Encode(messages)
	}
}

// SendMessageHandler appends a message and notifies the other participant
func SendMessageHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		conversationID := mux.Vars(r)["id"]

		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		var one, two string
		err = db.QueryRow(`
			SELECT participant_one, participant_two
			FROM conversations
			WHERE id = $1 AND (participant_one = $2 OR participant_two = $2)
		`, conversationID, userID).Scan(&one, &two)
		if err == sql.ErrNoRows {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		msg := Message{
			ConversationID: conversationID,
			SenderID:       userID,
			Content:        req.Content,
		}
		err = db.QueryRow(CreateMessageQuery, conversationID, userID, req.Content).
			Scan(&msg.ID, &msg.CreatedAt)
		if err != nil {
			log.Printf("Error inserting message: %v", err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}

		other := one
		if other == userID {
			other = two
		}
		broadcastMessage(conversationID, msg)
		notifications.SendNotification(other, "new_message")

		json.NewEncoder(w).Encode(msg)
	}
}

// MarkMessagesAsReadHandler marks the other party's messages as read
func MarkMessagesAsReadHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		conversationID := mux.Vars(r)["id"]
		if !isParticipant(db, conversationID, userID) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}

		if _, err := db.Exec(MarkMessagesReadQuery, conversationID, userID); err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func isParticipant(db *sql.DB, conversationID, userID string) bool {
	var ok bool
	if err := db.QueryRow(CheckParticipantQuery, conversationID, userID).Scan(&ok); err != nil {
		return false
	}
	return ok
}

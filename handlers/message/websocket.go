package message

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/notifications"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// connections by conversation ID
var connections = make(map[string]map[*websocket.Conn]bool)
var connLock sync.Mutex

// HandleConversationWebSocket upgrades a conversation participant to a live
// message stream. Incoming frames are either typing indicators (relayed) or
// messages (persisted, then broadcast).
func HandleConversationWebSocket(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Query().Get("token"), "Bearer ")
		if token == "" {
			log.Printf("No token provided in WebSocket connection")
			http.Error(w, "No token provided", http.StatusUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(&http.Request{
			Header: http.Header{"Authorization": []string{"Bearer " + token}},
		})
		if err != nil {
			log.Printf("Invalid token in WebSocket connection: %v", err)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conversationID := mux.Vars(r)["id"]

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
			log.Printf("Database error checking conversation membership: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		other := one
		if other == userID {
			other = two
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Error upgrading connection: %v", err)
			return
		}
		defer conn.Close()

		connLock.Lock()
		if connections[conversationID] == nil {
			connections[conversationID] = make(map[*websocket.Conn]bool)
		}
		connections[conversationID][conn] = true
		connLock.Unlock()

		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if strings.Contains(string(p), `"typing"`) {
				var typing TypingMessage
				if err := json.Unmarshal(p, &typing); err != nil {
					continue
				}
				typing.UserID = userID
				broadcastTyping(conversationID, typing)
				continue
			}

			var incoming struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(p, &incoming); err != nil || incoming.Content == "" {
				continue
			}

			msg := Message{
				ConversationID: conversationID,
				SenderID:       userID,
				Content:        incoming.Content,
			}
			err = db.QueryRow(CreateMessageQuery, conversationID, userID, incoming.Content).
				Scan(&msg.ID, &msg.CreatedAt)
			if err != nil {
				log.Printf("Error persisting message: %v", err)
				continue
			}

			broadcastMessage(conversationID, msg)
			notifications.SendNotification(other, "new_message")
		}

		connLock.Lock()
		delete(connections[conversationID], conn)
		if len(connections[conversationID]) == 0 {
			delete(connections, conversationID)
		}
		connLock.Unlock()
	}
}

func broadcastMessage(conversationID string, msg Message) {
	connLock.Lock()
	defer connLock.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	for conn := range connections[conversationID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(connections[conversationID], conn)
		}
	}
}

func broadcastTyping(conversationID string, typing TypingMessage) {
	connLock.Lock()
	defer connLock.Unlock()

	data, err := json.Marshal(typing)
	if err != nil {
		return
	}

	for conn := range connections[conversationID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(connections[conversationID], conn)
		}
	}
}

package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/cors"

	"meetmate/backend/handlers"
	"meetmate/backend/handlers/analytics"
	"meetmate/backend/handlers/assistant"
	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/connection"
	"meetmate/backend/handlers/event"
	"meetmate/backend/handlers/match"
	"meetmate/backend/handlers/media"
	"meetmate/backend/handlers/meeting"
	"meetmate/backend/handlers/message"
	"meetmate/backend/handlers/newsletter"
	"meetmate/backend/handlers/notifications"
	"meetmate/backend/handlers/profile"
	"meetmate/backend/handlers/qrcode"
	"meetmate/backend/handlers/status"
	"meetmate/backend/services/llm"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Check required environment variables
	requiredEnvVars := []string{"DATABASE_URL", "JWT_SECRET_KEY", "AI_GATEWAY_URL", "AI_GATEWAY_API_KEY", "AI_MODEL"}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	// Initialize database connection
	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// AI gateway client shared by the matchmaker, assistant and meetings
	ai := llm.NewClientFromEnv()

	// Create router
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	})

	// Public routes (no auth required)
	r.HandleFunc("/api/auth/signup", auth.SignupHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/auth/login", auth.LoginHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/test/generate-users", handlers.GenerateTestDataHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/newsletter/subscribe", newsletter.SubscribeHandler(db)).Methods("POST", "OPTIONS")

	// Create a subrouter for protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.AuthMiddleware)

	// Profile routes
	protected.HandleFunc("/profile", profile.GetMyProfileHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/profile", profile.UpdateProfileHandler(db)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/profiles/{id}", profile.GetProfileHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/attendees", profile.ListAttendeesHandler(db)).Methods("GET", "OPTIONS")

	// Upload routes
	protected.HandleFunc("/upload/avatar", media.UploadAvatarHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/upload/avatar", media.DeleteAvatarHandler(db)).Methods("DELETE", "OPTIONS")

	// QR code handshake routes
	protected.HandleFunc("/qr/generate", qrcode.GenerateQRCodeHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/qr/scan", qrcode.ScanQRCodeHandler(db)).Methods("POST", "OPTIONS")

	// Connection routes
	protected.HandleFunc("/connections", connection.GetConnectionsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/connections/{id}", connection.DeleteConnectionHandler(db)).Methods("DELETE", "OPTIONS")

	// Match routes
	protected.HandleFunc("/matches/generate", match.GenerateMatchesHandler(db, ai)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/matches", match.GetMatchesHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/matches/{id}/status", match.UpdateMatchStatusHandler(db)).Methods("PUT", "OPTIONS")

	// AI assistant route
	protected.HandleFunc("/assistant/chat", assistant.ChatHandler(db, ai)).Methods("POST", "OPTIONS")

	// Messaging routes
	protected.HandleFunc("/conversations", message.GetConversationsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conversations", message.CreateConversationHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/conversations/{id}/messages", message.GetMessagesHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/conversations/{id}/messages", message.SendMessageHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/conversations/{id}/messages/read", message.MarkMessagesAsReadHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/ws/conversations/{id}", message.HandleConversationWebSocket(db))

	// Event routes
	protected.HandleFunc("/events", event.CreateEventHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events", event.ListEventsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/events/join", event.JoinEventHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events/{id}", event.GetEventHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/events/{id}", event.UpdateEventHandler(db)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/events/{id}/leave", event.LeaveEventHandler(db)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/events/{id}/attendees", event.GetAttendeesHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/events/{id}/slug", event.RegenerateSlugHandler(db)).Methods("POST", "OPTIONS")

	// Meeting routes
	protected.HandleFunc("/meetings", meeting.MeetingsHandler(db, ai)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/meetings", meeting.GetMeetingsHandler(db)).Methods("GET", "OPTIONS")

	// Notification routes
	protected.HandleFunc("/notifications", notifications.GetNotificationsHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/notifications/read", notifications.MarkNotificationsAsReadHandler(db)).Methods("POST", "OPTIONS")
	r.HandleFunc("/ws/notifications", notifications.HandleNotificationWebSocket())

	// Analytics route
	protected.HandleFunc("/analytics", analytics.AnalyticsHandler(db)).Methods("POST", "OPTIONS")

	// Status routes
	protected.HandleFunc("/status", status.GetMyStatusHandler(db)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/status/{id}", status.GetStatusHandler(db)).Methods("GET", "OPTIONS")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, c.Handler(r)))
}

package newsletter

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	rateLimitWindow = time.Hour
	rateLimitMax    = 3
)

type rateWindow struct {
	count   int
	resetAt time.Time
}

var (
	rateLimitLock sync.Mutex
	rateLimits    = make(map[string]*rateWindow)
)

// isRateLimited counts signup attempts per email in a sliding hourly window
func isRateLimited(email string) bool {
	rateLimitLock.Lock()
	defer rateLimitLock.Unlock()

	now := time.Now()
	win, ok := rateLimits[email]
	if !ok || now.After(win.resetAt) {
		rateLimits[email] = &rateWindow{count: 1, resetAt: now.Add(rateLimitWindow)}
		return false
	}
	win.count++
	return win.count > rateLimitMax
}

// SubscribeHandler adds an email to the newsletter list
// Used by: POST /api/newsletter/subscribe
func SubscribeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req SubscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || len(email) > 255 || !emailPattern.MatchString(email) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Please provide a valid email address"})
			return
		}

		if isRateLimited(email) {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "Too many requests. Please try again later."})
			return
		}

		var id string
		err := db.QueryRow(SelectSubscriberQuery, email).Scan(&id)
		if err == nil {
			json.NewEncoder(w).Encode(map[string]string{"message": "You're already subscribed to our newsletter!"})
			return
		}
		if err != sql.ErrNoRows {
			log.Printf("Error checking newsletter subscription: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to subscribe. Please try again."})
			return
		}

		if _, err := db.Exec(InsertSubscriberQuery, email); err != nil {
			// Lost a race with a concurrent signup for the same email
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				json.NewEncoder(w).Encode(map[string]string{"message": "You're already subscribed to our newsletter!"})
				return
			}
			log.Printf("Error inserting newsletter subscription: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to subscribe. Please try again."})
			return
		}

		sendWelcomeEmail(email)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Successfully subscribed! Check your email for confirmation.",
		})
	}
}

// sendWelcomeEmail is log-only until a mail provider is configured.
// Delivery failures must never block the subscription.
func sendWelcomeEmail(email string) {
	log.Printf("Welcome email queued for %s", email)
}

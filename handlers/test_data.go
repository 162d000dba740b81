// Note: To generate test data, use:
// curl -X POST "http://localhost:8080/api/test/generate-users?count=5" -H "Content-Type: application/json"

package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"meetmate/backend/handlers/status"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// Predefined pools for consistent test data
var titles = []string{
	"Software Engineer", "Product Manager", "Designer", "Data Scientist",
	"CTO", "Founder", "Engineering Manager", "Marketing Lead",
	"Sales Director", "Developer Advocate", "Researcher", "Consultant",
}

var skillPool = []string{
	"Go", "Python", "TypeScript", "Kubernetes", "PostgreSQL",
	"Machine Learning", "Product Strategy", "UX Design", "Data Analysis",
	"Cloud Architecture", "DevOps", "Public Speaking", "Sales",
	"Growth Marketing", "Fundraising",
}

var interestPool = []string{
	"AI", "Open Source", "Startups", "Fintech", "Healthtech",
	"Climate Tech", "Developer Tools", "Web3", "Robotics",
	"Edtech", "Gaming", "Hardware", "SaaS",
}

var goalPool = []string{
	"Find a co-founder", "Hire engineers", "Find investors",
	"Learn about AI", "Meet potential customers", "Find a mentor",
	"Explore job opportunities", "Partner with startups",
	"Grow my network", "Share my expertise",
}

func pickSome(pool []string, min, max int) []string {
	n := gofakeit.Number(min, max)
	picked := make([]string, n)
	for i := 0; i < n; i++ {
		picked[i] = pool[gofakeit.Number(0, len(pool)-1)]
	}
	return picked
}

// GenerateTestDataHandler seeds fake attendee profiles
// Used by: POST /api/test/generate-users
func GenerateTestDataHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		count := 10
		if countParam := r.URL.Query().Get("count"); countParam != "" {
			parsedCount, err := strconv.Atoi(countParam)
			if err != nil || parsedCount < 1 || parsedCount > 150 {
				http.Error(w, "Count must be between 1 and 150", http.StatusBadRequest)
				return
			}
			count = parsedCount
		}

		tx, err := db.Begin()
		if err != nil {
			log.Printf("Error starting transaction: %v", err)
			http.Error(w, "Could not start generating", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		created := 0
		failedAttempts := 0
		for i := 0; i < count; i++ {
			_, err := tx.Exec(fmt.Sprintf("SAVEPOINT user_%d", i))
			if err != nil {
				log.Printf("[User %d] Error creating savepoint: %v", i+1, err)
				failedAttempts++
				continue
			}

			email := gofakeit.Email()
			fullName := gofakeit.Name()

			hashedPassword, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("[User %d] Error hashing password: %v", i+1, err)
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			var userID string
			err = tx.QueryRow(`
				INSERT INTO users (email, password_hash)
				VALUES ($1, $2)
				RETURNING id
			`, email, string(hashedPassword)).Scan(&userID)
			if err != nil {
				log.Printf("[User %d] Error inserting user: %v", i+1, err)
				if pqErr, ok := err.(*pq.Error); ok {
					log.Printf("[User %d] Postgres error details: %s, code: %s, constraint: %s", i+1, pqErr.Detail, pqErr.Code, pqErr.Constraint)
				}
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			_, err = tx.Exec(`
				INSERT INTO profiles (
					id, full_name, title, company, location, bio,
					skills, interests, goals, is_visible, status
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, 'incomplete')
			`,
				userID,
				fullName,
				titles[gofakeit.Number(0, len(titles)-1)],
				gofakeit.Company(),
				gofakeit.City(),
				gofakeit.Sentence(12),
				pq.Array(pickSome(skillPool, 2, 5)),
				pq.Array(pickSome(interestPool, 2, 4)),
				pq.Array(pickSome(goalPool, 1, 3)))
			if err != nil {
				log.Printf("[User %d] Error creating profile: %v", i+1, err)
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			_, err = tx.Exec(`
				INSERT INTO user_roles (user_id, role)
				VALUES ($1, 'attendee')
			`, userID)
			if err != nil {
				log.Printf("[User %d] Error assigning role: %v", i+1, err)
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			if err := status.UpdateProfileStatus(tx, userID); err != nil {
				log.Printf("[User %d] Error updating profile status: %v", i+1, err)
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			_, err = tx.Exec(fmt.Sprintf("RELEASE SAVEPOINT user_%d", i))
			if err != nil {
				log.Printf("[User %d] Error releasing savepoint: %v", i+1, err)
				tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT user_%d", i))
				failedAttempts++
				continue
			}

			created++
		}

		if err = tx.Commit(); err != nil {
			log.Printf("Transaction commit error: %v", err)
			http.Error(w, fmt.Sprintf("Could not commit transaction: %v", err), http.StatusInternalServerError)
			return
		}

		log.Printf("Summary: Created %d attendees, Failed attempts: %d", created, failedAttempts)

		response := struct {
			Message      string `json:"message"`
			UsersCreated int    `json:"users_created"`
		}{
			Message:      "Test user(s) generated successfully",
			UsersCreated: created,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Error encoding response: %v", err)
			http.Error(w, "Error generating response", http.StatusInternalServerError)
			return
		}
	}
}

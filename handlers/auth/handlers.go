package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}

// SignupHandler handles user registration
// Used by: /api/auth/signup
// Dependencies: GenerateToken
// Response: LoginResponse
func SignupHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var signupRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
		}

		if err := json.NewDecoder(r.Body).Decode(&signupRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
			return
		}

		if signupRequest.Email == "" || signupRequest.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Email and password are required"})
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(signupRequest.Password), bcrypt.DefaultCost)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error hashing password"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Database error"})
			return
		}
		defer tx.Rollback()

		query := `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`
		var userID string
		err = tx.QueryRow(query, signupRequest.Email, string(hashedPassword)).Scan(&userID)
		if err != nil {
			if strings.Contains(err.Error(), "unique constraint") {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{"error": "Email already exists"})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error creating user"})
			return
		}

		// Create the initial profile. Attendees fill it in later; an empty
		// profile stays invisible to matchmaking until it is completed.
		_, err = tx.Exec(`
			INSERT INTO profiles (
				id, full_name, title, company, location, bio,
				skills, interests, goals, is_visible, status
			) VALUES ($1, $2, '', '', '', '', '{}', '{}', '{}', true, 'incomplete')
		`, userID, signupRequest.FullName)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error creating profile"})
			return
		}

		_, err = tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, 'attendee')`, userID)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error assigning role"})
			return
		}

		token, err := GenerateToken(userID)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error generating token"})
			return
		}

		if err = tx.Commit(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error completing registration"})
			return
		}

		response := LoginResponse{
			ID:       userID,
			Email:    signupRequest.Email,
			FullName: signupRequest.FullName,
			Token:    token,
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// LoginHandler handles user authentication
// Used by: /api/auth/login
// Dependencies: GenerateToken
// Response: LoginResponse
func LoginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var loginRequest struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
			return
		}

		var user User
		var fullName string
		var hashedPassword string
		query := `
			SELECT u.id, u.email, u.password_hash, COALESCE(p.full_name, '')
			FROM users u
			LEFT JOIN profiles p ON p.id = u.id
			WHERE u.email = $1
		`
		err := db.QueryRow(query, loginRequest.Email).Scan(&user.ID, &user.Email, &hashedPassword, &fullName)
		if err != nil {
			if err == sql.ErrNoRows {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Database error"})
			return
		}

		err = bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(loginRequest.Password))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
			return
		}

		token, err := GenerateToken(user.ID)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Error generating token"})
			return
		}

		response := LoginResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: fullName,
			Token:    token,
		}

		json.NewEncoder(w).Encode(response)
	}
}

package media

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"meetmate/backend/handlers/auth"
)

const (
	maxFileSize = 10 << 20 // 10 MB
)

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UploadResponse represents the response for a successful upload
type UploadResponse struct {
	URL string `json:"url"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadAvatarHandler stores an avatar image and records its URL on the
// caller's profile
func UploadAvatarHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		if err := r.ParseMultipartForm(maxFileSize); err != nil {
			json.NewEncoder(w).Encode(ErrorResponse{Error: "File too large. Maximum size is 10MB"})
			return
		}

		file, handler, err := r.FormFile("file")
		if err != nil {
			json.NewEncoder(w).Encode(ErrorResponse{Error: "No file uploaded"})
			return
		}
		defer file.Close()

		if !allowedTypes[handler.Header.Get("Content-Type")] {
			json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid file type. Only JPEG, PNG, and GIF are allowed"})
			return
		}

		filename := fmt.Sprintf("%s_%s", userID, filepath.Base(handler.Filename))
		uploadPath := filepath.Join("uploads", "avatars", filename)

		if err := os.MkdirAll(filepath.Dir(uploadPath), 0755); err != nil {
			http.Error(w, "Failed to create upload directory", http.StatusInternalServerError)
			return
		}

		dst, err := os.Create(uploadPath)
		if err != nil {
			http.Error(w, "Failed to create file", http.StatusInternalServerError)
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			http.Error(w, "Failed to save file", http.StatusInternalServerError)
			return
		}

		fileURL := fmt.Sprintf("/uploads/avatars/%s", filename)
		_, err = db.Exec(`
			UPDATE profiles
			SET avatar_url = $1,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $2
		`, fileURL, userID)
		if err != nil {
			// The profile row is the source of truth; drop the orphan file
			os.Remove(uploadPath)
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(UploadResponse{URL: fileURL})
	}
}

// DeleteAvatarHandler removes the caller's avatar
func DeleteAvatarHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var currentURL sql.NullString
		err = db.QueryRow(`
			SELECT avatar_url
			FROM profiles
			WHERE id = $1
		`, userID).Scan(&currentURL)
		if err != nil {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}

		if !currentURL.Valid || currentURL.String == "" {
			http.Error(w, "No avatar to delete", http.StatusBadRequest)
			return
		}

		filename := filepath.Base(currentURL.String)
		uploadPath := filepath.Join("uploads", "avatars", filename)

		if err := os.Remove(uploadPath); err != nil {
			log.Printf("Error deleting avatar file: %v", err)
		}

		_, err = db.Exec(`
			UPDATE profiles
			SET avatar_url = NULL,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = $1
		`, userID)
		if err != nil {
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

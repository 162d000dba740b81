package qrcode

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"meetmate/backend/handlers/auth"
	"meetmate/backend/handlers/notifications"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NewToken mints a 32 character hex connection token
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// GenerateQRCodeHandler returns the caller's QR token, minting one on first use
// Used by: /api/qr/generate
// Response: GenerateResponse
func GenerateQRCodeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var token sql.NullString
		var fullName string
		err = db.QueryRow(SelectTokenQuery, userID).Scan(&token, &fullName)
		if err == sql.ErrNoRows {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Profile not found"})
			return
		}
		if err != nil {
			log.Printf("Error fetching QR token for user %s: %v", userID, err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch profile"})
			return
		}

		qrCodeID := token.String
		if qrCodeID == "" {
			minted := NewToken()
			result, err := db.Exec(StoreTokenQuery, minted, userID)
			if err != nil {
				log.Printf("Error storing QR token for user %s: %v", userID, err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "Failed to generate QR code"})
				return
			}

			rowsAffected, _ := result.RowsAffected()
			if rowsAffected == 0 {
				// Another request minted first; read back the winner.
				if err := db.QueryRow(SelectTokenQuery, userID).Scan(&token, &fullName); err != nil {
					log.Printf("Error re-reading QR token for user %s: %v", userID, err)
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{"error": "Failed to generate QR code"})
					return
				}
				qrCodeID = token.String
			} else {
				qrCodeID = minted
			}
		}

		name := fullName
		if name == "" {
			name = "User"
		}

		json.NewEncoder(w).Encode(GenerateResponse{
			Status:   StatusSuccess,
			QRCodeID: qrCodeID,
			Name:     name,
		})
	}
}

// ScanQRCodeHandler processes a scanned QR token and creates a connection
// Used by: /api/qr/scan
// Response: ScanResponse
func ScanQRCodeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req ScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body"})
			return
		}

		if req.QRCodeID == "" {
			json.NewEncoder(w).Encode(ScanResponse{
				Status:  StatusNotFound,
				Message: "Invalid or expired QR code",
			})
			return
		}

		// Resolve the profile owning the scanned token
		var targetID, targetName string
		err = db.QueryRow(ResolveTokenQuery, req.QRCodeID).Scan(&targetID, &targetName)
		if err == sql.ErrNoRows {
			json.NewEncoder(w).Encode(ScanResponse{
				Status:  StatusNotFound,
				Message: "Invalid or expired QR code",
			})
			return
		}
		if err != nil {
			log.Printf("Error resolving QR token: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ScanResponse{Status: StatusError, Message: "Failed to process scan"})
			return
		}

		// Prevent self-connection
		if targetID == userID {
			json.NewEncoder(w).Encode(ScanResponse{
				Status:  StatusSelfConnect,
				Message: "You can't connect with yourself",
			})
			return
		}

		// Check if a connection already exists in either direction. This is
		// only for the friendly response; the insert below still handles the
		// race where two scans pass this check at once.
		var exists bool
		err = db.QueryRow(CheckConnectionExistsQuery, userID, targetID).Scan(&exists)
		if err != nil {
			log.Printf("Error checking existing connection: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ScanResponse{Status: StatusError, Message: "Failed to process scan"})
			return
		}

		if exists {
			json.NewEncoder(w).Encode(ScanResponse{
				Status:               StatusAlreadyConnected,
				Message:              "You're already connected",
				ConnectedUserName:    targetName,
				ConnectedUserProfile: loadConnectedProfile(db, targetID),
			})
			return
		}

		// Create the directed edge scanner -> owner. A unique violation on the
		// canonical pair means another scan won the race: report it as
		// already connected rather than an error.
		var connectionID string
		err = db.QueryRow(CreateConnectionQuery, userID, targetID).Scan(&connectionID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				json.NewEncoder(w).Encode(ScanResponse{
					Status:               StatusAlreadyConnected,
					Message:              "You're already connected",
					ConnectedUserName:    targetName,
					ConnectedUserProfile: loadConnectedProfile(db, targetID),
				})
				return
			}
			log.Printf("Connection insert error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ScanResponse{Status: StatusError, Message: "Failed to create connection"})
			return
		}

		// Side effects are best-effort: the connection stands even if the
		// notification or analytics write fails.
		var scannerName string
		if err := db.QueryRow(`SELECT full_name FROM profiles WHERE id = $1`, userID).Scan(&scannerName); err != nil {
			scannerName = "Someone"
		}

		_, err = db.Exec(`
			INSERT INTO notifications (user_id, type, title, message, data)
			VALUES ($1, 'new_connection', 'New Connection!', $2, $3)
		`, targetID, scannerName+" connected with you via QR code",
			mustJSON(map[string]string{"connected_user_id": userID}))
		if err != nil {
			log.Printf("Error inserting connection notification: %v", err)
		}

		_, err = db.Exec(`
			INSERT INTO analytics_events (user_id, event_type, event_data)
			VALUES ($1, 'qr_connection', $2)
		`, userID, mustJSON(map[string]string{"connected_to": targetID}))
		if err != nil {
			log.Printf("Error inserting analytics event: %v", err)
		}

		notifications.SendNotification(targetID, "new_connection")

		log.Printf("Connection created: %s -> %s", userID, targetID)

		json.NewEncoder(w).Encode(ScanResponse{
			Status:               StatusSuccess,
			Message:              "You're now connected!",
			ConnectedUserName:    targetName,
			ConnectedUserProfile: loadConnectedProfile(db, targetID),
		})
	}
}

// loadConnectedProfile fetches the public snapshot for the scan response.
// Returns nil on failure; the snapshot is display-only.
func loadConnectedProfile(db *sql.DB, userID string) *ConnectedProfile {
	var p ConnectedProfile
	err := db.QueryRow(SelectConnectedProfileQuery, userID).Scan(
		&p.ID,
		&p.FullName,
		&p.Title,
		&p.Company,
		&p.Bio,
		pq.Array(&p.Skills),
		pq.Array(&p.Interests),
		&p.LinkedinURL,
		&p.TwitterURL,
		&p.WebsiteURL,
		&p.AvatarURL,
	)
	if err != nil {
		log.Printf("Error loading connected profile %s: %v", userID, err)
		return nil
	}
	return &p
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

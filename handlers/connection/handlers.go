package connection

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"meetmate/backend/handlers/auth"

	"github.com/gorilla/mux"
)

// GetConnectionsHandler returns all connections for the authenticated user
func GetConnectionsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		rows, err := db.Query(GetConnectionsQuery, userID)
		if err != nil {
			log.Printf("Error querying connections: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		connections := []Connection{}
		for rows.Next() {
			var conn Connection
			var otherUserAvatar sql.NullString
			err := rows.Scan(
				&conn.ID,
				&conn.UserID,
				&conn.ConnectedUserID,
				&conn.ConnectedVia,
				&conn.CreatedAt,
				&conn.OtherUserID,
				&conn.OtherUserName,
				&conn.OtherUserTitle,
				&conn.OtherUserCompany,
				&otherUserAvatar,
			)
			if err != nil {
				log.Printf("Error scanning connection: %v", err)
				http.Error(w, "Error scanning connection", http.StatusInternalServerError)
				return
			}
			conn.OtherUserAvatar = otherUserAvatar.String
			if conn.UserID == userID {
				conn.Direction = "initiated"
			} else {
				conn.Direction = "received"
			}
			connections = append(connections, conn)
		}

		if err = rows.Err(); err != nil {
			log.Printf("Error iterating over rows: %v", err)
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if err := json.NewEncoder(w).Encode(connections); err != nil {
			log.Printf("Error encoding response: %v", err)
			http.Error(w, "Error encoding response", http.StatusInternalServerError)
			return
		}
	}
}

// DeleteConnectionHandler handles removing a connection
func DeleteConnectionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		vars := mux.Vars(r)
		connectionID := vars["id"]

		result, err := db.Exec(DeleteConnectionQuery, connectionID, userID)
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if rowsAffected == 0 {
			http.Error(w, "Connection not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

package analytics

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"meetmate/backend/handlers/auth"
)

// AnalyticsHandler computes the requested dashboard
// Used by: POST /api/analytics
func AnalyticsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		userID, err := auth.GetUserIDFromToken(r)
		if err != nil {
			auth.WriteUnauthorized(w)
			return
		}

		var req AnalyticsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		switch req.Type {
		case "personal":
			personalDashboard(w, db, userID)
		case "organizer":
			organizerDashboard(w, db, userID, req.EventID)
		default:
			http.Error(w, "type must be personal or organizer", http.StatusBadRequest)
		}
	}
}

func personalDashboard(w http.ResponseWriter, db *sql.DB, userID string) {
	var m PersonalMetrics

	if err := db.QueryRow(CountMatchesQuery, userID).Scan(&m.TotalMatches, &m.AvgMatchScore); err != nil {
		log.Printf("Error counting matches: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var accepted int
	if err := db.QueryRow(CountAcceptedMatchesQuery, userID).Scan(&accepted); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if err := db.QueryRow(CountConnectionsQuery, userID).Scan(&m.TotalConnections); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if err := db.QueryRow(CountMeetingsQuery, userID).Scan(&m.TotalMeetings); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if m.TotalMatches > 0 {
		m.ConversionRate = float64(accepted) / float64(m.TotalMatches) * 100
	}

	m.ActivityByDay = map[string]int{}
	rows, err := db.Query(ActivityByDayQuery, userID)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var count int
			if err := rows.Scan(&day, &count); err == nil {
				m.ActivityByDay[day] = count
			}
		}
	} else {
		log.Printf("Error loading activity by day: %v", err)
	}

	json.NewEncoder(w).Encode(m)
}

func organizerDashboard(w http.ResponseWriter, db *sql.DB, userID string, eventID *string) {
	var isOrganizer bool
	if err := db.QueryRow(CheckOrganizerRoleQuery, userID).Scan(&isOrganizer); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !isOrganizer {
		http.Error(w, "Organizer role required", http.StatusForbidden)
		return
	}
	if eventID == nil || *eventID == "" {
		http.Error(w, "event_id is required for organizer analytics", http.StatusBadRequest)
		return
	}

	var m OrganizerMetrics

	if err := db.QueryRow(CountEventAttendeesQuery, *eventID).Scan(&m.TotalAttendees); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var usersWithMatches int
	if err := db.QueryRow(CountEventMatchesQuery, *eventID).Scan(&m.TotalMatches, &usersWithMatches); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	var usersWithMeetings int
	if err := db.QueryRow(CountEventMeetingsQuery, *eventID).Scan(&m.TotalMeetings, &usersWithMeetings); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if m.TotalAttendees > 0 {
		m.MatchRate = float64(usersWithMatches) / float64(m.TotalAttendees) * 100
		m.EngagementRate = float64(usersWithMeetings) / float64(m.TotalAttendees) * 100
	}

	m.HeatmapData = []HeatmapBucket{}
	rows, err := db.Query(EventHeatmapQuery, *eventID)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var b HeatmapBucket
			if err := rows.Scan(&b.Day, &b.Hour, &b.Count); err == nil {
				m.HeatmapData = append(m.HeatmapData, b)
			}
		}
	} else {
		log.Printf("Error loading heatmap: %v", err)
	}

	json.NewEncoder(w).Encode(m)
}

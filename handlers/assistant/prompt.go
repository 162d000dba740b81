package assistant

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
)

// buildSystemPrompt grounds the assistant in the caller's profile, their top
// matches and their upcoming meetings. Context queries are best-effort: a
// failed lookup just leaves that section sparse.
func buildSystemPrompt(db *sql.DB, userID string) string {
	var fullName, title, company string
	var skills, interests []string
	err := db.QueryRow(`
		SELECT
			full_name,
			COALESCE(title, ''),
			COALESCE(company, ''),
			skills,
			interests
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&fullName, &title, &company, pq.Array(&skills), pq.Array(&interests))
	if err != nil {
		log.Printf("Error loading profile for assistant prompt: %v", err)
	}
	if fullName == "" {
		fullName = "Attendee"
	}
	if title == "" {
		title = "Professional"
	}
	if company == "" {
		company = "Company"
	}

	var sb strings.Builder
	sb.WriteString("You are MeetMate AI, a friendly and helpful networking assistant for professional conferences.\n\n")
	sb.WriteString("USER CONTEXT:\n")
	fmt.Fprintf(&sb, "Name: %s\n", fullName)
	fmt.Fprintf(&sb, "Title: %s\n", title)
	fmt.Fprintf(&sb, "Company: %s\n", company)
	fmt.Fprintf(&sb, "Skills: %s\n", joinOr(skills, "Various"))
	fmt.Fprintf(&sb, "Interests: %s\n", joinOr(interests, "Networking"))

	sb.WriteString("\nTOP MATCHES:\n")
	sb.WriteString(topMatchesSection(db, userID))

	sb.WriteString("\nUPCOMING MEETINGS:\n")
	sb.WriteString(upcomingMeetingsSection(db, userID))

	sb.WriteString(`
CAPABILITIES:
1. Help find and explain matches
2. Suggest conversation starters and talking points
3. Draft follow-up messages
4. Recommend meeting times
5. Provide networking tips
6. Answer questions about connections

Be conversational, helpful, and proactive. Suggest specific actions when appropriate.
Keep responses concise but informative (2-3 sentences max unless asked for details).`)

	return sb.String()
}

func topMatchesSection(db *sql.DB, userID string) string {
	rows, err := db.Query(`
		SELECT
			p.full_name,
			COALESCE(p.title, ''),
			COALESCE(p.company, ''),
			m.match_score
		FROM matches m
		JOIN profiles p ON p.id = m.matched_user_id
		WHERE m.user_id = $1
		ORDER BY m.match_score DESC
		LIMIT 5
	`, userID)
	if err != nil {
		log.Printf("Error loading matches for assistant prompt: %v", err)
		return "No matches yet\n"
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var name, title, company string
		var score int
		if err := rows.Scan(&name, &title, &company, &score); err != nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s at %s) - %d%% match\n", name, title, company, score)
	}
	if sb.Len() == 0 {
		return "No matches yet\n"
	}
	return sb.String()
}

func upcomingMeetingsSection(db *sql.DB, userID string) string {
	rows, err := db.Query(`
		SELECT
			m.title,
			COALESCE(p.full_name, 'Attendee'),
			m.scheduled_at
		FROM meetings m
		LEFT JOIN profiles p ON p.id = CASE
			WHEN m.organizer_id = $1 THEN m.attendee_id
			ELSE m.organizer_id
		END
		WHERE (m.organizer_id = $1 OR m.attendee_id = $1)
		AND m.scheduled_at >= NOW()
		AND m.status != 'cancelled'
		ORDER BY m.scheduled_at ASC
		LIMIT 5
	`, userID)
	if err != nil {
		log.Printf("Error loading meetings for assistant prompt: %v", err)
		return "No upcoming meetings\n"
	}
	defer rows.Close()

	var sb strings.Builder
	for rows.Next() {
		var title, attendee string
		var scheduledAt time.Time
		if err := rows.Scan(&title, &attendee, &scheduledAt); err != nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s with %s at %s\n", title, attendee, scheduledAt.Format("Mon Jan 2 15:04"))
	}
	if sb.Len() == 0 {
		return "No upcoming meetings\n"
	}
	return sb.String()
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

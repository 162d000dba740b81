package matchmaker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"

	"meetmate/backend/services/llm"

	"github.com/lib/pq"
)

const (
	// CandidatePoolSize bounds how many profiles are sent to the model
	CandidatePoolSize = 20
	// MaxStoredMatches bounds how many results are persisted per run
	MaxStoredMatches = 10
)

// GenerateMatches scores the candidate pool for a user with the AI gateway
// and upserts the top results. Gateway rate-limit and quota errors pass
// through unwrapped so handlers can surface them verbatim; a malformed model
// reply degrades to an empty result instead of failing the request.
func GenerateMatches(ctx context.Context, db *sql.DB, ai *llm.Client, userID string, eventID *string) ([]Match, error) {
	requester, err := loadProfile(db, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading requester profile: %w", err)
	}

	candidates, err := loadCandidates(db, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("error loading candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []Match{}, nil
	}

	content, err := ai.ChatCompletion(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildMatchPrompt(*requester, candidates)},
	})
	if err != nil {
		return nil, err
	}

	var analysis []matchAnalysis
	if err := llm.ExtractJSONArray(content, &analysis); err != nil {
		log.Printf("Failed to parse AI match response: %v", err)
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(analysis))
	for _, a := range analysis {
		if a.Index < 0 || a.Index >= len(candidates) {
			continue
		}
		candidate := candidates[a.Index]
		if a.SharedSkills == nil {
			a.SharedSkills = []string{}
		}
		if a.SharedInterests == nil {
			a.SharedInterests = []string{}
		}
		matches = append(matches, Match{
			UserID:          userID,
			MatchedUserID:   candidate.ID,
			EventID:         eventID,
			MatchScore:      a.Score,
			ConfidenceScore: a.Confidence,
			AIExplanation:   a.Explanation,
			SharedSkills:    a.SharedSkills,
			SharedInterests: a.SharedInterests,
			Status:          "pending",
			Profile:         &candidate,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if err := storeMatches(db, matches); err != nil {
		return nil, fmt.Errorf("error storing matches: %w", err)
	}

	log.Printf("Generated %d matches for user %s", len(matches), userID)
	return matches, nil
}

// StoredMatches retrieves persisted matches for a user, score-descending
func StoredMatches(db *sql.DB, userID string, eventID *string) ([]Match, error) {
	query := `
		SELECT
			m.id,
			m.user_id,
			m.matched_user_id,
			m.event_id,
			m.match_score,
			m.confidence_score,
			m.ai_explanation,
			m.shared_skills,
			m.shared_interests,
			m.status,
			p.id,
			p.full_name,
			COALESCE(p.title, ''),
			COALESCE(p.company, ''),
			COALESCE(p.location, ''),
			COALESCE(p.bio, ''),
			p.skills,
			p.interests,
			p.goals,
			COALESCE(p.avatar_url, '')
		FROM matches m
		JOIN profiles p ON p.id = m.matched_user_id
		WHERE m.user_id = $1 AND ($2::uuid IS NULL OR m.event_id = $2)
		ORDER BY m.match_score DESC
	`

	rows, err := db.Query(query, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying matches: %v", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		var m Match
		var p CandidateProfile
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.MatchedUserID,
			&m.EventID,
			&m.MatchScore,
			&m.ConfidenceScore,
			&m.AIExplanation,
			pq.Array(&m.SharedSkills),
			pq.Array(&m.SharedInterests),
			&m.Status,
			&p.ID,
			&p.FullName,
			&p.Title,
			&p.Company,
			&p.Location,
			&p.Bio,
			pq.Array(&p.Skills),
			pq.Array(&p.Interests),
			pq.Array(&p.Goals),
			&p.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning match: %v", err)
		}
		m.Profile = &p
		matches = append(matches, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %v", err)
	}

	return matches, nil
}

func loadProfile(db *sql.DB, userID string) (*CandidateProfile, error) {
	var p CandidateProfile
	err := db.QueryRow(`
		SELECT
			p.id,
			p.full_name,
			COALESCE(p.title, ''),
			COALESCE(p.company, ''),
			COALESCE(p.location, ''),
			COALESCE(p.bio, ''),
			p.skills,
			p.interests,
			p.goals,
			COALESCE(p.avatar_url, '')
		FROM profiles p
		WHERE p.id = $1
	`, userID).Scan(
		&p.ID,
		&p.FullName,
		&p.Title,
		&p.Company,
		&p.Location,
		&p.Bio,
		pq.Array(&p.Skills),
		pq.Array(&p.Interests),
		pq.Array(&p.Goals),
		&p.AvatarURL,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// loadCandidates fetches the bounded pool of visible profiles, scoped to an
// event's attendees when an event id is given
func loadCandidates(db *sql.DB, userID string, eventID *string) ([]CandidateProfile, error) {
	query := `
		SELECT
			p.id,
			p.full_name,
			COALESCE(p.title, ''),
			COALESCE(p.company, ''),
			COALESCE(p.location, ''),
			COALESCE(p.bio, ''),
			p.skills,
			p.interests,
			p.goals,
			COALESCE(p.avatar_url, '')
		FROM profiles p
		WHERE p.id != $1
		AND p.is_visible = true
		AND ($2::uuid IS NULL OR EXISTS (
			SELECT 1 FROM event_attendees ea
			WHERE ea.event_id = $2 AND ea.user_id = p.id
		))
		LIMIT $3
	`

	rows, err := db.Query(query, userID, eventID, CandidatePoolSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []CandidateProfile
	for rows.Next() {
		var p CandidateProfile
		err := rows.Scan(
			&p.ID,
			&p.FullName,
			&p.Title,
			&p.Company,
			&p.Location,
			&p.Bio,
			pq.Array(&p.Skills),
			pq.Array(&p.Interests),
			pq.Array(&p.Goals),
			&p.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, p)
	}

	return candidates, rows.Err()
}

// storeMatches upserts the top results keyed by (user, matched user, event),
// resetting status to pending
func storeMatches(db *sql.DB, matches []Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	limit := len(matches)
	if limit > MaxStoredMatches {
		limit = MaxStoredMatches
	}

	for _, m := range matches[:limit] {
		_, err = tx.Exec(`
			INSERT INTO matches (
				user_id, matched_user_id, event_id, match_score,
				confidence_score, ai_explanation, shared_skills,
				shared_interests, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
			ON CONFLICT (user_id, matched_user_id, event_id) DO UPDATE SET
				match_score = EXCLUDED.match_score,
				confidence_score = EXCLUDED.confidence_score,
				ai_explanation = EXCLUDED.ai_explanation,
				shared_skills = EXCLUDED.shared_skills,
				shared_interests = EXCLUDED.shared_interests,
				status = 'pending',
				updated_at = CURRENT_TIMESTAMP
		`, m.UserID, m.MatchedUserID, m.EventID, m.MatchScore,
			m.ConfidenceScore, m.AIExplanation, pq.Array(m.SharedSkills),
			pq.Array(m.SharedInterests))
		if err != nil {
			return fmt.Errorf("error upserting match: %v", err)
		}
	}

	return tx.Commit()
}

package matchmaker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetmate/backend/services/llm"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{
	"id", "full_name", "title", "company", "location", "bio",
	"skills", "interests", "goals", "avatar_url",
}

func profileRow(rows *sqlmock.Rows, id, name string) *sqlmock.Rows {
	return rows.AddRow(id, name, "Engineer", "Acme", "Berlin", "A bio",
		"{Go,Postgres}", "{AI}", "{Networking}", "")
}

func aiServer(t *testing.T, reply string) (*httptest.Server, *llm.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, &llm.Client{BaseURL: srv.URL, Model: "test", HTTPClient: srv.Client()}
}

func TestGenerateMatchesEmptyPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM profiles p\\s+WHERE p.id = \\$1").
		WithArgs("user-1").
		WillReturnRows(profileRow(sqlmock.NewRows(profileColumns), "user-1", "Requester"))
	mock.ExpectQuery("p.is_visible = true").
		WithArgs("user-1", nil, CandidatePoolSize).
		WillReturnRows(sqlmock.NewRows(profileColumns))

	// The gateway must not be called when there is nobody to score
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected AI gateway call")
	}))
	defer srv.Close()
	ai := &llm.Client{BaseURL: srv.URL, HTTPClient: srv.Client()}

	matches, err := GenerateMatches(context.Background(), db, ai, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMatchesSortsAndDropsInvalidIndices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM profiles p\\s+WHERE p.id = \\$1").
		WithArgs("user-1").
		WillReturnRows(profileRow(sqlmock.NewRows(profileColumns), "user-1", "Requester"))

	candidates := sqlmock.NewRows(profileColumns)
	profileRow(candidates, "cand-a", "Alice")
	profileRow(candidates, "cand-b", "Bob")
	mock.ExpectQuery("p.is_visible = true").
		WithArgs("user-1", nil, CandidatePoolSize).
		WillReturnRows(candidates)

	// Unsorted scores plus an out-of-range index the scorer must drop
	reply := `[
		{"index": 1, "score": 60, "confidence": 0.7, "explanation": "ok", "shared_skills": [], "shared_interests": []},
		{"index": 5, "score": 99, "confidence": 0.9, "explanation": "ghost", "shared_skills": [], "shared_interests": []},
		{"index": 0, "score": 90, "confidence": 0.8, "explanation": "great", "shared_skills": ["Go"], "shared_interests": []}
	]`
	_, ai := aiServer(t, reply)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO matches").
		WithArgs("user-1", "cand-a", nil, 90, 0.8, "great", `{"Go"}`, "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO matches").
		WithArgs("user-1", "cand-b", nil, 60, 0.7, "ok", "{}", "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	matches, err := GenerateMatches(context.Background(), db, ai, "user-1", nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "cand-a", matches[0].MatchedUserID)
	assert.Equal(t, 90, matches[0].MatchScore)
	assert.Equal(t, "cand-b", matches[1].MatchedUserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMatchesMalformedReplyDegrades(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM profiles p\\s+WHERE p.id = \\$1").
		WithArgs("user-1").
		WillReturnRows(profileRow(sqlmock.NewRows(profileColumns), "user-1", "Requester"))
	candidates := sqlmock.NewRows(profileColumns)
	profileRow(candidates, "cand-a", "Alice")
	mock.ExpectQuery("p.is_visible = true").
		WithArgs("user-1", nil, CandidatePoolSize).
		WillReturnRows(candidates)

	_, ai := aiServer(t, "I refuse to answer in JSON today.")

	matches, err := GenerateMatches(context.Background(), db, ai, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMatchesRateLimitPassesThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM profiles p\\s+WHERE p.id = \\$1").
		WithArgs("user-1").
		WillReturnRows(profileRow(sqlmock.NewRows(profileColumns), "user-1", "Requester"))
	candidates := sqlmock.NewRows(profileColumns)
	profileRow(candidates, "cand-a", "Alice")
	mock.ExpectQuery("p.is_visible = true").
		WithArgs("user-1", nil, CandidatePoolSize).
		WillReturnRows(candidates)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	ai := &llm.Client{BaseURL: srv.URL, HTTPClient: srv.Client()}

	_, err = GenerateMatches(context.Background(), db, ai, "user-1", nil)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestStoredMatchesScansProfiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	columns := []string{
		"id", "user_id", "matched_user_id", "event_id", "match_score",
		"confidence_score", "ai_explanation", "shared_skills",
		"shared_interests", "status",
		"p_id", "full_name", "title", "company", "location", "bio",
		"skills", "interests", "goals", "avatar_url",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		"match-1", "user-1", "cand-a", nil, 88, 0.82, "Strong overlap",
		"{Go}", "{AI}", "pending",
		"cand-a", "Alice", "Engineer", "Acme", "Berlin", "A bio",
		"{Go,Postgres}", "{AI}", "{Networking}", "")

	mock.ExpectQuery("FROM matches m").
		WithArgs("user-1", nil).
		WillReturnRows(rows)

	matches, err := StoredMatches(db, "user-1", nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 88, matches[0].MatchScore)
	require.NotNil(t, matches[0].Profile)
	assert.Equal(t, "Alice", matches[0].Profile.FullName)
	assert.Equal(t, []string{"Go"}, matches[0].SharedSkills)
}

package event

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetmate/backend/handlers/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authedRequest(t *testing.T, method, path string, body []byte, userID string) *http.Request {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	token, err := auth.GenerateToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestNewJoinSlugIsUnguessable(t *testing.T) {
	slug := newJoinSlug()
	assert.Len(t, slug, 32)
	assert.NotEqual(t, slug, newJoinSlug())
}

func TestJoinEventBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE join_slug").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("event-1", "GopherCon"))
	mock.ExpectExec("INSERT INTO event_attendees").
		WithArgs("event-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(map[string]string{"slug": "abc123"})
	rec := httptest.NewRecorder()
	JoinEventHandler(db)(rec, authedRequest(t, "POST", "/api/events/join", body, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"event_id":"event-1","event_name":"GopherCon"}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinEventUnknownSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE join_slug").
		WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	body, _ := json.Marshal(map[string]string{"slug": "revoked"})
	rec := httptest.NewRecorder()
	JoinEventHandler(db)(rec, authedRequest(t, "POST", "/api/events/join", body, "user-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEventRequiresOrganizerRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM user_roles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	body, _ := json.Marshal(CreateEventRequest{Name: "GopherCon"})
	rec := httptest.NewRecorder()
	CreateEventHandler(db)(rec, authedRequest(t, "POST", "/api/events", body, "user-1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegenerateSlugRevokesOldLink(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE events").
		WithArgs(sqlmock.AnyArg(), "event-1", "organizer-1").
		WillReturnRows(sqlmock.NewRows([]string{"join_slug"}).
			AddRow("fedcba9876543210fedcba9876543210"))

	req := authedRequest(t, "POST", "/api/events/event-1/slug", nil, "organizer-1")
	req = mux.SetURLVars(req, map[string]string{"id": "event-1"})
	rec := httptest.NewRecorder()
	RegenerateSlugHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"join_slug":"fedcba9876543210fedcba9876543210"}`, rec.Body.String())
}

func TestRegenerateSlugOnlyForOrganizer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("UPDATE events").
		WithArgs(sqlmock.AnyArg(), "event-1", "intruder").
		WillReturnRows(sqlmock.NewRows([]string{"join_slug"}))

	req := authedRequest(t, "POST", "/api/events/event-1/slug", nil, "intruder")
	req = mux.SetURLVars(req, map[string]string{"id": "event-1"})
	rec := httptest.NewRecorder()
	RegenerateSlugHandler(db)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

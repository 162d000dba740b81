package newsletter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribeRequest(t *testing.T, email string) *http.Request {
	t.Helper()
	body, err := json.Marshal(SubscribeRequest{Email: email})
	require.NoError(t, err)
	return httptest.NewRequest("POST", "/api/newsletter/subscribe", bytes.NewReader(body))
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, email := range []string{"", "not-an-email", "two words@example.com", "nobody@nodot"} {
		rec := httptest.NewRecorder()
		SubscribeHandler(db)(rec, subscribeRequest(t, email))

		assert.Equal(t, http.StatusBadRequest, rec.Code, "email %q", email)
		assert.Contains(t, rec.Body.String(), "valid email")
	}
}

func TestSubscribeInsertsNormalizedEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM newsletter_subscriptions").
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO newsletter_subscriptions").
		WithArgs("dana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	SubscribeHandler(db)(rec, subscribeRequest(t, "  Dana@Example.COM "))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM newsletter_subscriptions").
		WithArgs("erin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-1"))

	rec := httptest.NewRecorder()
	SubscribeHandler(db)(rec, subscribeRequest(t, "erin@example.com"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already subscribed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribeRateLimitsPerEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	email := "limited@example.com"
	mock.ExpectQuery("FROM newsletter_subscriptions").
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO newsletter_subscriptions").
		WithArgs(email).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for i := 0; i < 2; i++ {
		mock.ExpectQuery("FROM newsletter_subscriptions").
			WithArgs(email).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sub-1"))
	}

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		SubscribeHandler(db)(rec, subscribeRequest(t, email))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	SubscribeHandler(db)(rec, subscribeRequest(t, email))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
	assert.NoError(t, mock.ExpectationsWereMet())
}

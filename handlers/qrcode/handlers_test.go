package qrcode

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetmate/backend/handlers/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
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

func snapshotRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "full_name", "title", "company", "bio", "skills",
		"interests", "linkedin_url", "twitter_url", "website_url", "avatar_url",
	}).AddRow("owner-1", "Olivia Owner", "CTO", "Acme", "Builds things",
		"{Go}", "{AI}", nil, nil, nil, nil)
}

func TestNewTokenIs32Hex(t *testing.T) {
	token := NewToken()
	assert.Len(t, token, 32)
	assert.NotContains(t, token, "-")
	assert.NotEqual(t, token, NewToken())
}

func TestGenerateReturnsExistingToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT qr_code_id, full_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_id", "full_name"}).
			AddRow("deadbeefdeadbeefdeadbeefdeadbeef", "Uma User"))

	req := authedRequest(t, "POST", "/api/qr/generate", nil, "user-1")
	rec := httptest.NewRecorder()
	GenerateQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "deadbeefdeadbeefdeadbeefdeadbeef", resp.QRCodeID)
	assert.Equal(t, "Uma User", resp.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMintsTokenOnFirstUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT qr_code_id, full_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_id", "full_name"}).
			AddRow(nil, "Uma User"))
	mock.ExpectExec("UPDATE profiles").
		WithArgs(sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := authedRequest(t, "POST", "/api/qr/generate", nil, "user-1")
	rec := httptest.NewRecorder()
	GenerateQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.QRCodeID, 32)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateReadsBackWinnerAfterLostMintRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT qr_code_id, full_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_id", "full_name"}).
			AddRow(nil, "Uma User"))
	// No rows affected: someone else minted first
	mock.ExpectExec("UPDATE profiles").
		WithArgs(sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT qr_code_id, full_name").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"qr_code_id", "full_name"}).
			AddRow("cafebabecafebabecafebabecafebabe", "Uma User"))

	req := authedRequest(t, "POST", "/api/qr/generate", nil, "user-1")
	rec := httptest.NewRecorder()
	GenerateQRCodeHandler(db)(rec, req)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cafebabecafebabecafebabecafebabe", resp.QRCodeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE qr_code_id").
		WithArgs("nosuchtoken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}))

	body, _ := json.Marshal(ScanRequest{QRCodeID: "nosuchtoken"})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusNotFound, resp.Status)
}

func TestScanEmptyToken(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	body, _ := json.Marshal(ScanRequest{QRCodeID: ""})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusNotFound, resp.Status)
}

func TestScanOwnCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE qr_code_id").
		WithArgs("mytoken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow("scanner-1", "Sam Scanner"))

	body, _ := json.Marshal(ScanRequest{QRCodeID: "mytoken"})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusSelfConnect, resp.Status)
}

func TestScanAlreadyConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE qr_code_id").
		WithArgs("ownertoken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow("owner-1", "Olivia Owner"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("scanner-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("FROM profiles p").
		WithArgs("owner-1").
		WillReturnRows(snapshotRows())

	body, _ := json.Marshal(ScanRequest{QRCodeID: "ownertoken"})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusAlreadyConnected, resp.Status)
	assert.Equal(t, "Olivia Owner", resp.ConnectedUserName)
	require.NotNil(t, resp.ConnectedUserProfile)
	assert.Equal(t, "owner-1", resp.ConnectedUserProfile.ID)
}

func TestScanSuccessCreatesConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE qr_code_id").
		WithArgs("ownertoken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow("owner-1", "Olivia Owner"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("scanner-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO connections").
		WithArgs("scanner-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("conn-1"))
	mock.ExpectQuery("SELECT full_name FROM profiles").
		WithArgs("scanner-1").
		WillReturnRows(sqlmock.NewRows([]string{"full_name"}).AddRow("Sam Scanner"))
	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO analytics_events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM profiles p").
		WithArgs("owner-1").
		WillReturnRows(snapshotRows())

	body, _ := json.Marshal(ScanRequest{QRCodeID: "ownertoken"})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "Olivia Owner", resp.ConnectedUserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanInsertRaceReportsAlreadyConnected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("WHERE qr_code_id").
		WithArgs("ownertoken").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow("owner-1", "Olivia Owner"))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("scanner-1", "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	// The pre-check passed but a concurrent scan inserted first
	mock.ExpectQuery("INSERT INTO connections").
		WithArgs("scanner-1", "owner-1").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "connections_pair_key"})
	mock.ExpectQuery("FROM profiles p").
		WithArgs("owner-1").
		WillReturnRows(snapshotRows())

	body, _ := json.Marshal(ScanRequest{QRCodeID: "ownertoken"})
	req := authedRequest(t, "POST", "/api/qr/scan", body, "scanner-1")
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp ScanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusAlreadyConnected, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanUnauthorized(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := httptest.NewRequest("POST", "/api/qr/scan", nil)
	rec := httptest.NewRecorder()
	ScanQRCodeHandler(db)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package status

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectStatus(t *testing.T, expected, fullName string, title, company interface{}, skills, interests string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM profiles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"full_name", "title", "company", "skills", "interests"}).
			AddRow(fullName, title, company, skills, interests))
	mock.ExpectExec("UPDATE profiles SET status").
		WithArgs(expected, "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, UpdateProfileStatus(tx, "user-1"))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfileStatusComplete(t *testing.T) {
	expectStatus(t, "complete", "Ada Attendee", "Engineer", nil, "{Go}", "{AI}")
}

func TestUpdateProfileStatusCompanyAlsoCounts(t *testing.T) {
	expectStatus(t, "complete", "Ada Attendee", nil, "Acme", "{Go}", "{AI}")
}

func TestUpdateProfileStatusMissingName(t *testing.T) {
	expectStatus(t, "incomplete", "", "Engineer", "Acme", "{Go}", "{AI}")
}

func TestUpdateProfileStatusMissingTitleAndCompany(t *testing.T) {
	expectStatus(t, "incomplete", "Ada Attendee", nil, nil, "{Go}", "{AI}")
}

func TestUpdateProfileStatusMissingSkills(t *testing.T) {
	expectStatus(t, "incomplete", "Ada Attendee", "Engineer", nil, "{}", "{AI}")
}

func TestUpdateProfileStatusMissingInterests(t *testing.T) {
	expectStatus(t, "incomplete", "Ada Attendee", "Engineer", nil, "{Go}", "{}")
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaschool/admin-api/internal/models"
)

func TestWeeklyAvailabilityRepositoryListByOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "owner_type", "owner_id", "weekday", "from_time", "until_time", "created_at"}).
		AddRow("w1", "teacher", "t1", "monday", "09:00", "13:00", now).
		AddRow("w2", "teacher", "t1", "wednesday", "15:00", "18:00", now)
	mock.ExpectQuery("SELECT (.+) FROM weekly_availability WHERE owner_type = \\$1 AND owner_id = \\$2").
		WithArgs(models.OwnerTeacher, "t1").
		WillReturnRows(rows)

	entries, err := repo.ListByOwner(context.Background(), models.OwnerTeacher, "t1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "09:00", entries[0].From)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyAvailabilityRepositoryReplaceForOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weekly_availability WHERE owner_type = $1 AND owner_id = $2")).
		WithArgs(models.OwnerStudent, "s1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO weekly_availability").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO weekly_availability").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.ReplaceForOwner(context.Background(), models.OwnerStudent, "s1", []models.WeeklyAvailability{
		{Weekday: "monday", From: "09:00", Until: "13:00"},
		{ID: "w7", Weekday: "thursday", From: "16:00", Until: "19:00"},
	})

	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[0].ID, "new rows get an id assigned")
	assert.Equal(t, "w7", saved[1].ID, "existing rows keep theirs")
	assert.Equal(t, models.OwnerStudent, saved[0].OwnerType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyAvailabilityRepositoryReplaceRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeeklyAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM weekly_availability WHERE owner_type = $1 AND owner_id = $2")).
		WithArgs(models.OwnerTeacher, "t1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO weekly_availability").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.ReplaceForOwner(context.Background(), models.OwnerTeacher, "t1", []models.WeeklyAvailability{
		{Weekday: "tuesday", From: "10:00", Until: "12:00"},
	})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

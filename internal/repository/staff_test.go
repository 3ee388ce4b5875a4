package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStaffByID_WithoutPIN(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name", "name_reading", "pin_hash", "is_admin", "is_active", "last_login_at", "created_at"}).
		AddRow("管理员", "guanliyuan", nil, true, true, nil, morning)

	mock.ExpectQuery(`SELECT name, name_reading, pin_hash, .* FROM staff WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	staff, err := repo.GetStaffByID(1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), staff.ID)
	assert.Empty(t, staff.PINHash)
	assert.True(t, staff.IsAdmin)
	assert.Nil(t, staff.LastLoginAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStaffPIN(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE staff SET pin_hash`).
		WithArgs("hash", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE staff SET pin_hash`).
		WithArgs("", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateStaffPIN(2, "hash"))
	assert.ErrorIs(t, repo.UpdateStaffPIN(9, ""), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

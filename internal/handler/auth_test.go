package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kaigo-records/care-records/backend/internal/domain"
)

func TestCheckPIN(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)

	staff := &domain.Staff{PINHash: string(hash)}
	admin := &domain.Staff{IsAdmin: true}

	assert.NoError(t, checkPIN(staff, "1234"))
	assert.ErrorIs(t, checkPIN(staff, "0000"), bcrypt.ErrMismatchedHashAndPassword)
	assert.ErrorIs(t, checkPIN(staff, ""), errPINRequired)

	assert.NoError(t, checkPIN(admin, ""))
	assert.ErrorIs(t, checkPIN(admin, "1234"), errPINRequired)
}

package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	id := uuid.New()

	access, err := m.GenerateAccessToken(id, "cashier@shop.test", "cashier")
	require.NoError(t, err)
	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "cashier", claims.Role)

	refresh, err := m.GenerateRefreshToken(id)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	other := NewJWTManager("different", time.Hour, time.Hour)
	_, err = other.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP(6)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp)
}

func TestGenerateInvoiceNo(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-20260115-0042", GenerateInvoiceNo("INV", at, 42))
	random := GenerateInvoiceNo("INV", at, 0)
	assert.True(t, strings.HasPrefix(random, "INV-20260115-"))
	assert.Len(t, random, len("INV-20260115-")+6)
}

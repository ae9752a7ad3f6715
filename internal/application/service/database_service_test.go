package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/infrastructure/cache"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type databaseFixture struct {
	svc     *DatabaseService
	admin   *memAdmin
	mailer  *fakeMailer
	adminID uuid.UUID
	staffID uuid.UUID
}

func newDatabaseFixture() *databaseFixture {
	fx := &databaseFixture{admin: &memAdmin{}, mailer: &fakeMailer{}, adminID: uuid.New(), staffID: uuid.New()}
	users := newMemUsers(
		entity.User{ID: fx.adminID, FirstName: "Ada", Email: "owner@shop.test", Role: entity.RoleAdmin},
		entity.User{ID: fx.staffID, FirstName: "Bo", Email: "till@shop.test", Role: entity.RoleCashier},
	)
	fx.svc = NewDatabaseService(fx.admin, users, &memSettings{}, cache.New(nil), fx.mailer, time.Minute)
	return fx
}

func TestRequestOTPAdminOnly(t *testing.T) {
	fx := newDatabaseFixture()
	ctx := context.Background()

	_, err := fx.svc.RequestOTP(ctx, fx.staffID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	req, err := fx.svc.RequestOTP(ctx, fx.adminID)
	require.NoError(t, err)
	assert.Equal(t, "o****@shop.test", req.SentTo)
	assert.Len(t, fx.mailer.lastOTP(), 6)
	require.Len(t, fx.admin.otps, 1)
	assert.NotEqual(t, fx.mailer.lastOTP(), fx.admin.otps[0].CodeHash)
}

func TestRequestOTPMailFailure(t *testing.T) {
	fx := newDatabaseFixture()
	fx.mailer.err = errors.New("smtp: connection refused")
	_, err := fx.svc.RequestOTP(context.Background(), fx.adminID)
	assert.Equal(t, http.StatusBadGateway, appCode(t, err))
}

func TestClearRequiresConfirmationAndOTP(t *testing.T) {
	fx := newDatabaseFixture()
	ctx := context.Background()
	_, err := fx.svc.RequestOTP(ctx, fx.adminID)
	require.NoError(t, err)
	code := fx.mailer.lastOTP()

	err = fx.svc.Clear(ctx, fx.adminID, code, "delete all data")
	assert.Equal(t, []string{"confirmation"}, appErrorFields(err))

	err = fx.svc.Clear(ctx, fx.adminID, code+"9", ClearConfirmation)
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)
	assert.Equal(t, 1, fx.admin.otps[0].Attempts)
	assert.Zero(t, fx.admin.cleared)

	require.NoError(t, fx.svc.Clear(ctx, fx.adminID, code, ClearConfirmation))
	assert.Equal(t, 1, fx.admin.cleared)

	err = fx.svc.Clear(ctx, fx.adminID, code, ClearConfirmation)
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)
	assert.Equal(t, 1, fx.admin.cleared)
}

func TestClearLocksOutAfterTooManyAttempts(t *testing.T) {
	fx := newDatabaseFixture()
	ctx := context.Background()
	_, err := fx.svc.RequestOTP(ctx, fx.adminID)
	require.NoError(t, err)
	code := fx.mailer.lastOTP()

	for i := 0; i < otpMaxAttempts; i++ {
		err := fx.svc.Clear(ctx, fx.adminID, "x", ClearConfirmation)
		require.ErrorIs(t, err, apperror.ErrInvalidOTP)
	}
	err = fx.svc.Clear(ctx, fx.adminID, code, ClearConfirmation)
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)
	assert.Zero(t, fx.admin.cleared)
}

func TestClearRejectsExpiredOTP(t *testing.T) {
	fx := newDatabaseFixture()
	ctx := context.Background()
	_, err := fx.svc.RequestOTP(ctx, fx.adminID)
	require.NoError(t, err)

	fx.svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	err = fx.svc.Clear(ctx, fx.adminID, fx.mailer.lastOTP(), ClearConfirmation)
	assert.ErrorIs(t, err, apperror.ErrInvalidOTP)
}

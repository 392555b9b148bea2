package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/singularity/internal/common"
	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/config"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

const testPassword = "correct-horse"

var testHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword(testPassword)
	if err != nil {
		panic(err)
	}
	return h
})

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newAuthService(t *testing.T) (*AuthService, *fakeRepoManager, sqlmock.Sqlmock, *metrics.Metrics) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	m := newMetrics()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		LockoutThreshold:             5,
		LockoutDuration:              30 * time.Minute,
	}
	s := NewAuthService(db, rm, cfg, m, logging.Nop{})
	s.now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
	})
	return s, rm, mock, m
}

func activeUser() *models.User {
	return &models.User{ID: "u1", Email: "a@example.com", PasswordHash: testHash(), IsActive: true, IsStaff: true}
}

func TestTokenAuth_Success(t *testing.T) {
	s, rm, mock, m := newAuthService(t)
	rm.u.byEmail = activeUser()
	mock.ExpectBegin()
	mock.ExpectCommit()

	pair, err := s.TokenAuth(context.Background(), " A@Example.COM", testPassword, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", rm.u.byEmailArg)
	assert.Equal(t, "10.0.0.1", rm.u.successIP)
	assert.Equal(t, []string{pair.RefreshToken}, rm.r.created)
	assert.Len(t, pair.RefreshToken, 64)
	assert.Equal(t, fixedNow.Add(2*time.Hour), rm.r.expiresAt)

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.True(t, claims.Staff)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
}

func TestTokenAuth_Rejections(t *testing.T) {
	future := fixedNow.Add(time.Minute)
	cases := []struct {
		name   string
		setup  func(*fakeRepoManager)
		want   error
		result string
	}{
		{"unknown user", func(rm *fakeRepoManager) { rm.u.getErr = common.ErrorNotFound }, common.ErrorUnauthorized, "invalid"},
		{"lookup failure", func(rm *fakeRepoManager) { rm.u.getErr = errors.New("db down") }, common.ErrorInternal, "error"},
		{"inactive", func(rm *fakeRepoManager) {
			u := activeUser()
			u.IsActive = false
			rm.u.byEmail = u
		}, common.ErrorUnauthorized, "invalid"},
		{"soft deleted", func(rm *fakeRepoManager) {
			u := activeUser()
			u.IsDeleted = true
			rm.u.byEmail = u
		}, common.ErrorUnauthorized, "invalid"},
		{"locked", func(rm *fakeRepoManager) {
			u := activeUser()
			u.AccountLockedUntil = &future
			rm.u.byEmail = u
		}, common.ErrAccountLocked, "locked"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, rm, _, m := newAuthService(t)
			tc.setup(rm)

			_, err := s.TokenAuth(context.Background(), "a@example.com", testPassword, "")
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 0, rm.u.failedCalls)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues(tc.result)))
		})
	}
}

func TestTokenAuth_ExpiredLockAllowsLogin(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	past := fixedNow.Add(-time.Second)
	u := activeUser()
	u.AccountLockedUntil = &past
	rm.u.byEmail = u
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := s.TokenAuth(context.Background(), "a@example.com", testPassword, "")
	assert.NoError(t, err)
}

func TestTokenAuth_WrongPassword(t *testing.T) {
	s, rm, _, _ := newAuthService(t)
	rm.u.byEmail = activeUser()

	_, err := s.TokenAuth(context.Background(), "a@example.com", "nope", "")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, 1, rm.u.failedCalls)
	assert.Equal(t, 5, rm.u.failedThresh)
	assert.Equal(t, fixedNow.Add(30*time.Minute), rm.u.failedUntil)
	assert.Empty(t, rm.r.created)
}

func TestTokenAuth_WrongPasswordLocks(t *testing.T) {
	s, rm, _, m := newAuthService(t)
	rm.u.byEmail = activeUser()
	until := fixedNow.Add(30 * time.Minute)
	rm.u.lockedUntil = &until

	_, err := s.TokenAuth(context.Background(), "a@example.com", "nope", "")
	assert.ErrorIs(t, err, common.ErrAccountLocked)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("locked")))
}

func TestTokenAuth_IssueFailureRollsBack(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.u.byEmail = activeUser()
	rm.r.createErr = errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.TokenAuth(context.Background(), "a@example.com", testPassword, "")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestVerifyToken(t *testing.T) {
	s, _, _, _ := newAuthService(t)

	tok, err := auth.GenerateToken("u1", false, []byte("k"), time.Minute)
	require.NoError(t, err)

	claims, err := s.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	_, err = s.VerifyToken("garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_Rotates(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.r.consumeOut = &models.RefreshToken{UserID: "u1", Token: "old", Expires: fixedNow.Add(time.Minute)}
	rm.u.byID = activeUser()
	mock.ExpectBegin()
	mock.ExpectCommit()

	pair, err := s.RefreshToken(context.Background(), "old")
	require.NoError(t, err)
	assert.NotEqual(t, "old", pair.RefreshToken)
	assert.Equal(t, []string{pair.RefreshToken}, rm.r.created)
}

func TestRefreshToken_Unknown(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.r.consumeErr = common.ErrorNotFound
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_ExpiredIsConsumed(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.r.consumeOut = &models.RefreshToken{UserID: "u1", Expires: fixedNow.Add(-time.Minute)}
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := s.RefreshToken(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Empty(t, rm.r.created)
}

func TestRefreshToken_DeletedUser(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.r.consumeOut = &models.RefreshToken{UserID: "u1", Expires: fixedNow.Add(time.Minute)}
	u := activeUser()
	u.IsDeleted = true
	rm.u.byID = u
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDeleteMe(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, s.DeleteMe(context.Background(), "u1"))
	assert.Equal(t, "u1", rm.u.softDeleted)
	assert.Equal(t, "u1", rm.r.revoked)
}

func TestDeleteMe_NotFoundRollsBack(t *testing.T) {
	s, rm, mock, _ := newAuthService(t)
	rm.u.softDeleteErr = common.ErrorNotFound
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := s.DeleteMe(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, rm.r.revoked)
}

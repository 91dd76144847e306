package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/hash"
	"github.com/malexstudio/site_api/internal/ledger"
	"github.com/malexstudio/site_api/internal/models"
	"github.com/malexstudio/site_api/internal/roles"
	"github.com/malexstudio/site_api/internal/token"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}, &models.Admin{}))

	codec := token.NewCodec([]byte("test-signing-secret"))
	return NewAuthService(codec, ledger.New(db), db, 15*time.Minute, 24*time.Hour, "10.0.0.7")
}

func TestIssuePair(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	pair, err := s.IssuePair(ctx, "u1", roles.User)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	for _, raw := range []string{pair.AccessToken, pair.RefreshToken} {
		claims, err := s.Codec.Verify(raw)
		require.NoError(t, err)
		require.Equal(t, "u1", claims.Subject)
		role, ok := claims.Role()
		require.True(t, ok)
		require.Equal(t, roles.User, role)
	}

	// the refresh token is registered in the ledger, the access token is not
	frag, err := token.Fragment(pair.RefreshToken)
	require.NoError(t, err)
	ok, err := s.Ledger.IsValid(ctx, frag, roles.User, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	frag, err = token.Fragment(pair.AccessToken)
	require.NoError(t, err)
	ok, err = s.Ledger.IsValid(ctx, frag, roles.User, "u1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIssuePairTwiceCreatesIndependentRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	// back-to-back issuance for one identity lands in the same second;
	// each call must still create its own separately revocable record
	first, err := s.IssuePair(ctx, "u1", roles.User)
	require.NoError(t, err)
	second, err := s.IssuePair(ctx, "u1", roles.User)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// consuming one leaves the other live
	_, err = s.Rotate(ctx, first.RefreshToken)
	require.NoError(t, err)
	_, err = s.Rotate(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	pair, err := s.IssuePair(ctx, "u1", roles.User)
	require.NoError(t, err)

	next, err := s.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// replaying the spent token fails the same way an unknown one does
	_, err = s.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// the replacement still works
	_, err = s.Rotate(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRotateRejectsNonRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	pair, err := s.IssuePair(ctx, "u1", roles.User)
	require.NoError(t, err)

	// a valid access token has no ledger record
	_, err = s.Rotate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	// garbage and foreign signatures fail identically
	_, err = s.Rotate(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)

	foreign, err := token.NewCodec([]byte("other-secret")).Sign("u1", roles.User, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Rotate(ctx, foreign)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestRevokeKillsAllRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	first, err := s.IssuePair(ctx, "u1", roles.Admin)
	require.NoError(t, err)
	second, err := s.IssuePair(ctx, "u1", roles.Admin)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, first.AccessToken))

	_, err = s.Rotate(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
	_, err = s.Rotate(ctx, second.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenInvalid)
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	passwordHash, err := hash.HashPassword("correct horse")
	require.NoError(t, err)
	require.NoError(t, s.DB.Create(&models.Admin{
		UserID:       "admin-1",
		Username:     "malex",
		PasswordHash: passwordHash,
	}).Error)

	pair, err := s.AdminLogin(ctx, "malex", "correct horse")
	require.NoError(t, err)

	claims, err := s.Codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "admin-1", claims.Subject)
	role, ok := claims.Role()
	require.True(t, ok)
	require.Equal(t, roles.Admin, role)

	// unknown admin and wrong password are indistinguishable
	_, errUnknown := s.AdminLogin(ctx, "nobody", "correct horse")
	require.ErrorIs(t, errUnknown, ErrLoginFailed)
	_, errWrong := s.AdminLogin(ctx, "malex", "wrong password")
	require.ErrorIs(t, errWrong, ErrLoginFailed)
	require.Equal(t, errUnknown, errWrong)
}

func TestIsTrustedBackend(t *testing.T) {
	s := newTestService(t)
	require.True(t, s.IsTrustedBackend("10.0.0.7:33412"))
	require.True(t, s.IsTrustedBackend("::ffff:127.0.0.1"))
	require.False(t, s.IsTrustedBackend("8.8.8.8"))
}

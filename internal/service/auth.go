package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/hash"
	"github.com/malexstudio/site_api/internal/ledger"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/models"
	"github.com/malexstudio/site_api/internal/roles"
	"github.com/malexstudio/site_api/internal/token"
)

// Credential-shaped failures. Every one of them must look identical to the
// caller; the split never crosses the transport boundary.
var (
	// ErrRefreshTokenInvalid covers never issued, already used, revoked,
	// expired, wrong owner and failed verification alike.
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")

	// ErrLoginFailed covers unknown admin and wrong password alike.
	ErrLoginFailed = errors.New("login failed")

	// ErrSenderNotTrusted rejects first-time issuance from outside the
	// backend.
	ErrSenderNotTrusted = errors.New("sender is not a trusted backend")
)

// Pair is a freshly minted access/refresh token pair.
type Pair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"r_token"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// AuthService orchestrates token issuance, rotation and revocation. It
// never touches refresh-token rows directly: all ledger state goes through
// the Ledger.
type AuthService struct {
	Codec  *token.Codec
	Ledger *ledger.Ledger
	DB     *gorm.DB

	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	TrustedBackend string

	now func() time.Time
}

func NewAuthService(codec *token.Codec, lgr *ledger.Ledger, db *gorm.DB, accessTTL, refreshTTL time.Duration, trustedBackend string) *AuthService {
	return &AuthService{
		Codec:          codec,
		Ledger:         lgr,
		DB:             db,
		AccessTTL:      accessTTL,
		RefreshTTL:     refreshTTL,
		TrustedBackend: trustedBackend,
		now:            time.Now,
	}
}

// IssuePair mints an access/refresh pair for (subject, role) and registers
// the refresh token in the ledger before returning it. Concurrent calls
// for the same identity each create an independent, separately revocable
// record.
func (s *AuthService) IssuePair(ctx context.Context, subject string, role roles.Role) (*Pair, error) {
	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	accessToken, err := s.Codec.Sign(subject, role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.Codec.Sign(subject, role, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	fragment, err := token.Fragment(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("fragment refresh token: %w", err)
	}
	if err := s.Ledger.Issue(ctx, subject, role, refreshExp, fragment); err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Rotate exchanges a live refresh token for a new pair. The old record is
// revoked before anything new is minted, so every refresh token is single
// use: of two concurrent rotations with the same token exactly one wins.
func (s *AuthService) Rotate(ctx context.Context, oldRefresh string) (*Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.rotate")

	claims, err := s.Codec.Verify(oldRefresh)
	if err != nil {
		l.Warn("rotation_rejected", "reason", "verification_failed", "error", err)
		return nil, ErrRefreshTokenInvalid
	}
	role, ok := claims.Role()
	if !ok {
		l.Warn("rotation_rejected", "reason", "unknown_role")
		return nil, ErrRefreshTokenInvalid
	}
	fragment, err := token.Fragment(oldRefresh)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	consumed, err := s.Ledger.Consume(ctx, fragment, role, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !consumed {
		// Absent, already used, revoked or expired: all identical here.
		l.Warn("rotation_rejected", "reason", "ledger_miss")
		return nil, ErrRefreshTokenInvalid
	}

	return s.IssuePair(ctx, claims.Subject, role)
}

// Revoke flags every refresh token owned by the identity the given token
// names. The token's provenance must already be proven by the caller (it
// passed bearer auth); the claims are decoded without signature
// verification and are never an authorization decision here.
func (s *AuthService) Revoke(ctx context.Context, raw string) error {
	claims, err := s.Codec.DecodeUnverified(raw)
	if err != nil {
		return ErrRefreshTokenInvalid
	}
	role, ok := claims.Role()
	if !ok {
		return ErrRefreshTokenInvalid
	}
	_, err = s.Ledger.RevokeAllFor(ctx, claims.Subject, role)
	return err
}

// AdminLogin checks admin credentials and, on success, issues an ADMIN
// pair for the admin's user id. Unknown username and wrong password are
// indistinguishable.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.admin_login", "username", username)

	var admin models.Admin
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown_admin")
			return nil, ErrLoginFailed
		}
		return nil, fmt.Errorf("admin lookup: %w", err)
	}
	if !hash.CheckPassword(admin.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong_password")
		return nil, ErrLoginFailed
	}

	return s.IssuePair(ctx, admin.UserID, roles.Admin)
}

// IsTrustedBackend reports whether remote may use the first-issuance path.
func (s *AuthService) IsTrustedBackend(remote string) bool {
	return TrustedSender(remote, s.TrustedBackend)
}

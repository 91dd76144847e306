package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/malexstudio/site_api/internal/models"
	"github.com/malexstudio/site_api/internal/roles"
)

// PersistenceError marks a storage failure. It is the one failure mode
// that must not be collapsed into "unauthorized": a broken database is an
// infrastructure problem, not a bad credential.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("refresh token ledger: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistenceError reports whether err is a ledger storage failure.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Ledger owns the refresh-token records. Records are created on issuance
// and flagged revoked on consumption or logout; they are never deleted, so
// a replayed token is indistinguishable from one that never existed.
type Ledger struct {
	DB  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{DB: db, now: time.Now}
}

// NewWithClock injects the time source, for expiry tests.
func NewWithClock(db *gorm.DB, now func() time.Time) *Ledger {
	return &Ledger{DB: db, now: now}
}

// Issue inserts a fresh non-revoked record for the token identified by
// fragment.
func (l *Ledger) Issue(ctx context.Context, subject string, role roles.Role, expiresAt time.Time, fragment string) error {
	record := models.RefreshToken{
		Token:     fragment,
		Subject:   subject,
		Role:      string(role),
		ExpiresAt: expiresAt.Unix(),
		Revoked:   false,
	}
	if err := l.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return &PersistenceError{Op: "issue", Err: err}
	}
	return nil
}

// IsValid reports whether a live record matches (fragment, role, subject).
// Absent, revoked and expired records all answer false identically, so a
// caller cannot tell a revoked token apart from one that was never issued.
func (l *Ledger) IsValid(ctx context.Context, fragment string, role roles.Role, subject string) (bool, error) {
	var count int64
	err := l.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND role = ? AND subject = ? AND revoked = ? AND expires_at > ?",
			fragment, string(role), subject, false, l.now().Unix()).
		Count(&count).Error
	if err != nil {
		return false, &PersistenceError{Op: "lookup", Err: err}
	}
	return count > 0, nil
}

// Consume atomically revokes the record matching (fragment, role, subject)
// if it is still live, reporting whether this call won. Two concurrent
// rotations of the same token see exactly one true: the revoke is a single
// conditional update, and zero rows affected means the record was already
// gone, revoked or expired.
func (l *Ledger) Consume(ctx context.Context, fragment string, role roles.Role, subject string) (bool, error) {
	result := l.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ? AND role = ? AND subject = ? AND revoked = ? AND expires_at > ?",
			fragment, string(role), subject, false, l.now().Unix()).
		Update("revoked", true)
	if result.Error != nil {
		return false, &PersistenceError{Op: "consume", Err: result.Error}
	}
	return result.RowsAffected > 0, nil
}

// RevokeAllFor flags every live record owned by (subject, role), returning
// how many were affected. Used for logout and for revocation after
// rotation.
func (l *Ledger) RevokeAllFor(ctx context.Context, subject string, role roles.Role) (int64, error) {
	result := l.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("subject = ? AND role = ? AND revoked = ?", subject, string(role), false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, &PersistenceError{Op: "revoke", Err: result.Error}
	}
	return result.RowsAffected, nil
}

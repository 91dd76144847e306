package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/malexstudio/site_api/internal/roles"
)

// Issuer is the fixed iss claim every token of this system carries.
const Issuer = "malex:api"

// Verification failures. The guard collapses all of them into one
// undifferentiated unauthorized outcome; the split exists for logs and
// tests only.
var (
	ErrMalformedToken       = errors.New("malformed token")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrExpiredToken         = errors.New("token expired")
	ErrMissingClaims        = errors.New("token is missing required claims")
	ErrUnrecognizedAudience = errors.New("token audience is not a known role")
)

// Claims is the payload of every signed token: iss, aud (= role), sub,
// iat, exp. Subject may be empty on legacy guest tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Role returns the role carried in the audience claim.
func (c *Claims) Role() (roles.Role, bool) {
	if len(c.Audience) == 0 {
		return "", false
	}
	return roles.Parse(c.Audience[0])
}

// Codec signs and verifies HS256 compact tokens with the process-wide
// signing key. The key is loaded once at startup and never mutated, so a
// Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// NewCodecWithClock injects the time source, for expiry tests.
func NewCodecWithClock(secret []byte, now func() time.Time) *Codec {
	return &Codec{secret: secret, now: now}
}

// Sign mints a token for subject with the given role, valid until exp.
// Every token carries a fresh jti: iat and exp have second precision, so
// without it two issuances in the same second would be byte-identical and
// collide on the ledger's unique fragment.
func (c *Codec) Sign(subject string, role roles.Role, exp time.Time) (string, error) {
	now := c.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{string(role)},
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks signature and claims. A token is valid strictly before its
// expiry instant: at now == exp it is already expired.
func (c *Codec) Verify(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, ErrMissingClaims
		default:
			return nil, ErrMalformedToken
		}
	}
	if err := validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeUnverified parses claims without checking the signature. Only for
// code paths whose caller already proved possession through another
// channel; never an authorization decision by itself.
func (c *Codec) DecodeUnverified(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

func validateClaims(claims *Claims) error {
	if claims.Issuer != Issuer {
		return ErrMissingClaims
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return ErrMissingClaims
	}
	if len(claims.Audience) == 0 {
		return ErrMissingClaims
	}
	if _, ok := roles.Parse(claims.Audience[0]); !ok {
		return ErrUnrecognizedAudience
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return ErrMalformedToken
	}
	return nil
}

// Fragment derives the ledger key for a compact token: the hex SHA-256 of
// its signature segment. The raw signature never touches storage.
func Fragment(raw string) (string, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", ErrMalformedToken
	}
	sum := sha256.Sum256([]byte(parts[2]))
	return hex.EncodeToString(sum[:]), nil
}

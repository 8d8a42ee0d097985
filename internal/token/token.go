// Package token mints and verifies the signed bearer tokens used for
// stateless sessions. Verification is a pure computation over the serialized
// token and the process signing key; nothing is stored server-side, so a
// token's validity is exactly its signature plus its expiry.
package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Issuer is the fixed iss claim stamped on every token.
const Issuer = "server"

// DefaultTTL is the validity window of issued tokens.
const DefaultTTL = 10 * time.Minute

// Codec issues and verifies HS256-signed tokens with a process-wide key.
// The key lives for the process lifetime only: after a restart with a fresh
// key, all previously issued tokens become unverifiable.
type Codec struct {
	key []byte
	ttl time.Duration
	log *zap.Logger
}

// NewCodec constructs a Codec. A zero ttl falls back to DefaultTTL.
func NewCodec(key []byte, ttl time.Duration, log *zap.Logger) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{key: key, ttl: ttl, log: log}
}

// Issue builds a signed token for the given subject: fresh unique id, fixed
// issuer, issued-at now and expiration at issued-at plus the validity window.
func (c *Codec) Issue(subject string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        id.String(),
		Issuer:    Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify parses a serialized token and checks signature, structure, issuer
// and expiry in one pass. All failure causes collapse into ok=false; the
// cause is logged for diagnostics and never surfaced to the caller.
func (c *Codec) Verify(serialized string) (*jwt.RegisteredClaims, bool) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(serialized, &claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return c.key, nil
		},
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		c.log.Debug("token rejected", zap.Error(err))
		return nil, false
	}
	return &claims, true
}

// SubjectOf verifies a serialized token and returns its subject.
func (c *Codec) SubjectOf(serialized string) (string, bool) {
	claims, ok := c.Verify(serialized)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

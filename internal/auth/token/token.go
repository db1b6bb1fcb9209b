// Package token issues and verifies signed bearer tokens.
//
// Tokens are stateless: verification needs only the shared signing secret,
// never a store lookup.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/contactshub/server/internal/platform/errors"
)

const signingMethod = "HS256"

// Issuer signs and verifies bearer tokens for authenticated users.
type Issuer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// claims is the internal claims type used for JWT parsing.
type claims struct {
	jwt.RegisteredClaims
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue mints a signed token carrying the user id with an expiry.
func (i Issuer) Issue(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New(errors.CodeUnauthenticated, "user id is required")
	}
	if len(i.Secret) == 0 {
		return "", errors.New(errors.CodeUnknown, "token signing secret is not configured")
	}
	now := i.now().UTC()
	ttl := i.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", errors.Wrap(errors.CodeUnknown, "sign token", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the user id it encodes.
// Missing, malformed, expired, and badly-signed tokens all fail with the
// same unauthenticated code.
func (i Issuer) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", errors.New(errors.CodeUnauthenticated, "token is required")
	}
	if len(i.Secret) == 0 {
		return "", errors.New(errors.CodeUnknown, "token signing secret is not configured")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.Issuer))
	}

	var parsed claims
	if _, err := jwt.ParseWithClaims(tokenString, &parsed, func(*jwt.Token) (any, error) {
		return i.Secret, nil
	}, options...); err != nil {
		return "", errors.Wrap(errors.CodeUnauthenticated, "invalid token", err)
	}

	userID := strings.TrimSpace(parsed.Subject)
	if userID == "" {
		return "", errors.New(errors.CodeUnauthenticated, "token has no subject")
	}
	return userID, nil
}

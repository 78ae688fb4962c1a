package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	purposeSession = "session"
	purposeState   = "oauth_state"

	stateTTL = 10 * time.Minute
)

type claims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. The subject is the user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (ti *TokenIssuer) Issue(userID string) (string, error) {
	return ti.sign(userID, purposeSession, ti.ttl)
}

// Parse returns the user id of a valid session token.
func (ti *TokenIssuer) Parse(token string) (string, error) {
	c, err := ti.parse(token, purposeSession)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}

// IssueState returns a short-lived token used as the OAuth state parameter.
func (ti *TokenIssuer) IssueState() (string, error) {
	return ti.sign(uuid.NewString(), purposeState, stateTTL)
}

func (ti *TokenIssuer) VerifyState(state string) error {
	_, err := ti.parse(state, purposeState)
	return err
}

func (ti *TokenIssuer) sign(subject, purpose string, ttl time.Duration) (string, error) {
	now := ti.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (ti *TokenIssuer) parse(token, purpose string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if c.Purpose != purpose || c.Subject == "" {
		return nil, fmt.Errorf("%w: unexpected token purpose", ErrUnauthorized)
	}
	return c, nil
}

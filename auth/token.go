package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Actor is the identity a verified token carries for one request.
type Actor struct {
	UserID uuid.UUID   `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Claims is the token payload.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration, issuer string) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}
}

// WithClock overrides the clock used for iat/exp and verification.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

func (t *Tokens) Issue(user *models.User) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the actor in a token. Errors wrap errs.ErrExpiredToken or
// errs.ErrInvalidToken so the reason can be logged.
func (t *Tokens) Verify(raw string) (Actor, error) {
	if raw == "" {
		return Actor{}, errs.ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Actor{}, fmt.Errorf("%w: %v", errs.ErrExpiredToken, err)
		}
		return Actor{}, fmt.Errorf("%w: %v", errs.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: bad userId claim", errs.ErrInvalidToken)
	}

	return Actor{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

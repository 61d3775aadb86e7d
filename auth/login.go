package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserFinder is the lookup the authenticator needs from the user store.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Session is returned by a successful login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type Authenticator struct {
	users  UserFinder
	tokens *Tokens
}

func NewAuthenticator(users UserFinder, tokens *Tokens) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// Verified in place of a real hash for unknown emails.
func dummyPasswordHash() string {
	dummyOnce.Do(func() {
		h, err := HashPassword("epitaphe360-not-a-real-password")
		if err != nil {
			log.Error().Err(err).Msg("Failed to build dummy password hash")
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// Login returns errs.InvalidCredentials for an unknown email and a wrong
// password alike.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("Failed to look up user during login")
		return nil, errs.NewInternalError("Erreur interne du serveur")
	}

	if user == nil || err != nil {
		_, _ = CheckPassword(password, dummyPasswordHash())
		return nil, errs.InvalidCredentials
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Str("userId", user.ID.String()).Msg("Stored password hash is unreadable")
		return nil, errs.InvalidCredentials
	}
	if !ok {
		return nil, errs.InvalidCredentials
	}

	token, expiresAt, err := a.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token")
		return nil, errs.NewInternalError("Erreur interne du serveur")
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Verify resolves a bearer token to the actor it names.
func (a *Authenticator) Verify(token string) (Actor, error) {
	return a.tokens.Verify(token)
}

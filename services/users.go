package services

import (
	"context"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/errs"
	"github.com/epitaphe360/cms-backend/models"
)

type Users = Resource[models.User, *models.User]

func NewUsers(store Store[models.User], audit *AuditRecorder) *Users {
	return NewResource[models.User, *models.User](store, audit, "Utilisateur non trouvé").
		WithHooks(hashPassword).
		WithDeleteGuard(notSelf)
}

// hashPassword replaces the plain password with its hash. Updates that omit
// the password keep the stored hash.
func hashPassword(ctx context.Context, user, before *models.User, actor auth.Actor) error {
	if user.Password == "" {
		if before == nil {
			return errs.NewBadRequestErrorWithField("Données invalides", "password", "password: le mot de passe est requis.")
		}
		user.PasswordHash = before.PasswordHash
		return nil
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.Password = ""
	return nil
}

func notSelf(ctx context.Context, user *models.User, actor auth.Actor) error {
	if user.ID == actor.UserID {
		return errs.NewForbiddenError("Vous ne pouvez pas supprimer votre propre compte")
	}
	return nil
}

package database

import (
	"context"

	"github.com/epitaphe360/cms-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	*Repo[models.User, *models.User]
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{NewRepo[models.User](db)}
}

// FindByEmail looks up the normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.FindBy(ctx, "email", models.NormalizeEmail(email))
}

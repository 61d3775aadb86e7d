package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// User is a dashboard account. Password is only ever read from requests;
// PasswordHash is never serialized.
type User struct {
	Base
	Email        string `json:"email" gorm:"type:varchar(320);not null;uniqueIndex"`
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"column:password;type:text;not null"`
	Name         string `json:"name" gorm:"type:text;not null"`
	Role         Role   `json:"role" gorm:"type:varchar(16);not null;index"`
	Avatar       string `json:"avatar,omitempty" gorm:"type:text"`
}

func (User) EntityType() string { return "user" }

func (User) Listing() Listing {
	return Listing{
		SearchColumns: []string{"email", "name"},
		Filters:       map[string]string{"role": "role"},
	}
}

// NormalizeEmail is the single canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) Normalize() {
	u.Email = NormalizeEmail(u.Email)
	u.Name = strings.TrimSpace(u.Name)
	u.Role = Role(strings.ToUpper(strings.TrimSpace(string(u.Role))))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

func (u *User) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Email, validation.Required.Error("l'email est requis"), is.EmailFormat.Error("email invalide")),
		validation.Field(&u.Name, validation.Required.Error("le nom est requis"), validation.Length(1, 255)),
		validation.Field(&u.Role, validation.In(RoleAdmin, RoleUser).Error("rôle inconnu")),
		validation.Field(&u.Password, validation.Length(8, 128).Error("le mot de passe doit contenir entre 8 et 128 caractères")),
	)
}

package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Daskott/instantdoc/server/auth"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

var allFieldsExceptPassword = []string{"id",
	"name",
	"email",
	"created_at",
	"updated_at",
}

type User struct {
	BaseModel
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required" gorm:"not null;unique"`
	Password string    `json:"-" gorm:"not null"`
	Contacts []Contact `json:"contacts,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// CreateUser stores a new user with a bcrypt hash of 'password'.
// Returns ErrValidation if any field is blank & ErrDuplicateEmail if the email is taken.
func (store *Store) CreateUser(name, email, password string) (*User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrValidation
	}

	_, err := store.FindUserBy("email", email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgErrors.Wrap(err, "CreateUser")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "CreateUser")
	}

	user := &User{Name: name, Email: email, Password: passwordHash}
	err = store.db.Create(user).Error
	if err != nil {
		// A concurrent registration can take the email between the lookup & the insert
		if _, findErr := store.FindUserBy("email", email); findErr == nil {
			return nil, ErrDuplicateEmail
		}
		return nil, pkgErrors.Wrap(err, "CreateUser")
	}

	return user, nil
}

// Authenticate returns the user with 'email' if 'password' matches their hash.
// An unknown email & a wrong password both return ErrInvalidCredentials.
func (store *Store) Authenticate(email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrValidation
	}

	user := User{}
	err := store.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, pkgErrors.Wrap(err, "Authenticate")
	}

	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	user.Password = ""
	return &user, nil
}

func (store *Store) FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := store.db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

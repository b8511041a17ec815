package application

import (
	"fmt"

	"github.com/example/lablink/internal/persistence"
)

// AdminAccount describes the identity seeded into an empty state.
type AdminAccount struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// DefaultAdmin returns the built-in test administrator.
func DefaultAdmin() AdminAccount {
	return AdminAccount{
		ID:       "user-admin",
		Email:    "admin@lablink.test",
		Password: "Admin12345!",
		Name:     "Test Admin",
	}
}

// DefaultState returns a constructor for the initial state holding only the
// seeded administrator. The password is hashed once, up front.
func DefaultState(admin AdminAccount, hasher PasswordHasher) (func() persistence.State, error) {
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultArgon2idParams)
	}
	if admin.ID == "" {
		admin.ID = DefaultAdmin().ID
	}
	email := normalizeEmail(admin.Email)
	if email == "" || admin.Password == "" {
		return nil, fmt.Errorf("admin account requires an email and a password")
	}
	name := admin.Name
	if name == "" {
		name = email
	}

	hash, err := hasher(admin.Password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return func() persistence.State {
		return persistence.State{
			Users: []persistence.User{{
				ID:           admin.ID,
				Email:        email,
				Name:         name,
				PasswordHash: hash,
			}},
			Tokens:       map[string]string{},
			Laboratories: []persistence.Laboratory{},
			Resources:    []persistence.Resource{},
			Reservations: []persistence.Reservation{},
		}
	}, nil
}

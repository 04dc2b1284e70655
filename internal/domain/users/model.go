// Package users provides employee accounts.
package users

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pms/internal/core/apperror"
	"pms/internal/core/entity"
	"pms/internal/core/id"
)

// Role names known to the HTTP layer.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User represents an employee account.
type User struct {
	entity.Base

	// Email is the login identifier, unique
	Email string `db:"email" json:"email"`

	// PasswordHash is the bcrypt hash; never serialized
	PasswordHash string `db:"password_hash" json:"-"`

	// DisplayName is the human-readable name
	DisplayName string `db:"display_name" json:"displayName"`

	// CompanyID is the employing company, optional
	CompanyID *id.ID `db:"company_id" json:"companyId,omitempty"`

	// Roles grants coarse permissions
	Roles []string `db:"roles" json:"roles"`

	// HiredAt drives annual leave grant timing
	HiredAt *time.Time `db:"hired_at" json:"hiredAt,omitempty"`

	// IsActive gates login and leave grants
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewUser creates a new active User with a hashed password.
func NewUser(email, password, displayName string) (*User, error) {
	u := &User{
		Base:        entity.NewBase(),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: displayName,
		Roles:       []string{RoleEmployee},
		IsActive:    true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Validate implements entity.Validatable interface.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return apperror.NewValidation("valid email is required").
			WithDetail("field", "email")
	}
	if u.DisplayName == "" {
		return apperror.NewValidation("display name is required").
			WithDetail("field", "displayName")
	}
	if u.PasswordHash == "" {
		return apperror.NewValidation("password is required").
			WithDetail("field", "password")
	}
	return nil
}

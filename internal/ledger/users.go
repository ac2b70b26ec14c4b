package ledger

import (
	"context"
	"net/mail"
	"strings"

	"github.com/ridepool/ridepool-backend/internal/models"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name            string
	Email           string
	Contact         string
	Password        string
	ConfirmPassword string
}

// RegisterUser creates a new account. Emails are unique case-insensitively;
// they are normalized to lower case before storage so the store's unique
// index enforces the invariant. The credential is stored hashed, never plain.
func (l *Ledger) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	verr := newValidationError()
	if n := len(strings.TrimSpace(in.Name)); n < minNameLen || n > maxNameLen {
		verr.add("name", "must be between 2 and 150 characters")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		verr.add("email", "must be a valid email address")
	}
	if n := len(in.Contact); n < minContactLen || n > maxRideContactLen {
		verr.add("contact", "must be between 10 and 50 characters")
	}
	if len(in.Password) < minPasswordLen {
		verr.add("password", "must be at least 6 characters")
	}
	if in.Password != in.ConfirmPassword {
		verr.add("confirmPassword", "passwords do not match")
	}
	if !verr.ok() {
		return nil, verr
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Contact:  in.Contact,
		Password: in.Password,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := l.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	l.notify("user_registered", func() { l.notifier.UserRegistered(user) })
	return user, nil
}

// Authenticate verifies an email/password pair and returns the matching user.
// Any failure surfaces as ErrInvalidCredentials.
func (l *Ledger) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := l.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := user.CheckPassword(password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

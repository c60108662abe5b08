package core

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

const (
	msgEmailNotExist = "Email does not exist"
	msgWrongPassword = "Wrong password"
)

// LoginAuthenticator resolves login credentials to a stored account.
type LoginAuthenticator struct {
	users  UserRepository
	hasher PasswordHasher
}

func NewLoginAuthenticator(users UserRepository, hasher PasswordHasher) *LoginAuthenticator {
	return &LoginAuthenticator{users: users, hasher: hasher}
}

// Authenticate returns the matching account. An unknown email and a wrong
// password are both reported as a *ValidationError on the email field.
func (a *LoginAuthenticator) Authenticate(ctx context.Context, in LoginInput) (*Account, error) {
	account, err := a.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, newValidationError(fieldEmail, msgEmailNotExist)
	}
	if err != nil {
		return nil, oops.Code("LOGIN_FAILED").With("operation", "find account").Wrap(err)
	}

	ok, err := a.hasher.Verify(in.Password, account.PasswordHash)
	if err != nil {
		return nil, oops.Code("LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", account.ID).
			Wrap(err)
	}
	if !ok {
		return nil, newValidationError(fieldEmail, msgWrongPassword)
	}
	return account, nil
}

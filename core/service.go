package core

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// AuthService composes registration, login, and token resolution over the credential store.
type AuthService struct {
	users         UserRepository
	hasher        PasswordHasher
	tokens        *TokenIssuer
	registrations *RegistrationValidator
	logins        *LoginAuthenticator
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		registrations: NewRegistrationValidator(users),
		logins:        NewLoginAuthenticator(users, hasher),
	}
}

// Register validates the submission, hashes the password and stores the account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if err := s.registrations.Validate(ctx, in); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, in.Email, in.Username, hash)
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		// Lost a race with a concurrent registration after validation passed.
		return 0, newValidationError(fieldEmail, msgEmailExists)
	case errors.Is(err, ErrDuplicateUsername):
		return 0, newValidationError(fieldUsername, msgUsernameExists)
	case err != nil:
		return 0, err
	}
	return id, nil
}

// Login authenticates the credentials and issues a token for the account.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *Account, error) {
	account, err := s.logins.Authenticate(ctx, in)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Sign(account.Identity())
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// ResolveIdentity verifies the token and re-reads the account it names.
// Every failure wraps ErrUnauthorized; the cause is kept for server-side logs only.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, oops.Code("AUTH_TOKEN_MISSING").Wrap(ErrUnauthorized)
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return Identity{}, oops.Code("AUTH_TOKEN_REJECTED").Wrap(errors.Join(ErrUnauthorized, err))
	}
	account, err := s.users.FindByID(ctx, claims.ID)
	if errors.Is(err, ErrNotFound) {
		return Identity{}, oops.Code("AUTH_SUBJECT_GONE").With("user_id", claims.ID).Wrap(ErrUnauthorized)
	}
	if err != nil {
		return Identity{}, oops.Code("AUTH_RESOLVE_FAILED").With("user_id", claims.ID).Wrap(err)
	}
	return account.Identity(), nil
}

// UsernameByEmail backs the public username lookup.
func (s *AuthService) UsernameByEmail(ctx context.Context, email string) (string, error) {
	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return account.Username, nil
}

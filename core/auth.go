package core

import (
	"context"
	"time"
)

// Account is a stored user row. PasswordHash never leaves the service.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated principal attached to a protected request.
type Identity struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Identity projects the account onto the fields carried in tokens.
func (a *Account) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, Username: a.Username}
}

// RegisterInput is the body of POST /register.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IdentityResolver turns a raw session token into an identity.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (Identity, error)
}

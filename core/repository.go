package core

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Unique constraint names created by the users migration.
const (
	usersEmailKey    = "users_email_key"
	usersUsernameKey = "users_username_key"
)

// UserRepository is the credential store.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, email, username, passwordHash string) (int64, error)
}

// PgUserRepository implements UserRepository on PostgreSQL.
type PgUserRepository struct {
	db DBTX
}

func NewPgUserRepository(db DBTX) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `SELECT user_id, email, username, password, created_at FROM users WHERE email = $1`
	var a Account
	err := r.db.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").With("email", email).Wrap(err)
	}
	return &a, nil
}

func (r *PgUserRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	const q = `SELECT user_id, email, username, password, created_at FROM users WHERE user_id = $1`
	var a Account
	err := r.db.QueryRow(ctx, q, id).Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").With("id", id).Wrap(err)
	}
	return &a, nil
}

func (r *PgUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *PgUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PgUserRepository) exists(ctx context.Context, q, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, q, arg).Scan(&found); err != nil {
		return false, oops.Code("USER_LOOKUP_FAILED").With("value", arg).Wrap(err)
	}
	return found, nil
}

// Create inserts a new account. Unique violations surface as ErrDuplicateEmail
// or ErrDuplicateUsername so concurrent registrations cannot both succeed.
func (r *PgUserRepository) Create(ctx context.Context, email, username, passwordHash string) (int64, error) {
	const q = `INSERT INTO users (email, username, password) VALUES ($1, $2, $3) RETURNING user_id`
	var id int64
	err := r.db.QueryRow(ctx, q, email, username, passwordHash).Scan(&id)
	if err == nil {
		return id, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case usersEmailKey:
			return 0, oops.Code("USER_DUPLICATE_EMAIL").With("email", email).Wrap(ErrDuplicateEmail)
		case usersUsernameKey:
			return 0, oops.Code("USER_DUPLICATE_USERNAME").With("username", username).Wrap(ErrDuplicateUsername)
		}
	}
	return 0, oops.Code("USER_CREATE_FAILED").With("username", username).Wrap(err)
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/model"
)

// Constraint names from the users migration; the inserts below map them back
// to the duplicate sentinels so the store stays the authority on uniqueness.
const (
	userNameConstraint = "users_user_name_key"
	mailConstraint     = "users_mail_key"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, name, user_name, mail, password_hash, register_date)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Name, u.UserName, u.Mail, u.PasswordHash, u.RegisterDate)
	if name, ok := uniqueConstraint(err); ok {
		if name == mailConstraint {
			return errs.ErrDuplicateEmail
		}
		return errs.ErrDuplicateUserName
	}
	return err
}

// GetByUserName selects a user by login name.
func (r *UserRepo) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	const q = `
SELECT id, name, user_name, mail, password_hash, register_date
FROM users WHERE user_name=$1`
	row := r.db.Pool.QueryRow(ctx, q, userName)
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Mail, &u.PasswordHash, &u.RegisterDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ExistsByUserName reports whether a row with the given username exists.
func (r *UserRepo) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE user_name=$1)`
	var exists bool
	err := r.db.Pool.QueryRow(ctx, q, userName).Scan(&exists)
	return exists, err
}

// ExistsByMail reports whether a row with the given mail exists.
func (r *UserRepo) ExistsByMail(ctx context.Context, mail string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE mail=$1)`
	var exists bool
	err := r.db.Pool.QueryRow(ctx, q, mail).Scan(&exists)
	return exists, err
}

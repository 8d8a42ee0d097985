// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/mlozanov/storefront/internal/model"
)

// UserRepository provides durable, uniqueness-enforcing account storage.
// The backing store owns the uniqueness guarantee for username and mail;
// existence checks are advisory reads used before the insert.
type UserRepository interface {
	// Create inserts a new user. A username or mail collision is reported
	// as errs.ErrDuplicateUserName or errs.ErrDuplicateEmail.
	Create(ctx context.Context, u *model.User) error
	// GetByUserName loads a user by login name.
	GetByUserName(ctx context.Context, userName string) (*model.User, error)
	// ExistsByUserName reports whether the username is taken.
	ExistsByUserName(ctx context.Context, userName string) (bool, error)
	// ExistsByMail reports whether the mail address is taken.
	ExistsByMail(ctx context.Context, mail string) (bool, error)
}

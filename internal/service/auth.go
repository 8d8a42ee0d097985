// Package service contains application services for authentication and the
// store resources.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/mlozanov/storefront/internal/crypto"
	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/limiter"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/repository"
	"github.com/mlozanov/storefront/internal/token"
)

// AuthService verifies credentials and manages registration.
type AuthService interface {
	// Login authenticates the user and returns a freshly issued token.
	// Unknown accounts and wrong passwords stay distinguishable:
	// errs.ErrUserNotFound vs errs.ErrBadCredentials.
	Login(ctx context.Context, userName, password, ip string) (string, error)
	// SignUp registers a new account and returns a token for it. Duplicate
	// identifiers yield errs.ErrDuplicateUserName or errs.ErrDuplicateEmail,
	// username checked first.
	SignUp(ctx context.Context, name, userName, password, mail string) (string, error)
	// VerifyToken returns the subject of a valid serialized token,
	// or errs.ErrInvalidToken.
	VerifyToken(serialized string) (string, error)
}

// AuthServiceImpl implements AuthService over the user store and token codec.
type AuthServiceImpl struct {
	users    repository.UserRepository
	codec    *token.Codec
	hashCost int
	lim      limiter.Limiter
	log      *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, codec *token.Codec, hashCost int, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, codec: codec, hashCost: hashCost, lim: lim, log: log}
}

// Login authenticates with rate limiting keyed by (userName, ip).
func (s *AuthServiceImpl) Login(ctx context.Context, userName, password, ip string) (string, error) {
	if userName == "" || password == "" {
		return "", errs.ErrBadCredentials
	}
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, userName, ipHash)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", errs.ErrRateLimited
	}

	u, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.recordFailure(ctx, userName, ipHash)
			return "", errs.ErrUserNotFound
		}
		return "", err
	}

	if !pkgcrypto.VerifyPassword(password, u.PasswordHash) {
		if blocked := s.recordFailure(ctx, userName, ipHash); blocked {
			return "", errs.ErrRateLimited
		}
		return "", errs.ErrBadCredentials
	}

	// Reset counters (best-effort).
	_ = s.lim.Success(ctx, userName, ipHash)

	return s.codec.Issue(u.UserName)
}

func (s *AuthServiceImpl) recordFailure(ctx context.Context, userName string, ipHash []byte) bool {
	blocked, _, err := s.lim.Failure(ctx, userName, ipHash)
	if err != nil {
		s.log.Warn("record login failure", zap.Error(err))
		return false
	}
	return blocked
}

// SignUp checks username then mail uniqueness, hashes the password and
// persists the new account. The pre-checks are advisory; insert-time unique
// violations from the store map to the same duplicate sentinels, which keeps
// concurrent registrations of one identifier down to a single success.
func (s *AuthServiceImpl) SignUp(ctx context.Context, name, userName, password, mail string) (string, error) {
	if userName == "" || password == "" || mail == "" {
		return "", fmt.Errorf("%w: empty username/password/mail", errs.ErrValidation)
	}

	taken, err := s.users.ExistsByUserName(ctx, userName)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errs.ErrDuplicateUserName
	}
	taken, err = s.users.ExistsByMail(ctx, mail)
	if err != nil {
		return "", err
	}
	if taken {
		return "", errs.ErrDuplicateEmail
	}

	hash, err := pkgcrypto.HashPassword(password, s.hashCost)
	if err != nil {
		return "", err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	u := &model.User{
		ID:           uid,
		Name:         name,
		UserName:     userName,
		Mail:         mail,
		PasswordHash: hash,
		RegisterDate: time.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	s.log.Info("user registered", zap.String("user_name", userName))

	return s.codec.Issue(userName)
}

// VerifyToken is a thin wrapper over the codec with the service taxonomy.
func (s *AuthServiceImpl) VerifyToken(serialized string) (string, error) {
	sub, ok := s.codec.SubjectOf(serialized)
	if !ok {
		return "", errs.ErrInvalidToken
	}
	return sub, nil
}

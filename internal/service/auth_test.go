package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap/zaptest"

	pkgcrypto "github.com/mlozanov/storefront/internal/crypto"
	"github.com/mlozanov/storefront/internal/errs"
	"github.com/mlozanov/storefront/internal/limiter"
	"github.com/mlozanov/storefront/internal/model"
	"github.com/mlozanov/storefront/internal/repository"
	"github.com/mlozanov/storefront/internal/token"
)

type fakeUsers struct {
	byName map[string]*model.User
	byMail map[string]*model.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*model.User{}, byMail: map[string]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.byName[u.UserName]; exists {
		return errs.ErrDuplicateUserName
	}
	if _, exists := f.byMail[u.Mail]; exists {
		return errs.ErrDuplicateEmail
	}
	cpy := *u
	f.byName[u.UserName] = &cpy
	f.byMail[u.Mail] = &cpy
	return nil
}

func (f *fakeUsers) GetByUserName(_ context.Context, userName string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[userName]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) ExistsByUserName(_ context.Context, userName string) (bool, error) {
	_, ok := f.byName[userName]
	return ok, nil
}

func (f *fakeUsers) ExistsByMail(_ context.Context, mail string) (bool, error) {
	_, ok := f.byMail[mail]
	return ok, nil
}

type fakeLimiter struct {
	allowOK     bool
	failBlocked bool

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, nil
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return nil
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, nil
}

func newTestAuth(t *testing.T, users repository.UserRepository, lim limiter.Limiter) (*AuthServiceImpl, *token.Codec) {
	t.Helper()
	log := zaptest.NewLogger(t)
	codec := token.NewCodec([]byte("k"), time.Minute, log)
	// bcrypt MinCost keeps tests fast
	return NewAuthService(users, codec, 4, lim, log), codec
}

func TestAuth_SignUp_IssuesVerifiableToken(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s, codec := newTestAuth(t, users, &fakeLimiter{allowOK: true})

	tok, err := s.SignUp(context.Background(), "Bob", "bob", "pw", "bob@x.com")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	sub, ok := codec.SubjectOf(tok)
	if !ok || sub != "bob" {
		t.Fatalf("token subject: got (%q,%v), want (bob,true)", sub, ok)
	}

	u := users.byName["bob"]
	if u == nil {
		t.Fatalf("user not persisted")
	}
	if u.PasswordHash == "pw" || u.PasswordHash == "" {
		t.Fatalf("password stored badly: %q", u.PasswordHash)
	}
	if !pkgcrypto.VerifyPassword("pw", u.PasswordHash) {
		t.Fatalf("stored hash does not verify")
	}
	if u.RegisterDate.IsZero() {
		t.Fatalf("register date not set")
	}
	if u.ID == uuid.Nil {
		t.Fatalf("id not set")
	}
}

func TestAuth_SignUp_UniquenessOrdering(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s, _ := newTestAuth(t, users, &fakeLimiter{allowOK: true})
	ctx := context.Background()

	if _, err := s.SignUp(ctx, "A", "bob", "pw", "bob@x.com"); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}

	// Same username, fresh mail.
	if _, err := s.SignUp(ctx, "B", "bob", "pw2", "other@x.com"); err != errs.ErrDuplicateUserName {
		t.Fatalf("want ErrDuplicateUserName, got %v", err)
	}
	// Fresh username, same mail.
	if _, err := s.SignUp(ctx, "C", "carol", "pw3", "bob@x.com"); err != errs.ErrDuplicateEmail {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
	// Both collide: username takes priority.
	if _, err := s.SignUp(ctx, "D", "bob", "pw4", "bob@x.com"); err != errs.ErrDuplicateUserName {
		t.Fatalf("want ErrDuplicateUserName on double collision, got %v", err)
	}

	if _, err := s.SignUp(ctx, "E", "", "pw", "e@x.com"); err == nil {
		t.Fatalf("want validation error on empty username")
	}
}

func TestAuth_Login_Taxonomy(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	lim := &fakeLimiter{allowOK: true}
	s, codec := newTestAuth(t, users, lim)
	ctx := context.Background()

	if _, err := s.SignUp(ctx, "Bob", "bob", "pw", "bob@x.com"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	tok, err := s.Login(ctx, "bob", "pw", "1.2.3.4")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sub, ok := codec.SubjectOf(tok); !ok || sub != "bob" {
		t.Fatalf("login token subject: got (%q,%v)", sub, ok)
	}
	if lim.successCalls == 0 {
		t.Fatalf("limiter not reset on success")
	}

	if _, err := s.Login(ctx, "bob", "wrong", "1.2.3.4"); err != errs.ErrBadCredentials {
		t.Fatalf("want ErrBadCredentials, got %v", err)
	}
	if _, err := s.Login(ctx, "nouser", "x", "1.2.3.4"); err != errs.ErrUserNotFound {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	if lim.failureCalls != 2 {
		t.Fatalf("failures recorded: got %d, want 2", lim.failureCalls)
	}
}

func TestAuth_Login_RateLimited(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s, _ := newTestAuth(t, users, &fakeLimiter{allowOK: false})

	if _, err := s.Login(context.Background(), "bob", "pw", "1.2.3.4"); err != errs.ErrRateLimited {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}

	// Threshold reached on this failure: blocked wins over bad credentials.
	users2 := newFakeUsers()
	s2, _ := newTestAuth(t, users2, &fakeLimiter{allowOK: true, failBlocked: true})
	if _, err := s2.SignUp(context.Background(), "Bob", "bob", "pw", "bob@x.com"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := s2.Login(context.Background(), "bob", "wrong", "1.2.3.4"); err != errs.ErrRateLimited {
		t.Fatalf("want ErrRateLimited at threshold, got %v", err)
	}
}

func TestAuth_VerifyToken(t *testing.T) {
	t.Parallel()
	users := newFakeUsers()
	s, codec := newTestAuth(t, users, &fakeLimiter{allowOK: true})

	tok, err := codec.Issue("bob")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	sub, err := s.VerifyToken(tok)
	if err != nil || sub != "bob" {
		t.Fatalf("VerifyToken: got (%q,%v)", sub, err)
	}
	if _, err := s.VerifyToken("garbage"); err != errs.ErrInvalidToken {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

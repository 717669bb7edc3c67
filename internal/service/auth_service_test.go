package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

type fakeUserRepo struct {
	nextID  int64
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[int64]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.byID[user.ID] = &stored
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func newTestAuthService(users repository.UserRepository) *AuthService {
	cfg := config.AuthConfig{
		JWTSecret:       "test-secret",
		SessionTTLHours: 1,
		BcryptCost:      bcrypt.MinCost,
	}
	return NewAuthService(cfg, AuthDependencies{UserRepo: users})
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	registered, token, _, err := svc.Register(ctx, "a@x.com", "secret-password")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %s", registered.Email)
	}
	if token == "" {
		t.Error("expected a session token on register")
	}

	logged, _, _, err := svc.Login(ctx, "a@x.com", "secret-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != registered.ID {
		t.Errorf("login returned user %d, registered %d", logged.ID, registered.ID)
	}
}

func TestRegister_NormalizesEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	registered, _, _, err := svc.Register(ctx, "  A@X.com ", "secret-password")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.Email != "a@x.com" {
		t.Errorf("expected normalized email, got %q", registered.Email)
	}

	if _, _, _, err := svc.Login(ctx, "a@x.com", "secret-password"); err != nil {
		t.Errorf("login with normalized email failed: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "not-an-email", "secret-password")
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED for bad email, got %s", code)
	}

	_, _, _, err = svc.Register(ctx, "a@x.com", "short")
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED for short password, got %s", code)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "a@x.com", "secret-password"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, _, _, err := svc.Register(ctx, "a@x.com", "other-password")
	if code := errCode(t, err); code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %s", code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	ctx := context.Background()

	if _, _, _, err := svc.Register(ctx, "a@x.com", "secret-password"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Unknown email and wrong password must be indistinguishable.
	_, _, _, err := svc.Login(ctx, "nobody@x.com", "secret-password")
	if code := errCode(t, err); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS for unknown email, got %s", code)
	}

	_, _, _, err = svc.Login(ctx, "a@x.com", "wrong-password")
	if code := errCode(t, err); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS for wrong password, got %s", code)
	}
}

func TestLogin_CorruptStoredHash(t *testing.T) {
	users := newFakeUserRepo()
	svc := newTestAuthService(users)
	ctx := context.Background()

	corrupt := &domain.User{Email: "a@x.com", PasswordHash: "not-a-bcrypt-hash"}
	if err := users.Create(ctx, corrupt); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, _, _, err := svc.Login(ctx, "a@x.com", "secret-password")
	if code := errCode(t, err); code != "DATA_CORRUPTION" {
		t.Errorf("expected DATA_CORRUPTION, got %s", code)
	}
}

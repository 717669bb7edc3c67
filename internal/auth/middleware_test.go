package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	apphttp "github.com/spec-kit/ticketdesk/internal/api/http"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/observability"
)

type stubUserRepo struct {
	users map[int64]*domain.User
}

func (r *stubUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func newProtectedApp(t *testing.T, tokens *auth.TokenManager, users map[int64]*domain.User) *fiber.App {
	t.Helper()

	app := fiber.New()
	crumbs := observability.NewBreadcrumbs(zap.NewNop())
	apphttp.RegisterMiddlewares(app, zap.NewNop(), crumbs, 0)

	mw := auth.NewMiddleware(tokens, &stubUserRepo{users: users}, crumbs)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		user, ok := auth.CurrentUser(c)
		if !ok {
			t.Error("handler reached without a resolved user")
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"id": user.ID, "email": user.Email})
	})
	return app
}

func requestWithSession(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	return req
}

func TestMiddleware_ValidSession(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := map[int64]*domain.User{7: {ID: 7, Email: "a@x.com"}}
	app := newProtectedApp(t, tokens, users)

	token, _, err := tokens.Issue(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp, err := app.Test(requestWithSession(token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestMiddleware_MissingCookie(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	app := newProtectedApp(t, tokens, nil)

	resp, err := app.Test(requestWithSession(""))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a session cookie, got %d", resp.StatusCode)
	}
}

func TestMiddleware_MalformedToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	app := newProtectedApp(t, tokens, nil)

	resp, err := app.Test(requestWithSession("not-a-token"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed token, got %d", resp.StatusCode)
	}
}

func TestMiddleware_TamperedToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	users := map[int64]*domain.User{7: {ID: 7, Email: "a@x.com"}}
	app := newProtectedApp(t, tokens, users)

	token, _, err := tokens.Issue(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	resp, err := app.Test(requestWithSession(tampered))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered signature, got %d", resp.StatusCode)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	shortLived := auth.NewTokenManager("test-secret", time.Nanosecond)
	users := map[int64]*domain.User{7: {ID: 7, Email: "a@x.com"}}
	app := newProtectedApp(t, shortLived, users)

	token, _, err := shortLived.Issue(7)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	time.Sleep(time.Millisecond)

	resp, err := app.Test(requestWithSession(token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", resp.StatusCode)
	}
}

func TestMiddleware_DeletedUser(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	app := newProtectedApp(t, tokens, map[int64]*domain.User{})

	token, _, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resp, err := app.Test(requestWithSession(token))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 when the user row is gone, got %d", resp.StatusCode)
	}
}

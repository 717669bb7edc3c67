package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util"
)

const currentUserKey = "auth_current_user"

// Middleware resolves the current user from the session cookie. Every request
// re-verifies the token and re-queries the user row; there is no caching, so a
// user deleted after token issuance simply stops authenticating.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	crumbs *observability.Breadcrumbs
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, crumbs *observability.Breadcrumbs) *Middleware {
	return &Middleware{tokens: tokens, users: users, crumbs: crumbs}
}

// Handle enforces authentication for protected routes. Missing cookie,
// expired/malformed/invalid token, and missing user row all collapse to the
// same unauthenticated failure.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := Read(c)
	if token == "" {
		return apperrors.NewUnauthenticated("missing session")
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		m.crumbs.Record("auth", "warning", "session token rejected", map[string]any{
			"reason": err.Error(),
			"path":   c.Path(),
		})
		return apperrors.NewUnauthenticated("invalid session")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("invalid session")
		}
		return apperrors.MapError(err)
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// CurrentUser retrieves the authenticated user placed by Handle.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(currentUserKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

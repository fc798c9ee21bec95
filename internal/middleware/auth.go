package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/denhaven/breeder-backend/internal/repository"
	"github.com/denhaven/breeder-backend/internal/service"
)

const (
	ContextKeyUID      = "uid"
	ContextKeyProvider = "providerCtx"
)

type AuthMiddleware struct {
	authClient *auth.Client
	providers  repository.ProviderRepository
}

func NewAuthMiddleware(ctx context.Context, projectID string, providers repository.ProviderRepository) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id is not configured")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client, providers: providers}, nil
}

// RequireAuth verifies the bearer token and stores the verified uid.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		c.Set(ContextKeyUID, token.UID)
		return next(c)
	}
}

// RequireProvider additionally resolves the uid to a provider row and stores
// an explicit service.ProviderContext; everything downstream takes that value
// as a parameter instead of reaching back into request state.
func (m *AuthMiddleware) RequireProvider(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		uid, _ := c.Get(ContextKeyUID).(string)
		provider, err := m.providers.FindByUID(c.Request().Context(), uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "provider_profile_required"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		}
		c.Set(ContextKeyProvider, service.ProviderContext{
			ProviderID: provider.ID,
			UID:        provider.UID,
			TenantID:   provider.TenantID,
		})
		return next(c)
	})
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}

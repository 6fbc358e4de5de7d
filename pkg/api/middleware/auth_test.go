package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleancity-app/waste-report-api/pkg/api/auth"
	"github.com/cleancity-app/waste-report-api/pkg/api/middleware"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
)

// stubUsers implements repositories.UserRepository; only GetByID matters here.
type stubUsers struct {
	getByID func(ctx context.Context, id string) (*models.User, error)
}

func (s *stubUsers) Save(*models.User) error { return nil }
func (s *stubUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByID(ctx, id)
}
func (s *stubUsers) GetByEmail(context.Context, string) (*models.User, error)    { return nil, nil }
func (s *stubUsers) GetByUsername(context.Context, string) (*models.User, error) { return nil, nil }
func (s *stubUsers) List(context.Context, int, int) ([]models.User, error)       { return nil, nil }
func (s *stubUsers) Update(context.Context, *models.User) error                  { return nil }
func (s *stubUsers) Delete(context.Context, string) error                        { return nil }

func authRouter(tokens *auth.TokenManager, users *stubUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", middleware.Authenticate(tokens, users), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CurrentUser(c).Id)
	})
	r.GET("/admin", middleware.Authenticate(tokens, users), middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func activeUser(id string, admin bool) *stubUsers {
	return &stubUsers{
		getByID: func(ctx context.Context, got string) (*models.User, error) {
			return &models.User{Id: got, IsActive: true, IsAdmin: admin}, nil
		},
	}
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	r := authRouter(tokens, activeUser("u1", false))
	token, err := tokens.Issue("u1", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthenticate_CookieFallback(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	r := authRouter(tokens, activeUser("u1", false))
	token, err := tokens.Issue("u1", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "Bearer " + token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	r := authRouter(tokens, activeUser("u1", false))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_InactiveAccount(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	users := &stubUsers{
		getByID: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{Id: id, IsActive: false}, nil
		},
	}
	r := authRouter(tokens, users)
	token, err := tokens.Issue("u1", false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	token, err := tokens.Issue("u1", false)
	require.NoError(t, err)

	r := authRouter(tokens, activeUser("u1", false))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = authRouter(tokens, activeUser("u1", true))
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

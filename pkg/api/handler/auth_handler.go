package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cleancity-app/waste-report-api/pkg/api/middleware"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
)

// AuthController binds the authentication endpoints to the AuthService.
type AuthController struct {
	Service *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{Service: s}
}

// Register handles POST /auth/register
func (c *AuthController) Register(ctx *gin.Context, body *models.RegisterInput) (*models.User, error) {
	return c.Service.Register(ctx.Request.Context(), *body)
}

// Login handles POST /auth/login. The token is returned in the body and also
// set as an http-only cookie for browser clients.
func (c *AuthController) Login(ctx *gin.Context, body *models.LoginInput) (*models.TokenResponse, error) {
	token, err := c.Service.Login(ctx.Request.Context(), *body)
	if err != nil {
		return nil, err
	}
	ctx.SetCookie("access_token", "Bearer "+token.AccessToken, int(token.ExpiresIn), "/", "", false, true)
	return token, nil
}

// Logout handles POST /auth/logout
func (c *AuthController) Logout(ctx *gin.Context) (*models.StatusResponse, error) {
	ctx.SetCookie("access_token", "", -1, "/", "", false, true)
	return &models.StatusResponse{Status: "success"}, nil
}

// Me handles GET /auth/me
func (c *AuthController) Me(ctx *gin.Context) (*models.User, error) {
	return middleware.CurrentUser(ctx), nil
}

// UpdateProfile handles PUT /auth/me
func (c *AuthController) UpdateProfile(ctx *gin.Context, body *models.UpdateProfileInput) (*models.User, error) {
	return c.Service.UpdateProfile(ctx.Request.Context(), middleware.CurrentUser(ctx), *body)
}

// ChangePassword handles POST /auth/change-password
func (c *AuthController) ChangePassword(ctx *gin.Context, body *models.ChangePasswordInput) (*models.StatusResponse, error) {
	if err := c.Service.ChangePassword(ctx.Request.Context(), middleware.CurrentUser(ctx), *body); err != nil {
		return nil, err
	}
	return &models.StatusResponse{Status: "success", Message: "password changed"}, nil
}

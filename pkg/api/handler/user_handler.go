package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/middleware"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
)

// UsersController exposes account management. Listing and deleting are admin
// only; a user may read and update their own account.
type UsersController struct {
	Service *services.AuthService
	Users   repositories.UserRepository
}

func NewUsersController(s *services.AuthService, users repositories.UserRepository) *UsersController {
	return &UsersController{Service: s, Users: users}
}

// List handles GET /users
func (c *UsersController) List(ctx *gin.Context, p *models.ListUsersParams) ([]models.User, error) {
	if !middleware.CurrentUser(ctx).IsAdmin {
		return nil, problem.NewForbidden("users", "admin access required")
	}
	page, perPage := util.ClampPaging(p.Page, p.PerPage)
	return c.Users.List(ctx.Request.Context(), (page-1)*perPage, perPage)
}

// Retrieve handles GET /users/:id
func (c *UsersController) Retrieve(ctx *gin.Context, params *models.UserParams) (*models.User, error) {
	current := middleware.CurrentUser(ctx)
	if params.Id != current.Id && !current.IsAdmin {
		return nil, problem.NewForbidden(params.Id, "not enough permissions")
	}
	return c.Service.GetUser(ctx.Request.Context(), params.Id)
}

// Update handles PUT /users/:id
func (c *UsersController) Update(ctx *gin.Context, params *models.UserParams) (*models.User, error) {
	current := middleware.CurrentUser(ctx)
	if params.Id != current.Id && !current.IsAdmin {
		return nil, problem.NewForbidden(params.Id, "not enough permissions")
	}

	var body models.UpdateProfileInput
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, problem.NewBadRequest("body", err.Error())
	}

	user, err := c.Service.GetUser(ctx.Request.Context(), params.Id)
	if err != nil {
		return nil, err
	}
	return c.Service.UpdateProfile(ctx.Request.Context(), user, body)
}

// Delete handles DELETE /users/:id
func (c *UsersController) Delete(ctx *gin.Context, params *models.UserParams) (*models.StatusResponse, error) {
	if !middleware.CurrentUser(ctx).IsAdmin {
		return nil, problem.NewForbidden(params.Id, "admin access required")
	}
	if _, err := c.Service.GetUser(ctx.Request.Context(), params.Id); err != nil {
		return nil, err
	}
	if err := c.Users.Delete(ctx.Request.Context(), params.Id); err != nil {
		return nil, problem.NewInternalServerError("could not delete user: " + err.Error())
	}
	return &models.StatusResponse{Status: "success", Message: "user deleted"}, nil
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
)

// AdminController binds the moderation endpoints to the AdminService.
type AdminController struct {
	Service *services.AdminService
}

func NewAdminController(s *services.AdminService) *AdminController {
	return &AdminController{Service: s}
}

// ListAll handles GET /admin/waste-reports
func (c *AdminController) ListAll(ctx *gin.Context, p *models.ListReportsParams) (*models.ReportList, error) {
	list, err := c.Service.ListAll(ctx.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, list.Pagination)
	return list, nil
}

// Retrieve handles GET /admin/waste-reports/:id
func (c *AdminController) Retrieve(ctx *gin.Context, params *models.ReportParams) (*models.AdminReportDetail, error) {
	return c.Service.GetDetail(ctx.Request.Context(), params.Id)
}

// UpdateStatus handles PUT /admin/waste-reports/:id/status
func (c *AdminController) UpdateStatus(ctx *gin.Context, body *models.StatusUpdateInput) (*models.AdminReportDetail, error) {
	return c.Service.UpdateStatus(ctx.Request.Context(), body)
}

// Statistics handles GET /admin/waste-reports/statistics
func (c *AdminController) Statistics(ctx *gin.Context) (*models.Statistics, error) {
	return c.Service.Statistics(ctx.Request.Context())
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/middleware"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/services"
	"github.com/cleancity-app/waste-report-api/pkg/api/uploads"
)

// ReportsController binds the citizen report endpoints to the ReportService.
// Create and Update are plain gin handlers because they take multipart bodies;
// the JSON endpoints go through tonic.
type ReportsController struct {
	Service *services.ReportService
}

func NewReportsController(s *services.ReportService) *ReportsController {
	return &ReportsController{Service: s}
}

// List handles GET /waste-reports
func (c *ReportsController) List(ctx *gin.Context, p *models.ListReportsParams) (*models.ReportList, error) {
	list, err := c.Service.List(ctx.Request.Context(), middleware.CurrentUser(ctx), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, list.Pagination)
	return list, nil
}

// Retrieve handles GET /waste-reports/:id
func (c *ReportsController) Retrieve(ctx *gin.Context, params *models.ReportParams) (*models.ReportDetail, error) {
	return c.Service.Get(ctx.Request.Context(), middleware.CurrentUser(ctx), params.Id)
}

// Delete handles DELETE /waste-reports/:id
func (c *ReportsController) Delete(ctx *gin.Context, params *models.ReportParams) (*models.StatusResponse, error) {
	if err := c.Service.Delete(ctx.Request.Context(), middleware.CurrentUser(ctx), params.Id); err != nil {
		return nil, err
	}
	return &models.StatusResponse{Status: "success", Message: "waste report deleted"}, nil
}

// WasteTypes handles GET /waste-reports/types (public)
func (c *ReportsController) WasteTypes(ctx *gin.Context) (*models.WasteTypesResponse, error) {
	return &models.WasteTypesResponse{WasteTypes: c.Service.WasteTypes(ctx.Request.Context())}, nil
}

// Create handles POST /waste-reports (multipart form with optional photos)
func (c *ReportsController) Create(ctx *gin.Context) {
	var in models.CreateReportInput
	if err := ctx.ShouldBind(&in); err != nil {
		abortProblem(ctx, problem.NewBadRequest("body", err.Error()))
		return
	}

	detail, err := c.Service.Create(ctx.Request.Context(), middleware.CurrentUser(ctx), in, photoCandidates(ctx))
	if err != nil {
		abortProblem(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, detail)
}

// Update handles PUT /waste-reports/:id (multipart form with optional photos)
func (c *ReportsController) Update(ctx *gin.Context) {
	var in models.UpdateReportInput
	if err := ctx.ShouldBind(&in); err != nil {
		abortProblem(ctx, problem.NewBadRequest("body", err.Error()))
		return
	}

	detail, err := c.Service.Update(ctx.Request.Context(), middleware.CurrentUser(ctx), ctx.Param("id"), in, photoCandidates(ctx))
	if err != nil {
		abortProblem(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// photoCandidates collects the uploaded "photos" form files. Parts without a
// filename (empty file inputs submitted by browsers) are skipped.
func photoCandidates(ctx *gin.Context) []uploads.Candidate {
	form, err := ctx.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	var candidates []uploads.Candidate
	for _, fh := range form.File["photos"] {
		if fh.Filename == "" && fh.Size == 0 {
			continue
		}
		candidates = append(candidates, uploads.FromFileHeader(fh))
	}
	return candidates
}

func abortProblem(ctx *gin.Context, err error) {
	var apiErr problem.APIError
	if !errors.As(err, &apiErr) {
		apiErr = problem.NewInternalServerError(err.Error())
	}
	ctx.Header("Content-Type", "application/problem+json")
	ctx.AbortWithStatusJSON(apiErr.Status, apiErr)
}

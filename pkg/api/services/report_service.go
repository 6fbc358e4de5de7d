package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
	"go.uber.org/zap"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
	"github.com/cleancity-app/waste-report-api/pkg/api/uploads"
)

// MaxReportsPerDay limits how many reports one user may file per UTC day.
const MaxReportsPerDay = 10

// ReportService implements the citizen-facing report operations.
type ReportService struct {
	reports  repositories.ReportRepository
	intake   *uploads.Intake
	failOpen bool
	log      *zap.Logger
}

// NewReportService wires the report repository and the attachment intake.
// failOpen selects the upload error policy: when true, a failed photo batch
// is reported as a warning and the report write still succeeds.
func NewReportService(reports repositories.ReportRepository, intake *uploads.Intake, failOpen bool, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{reports: reports, intake: intake, failOpen: failOpen, log: log}
}

func (s *ReportService) Create(ctx context.Context, user *models.User, in models.CreateReportInput, photos []uploads.Candidate) (*models.ReportDetail, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := s.reports.CountCreatedSince(ctx, user.Id, startOfDay)
	if err != nil {
		return nil, problem.NewInternalServerError("could not check report quota: " + err.Error())
	}
	if count >= MaxReportsPerDay {
		return nil, problem.NewTooManyRequests(
			fmt.Sprintf("daily limit of %d waste reports exceeded, try again tomorrow", MaxReportsPerDay))
	}

	if invalids := validateReportEnums(in.WasteType, in.QuantityEstimate, in.UrgencyLevel); len(invalids) > 0 {
		return nil, problem.NewBadRequest("body", "invalid report fields", invalids...)
	}

	report := &models.WasteReport{
		Id:               uuid.New().String(),
		Reference:        shortid.MustGenerate(),
		StreetAddress:    in.StreetAddress,
		City:             in.City,
		PostalCode:       in.PostalCode,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		WasteType:        in.WasteType,
		QuantityEstimate: in.QuantityEstimate,
		UrgencyLevel:     in.UrgencyLevel,
		Description:      in.Description,
		ReporterName:     in.ReporterName,
		ReporterPhone:    in.ReporterPhone,
		Status:           models.StatusPending,
		UserID:           user.Id,
	}
	if err := s.reports.Save(report); err != nil {
		return nil, problem.NewInternalServerError("could not save report: " + err.Error())
	}

	// Row first, attachments second: the intake needs a committed report id.
	warnings, err := s.storePhotoBatch(ctx, report, photos)
	if err != nil {
		return nil, err
	}

	stored, err := s.reports.GetByID(ctx, report.Id)
	if err != nil || stored == nil {
		return nil, problem.NewInternalServerError("could not reload report after create")
	}
	return util.ToReportDetail(stored, warnings), nil
}

func (s *ReportService) Get(ctx context.Context, user *models.User, id string) (*models.ReportDetail, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, problem.NewNotFound(id, "waste report not found")
	}
	if report.UserID != user.Id && !user.IsAdmin {
		return nil, problem.NewForbidden(id, "you can only access your own waste reports")
	}
	return util.ToReportDetail(report, nil), nil
}

func (s *ReportService) List(ctx context.Context, user *models.User, p *models.ListReportsParams) (*models.ReportList, error) {
	filter, err := buildFilter(p)
	if err != nil {
		return nil, err
	}
	filter.UserID = user.Id

	reports, pagination, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, problem.NewInternalServerError("could not list reports: " + err.Error())
	}

	items := make([]models.ReportSummary, len(reports))
	for i := range reports {
		items[i] = util.ToReportSummary(&reports[i])
	}
	return &models.ReportList{Items: items, Pagination: pagination}, nil
}

func (s *ReportService) Update(ctx context.Context, user *models.User, id string, in models.UpdateReportInput, photos []uploads.Candidate) (*models.ReportDetail, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, problem.NewNotFound(id, "waste report not found")
	}
	if !user.IsAdmin {
		if report.UserID != user.Id {
			return nil, problem.NewForbidden(id, "you can only edit your own waste reports")
		}
		if report.Status != models.StatusPending {
			return nil, problem.NewForbidden(id, "only pending reports can be edited")
		}
	}

	applyUpdate(report, in)
	if invalids := validateReportEnums(report.WasteType, report.QuantityEstimate, report.UrgencyLevel); len(invalids) > 0 {
		return nil, problem.NewBadRequest("body", "invalid report fields", invalids...)
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, problem.NewInternalServerError("could not update report: " + err.Error())
	}

	warnings, err := s.storePhotoBatch(ctx, report, photos)
	if err != nil {
		return nil, err
	}

	stored, err := s.reports.GetByID(ctx, id)
	if err != nil || stored == nil {
		return nil, problem.NewInternalServerError("could not reload report after update")
	}
	return util.ToReportDetail(stored, warnings), nil
}

func (s *ReportService) Delete(ctx context.Context, user *models.User, id string) error {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if report == nil {
		return problem.NewNotFound(id, "waste report not found")
	}
	if !user.IsAdmin {
		if report.UserID != user.Id {
			return problem.NewForbidden(id, "you can only delete your own waste reports")
		}
		if report.Status != models.StatusPending {
			return problem.NewForbidden(id, "only pending reports can be deleted")
		}
	}

	// Attachment removal is filesystem-only, not tied to the row delete;
	// it runs first and never blocks the delete.
	s.intake.DeleteReportAttachments(id)

	if err := s.reports.Delete(ctx, id); err != nil {
		return problem.NewInternalServerError("could not delete report: " + err.Error())
	}
	return nil
}

func (s *ReportService) WasteTypes(ctx context.Context) []models.WasteTypeInfo {
	return models.WasteTypeCatalog()
}

// storePhotoBatch runs the intake for a batch and records the photo rows.
// Under the fail-open policy a failed batch degrades to warnings; otherwise
// the mapped upload error propagates and the already committed report row
// is left without photos.
func (s *ReportService) storePhotoBatch(ctx context.Context, report *models.WasteReport, photos []uploads.Candidate) ([]string, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	refs, err := s.intake.ValidateAndStore(report.Id, photos)
	if err != nil {
		s.log.Warn("photo batch rejected",
			zap.String("report", report.Id),
			zap.Error(err))
		if s.failOpen {
			return []string{err.Error()}, nil
		}
		return nil, UploadProblem(err, report.Id)
	}

	rows := make([]models.WastePhoto, len(refs))
	now := time.Now()
	for i, ref := range refs {
		rows[i] = models.WastePhoto{
			Id:            uuid.New().String(),
			WasteReportID: report.Id,
			Path:          ref,
			UploadedAt:    now,
		}
	}
	if err := s.reports.AddPhotos(ctx, rows); err != nil {
		// Stored files without rows to record them are orphans; unwind.
		for _, ref := range refs {
			s.intake.DeleteAttachment(ref)
		}
		return nil, problem.NewInternalServerError("could not record photos: " + err.Error())
	}
	return nil, nil
}

// UploadProblem maps intake error kinds onto problem responses. The report id
// is included so a client can retry the upload against the stored report.
func UploadProblem(err error, reportID string) problem.APIError {
	detail := fmt.Sprintf("%s (report %s was saved without photos)", err.Error(), reportID)
	switch {
	case errors.Is(err, uploads.ErrSizeExceeded):
		return problem.NewContentTooLarge("photos", detail)
	case errors.Is(err, uploads.ErrTooManyFiles),
		errors.Is(err, uploads.ErrUnsupportedExtension),
		errors.Is(err, uploads.ErrUnsupportedMediaType),
		errors.Is(err, uploads.ErrEmptyFile),
		errors.Is(err, uploads.ErrInvalidImageContent):
		return problem.NewBadRequest("photos", detail)
	default:
		return problem.NewInternalServerError(detail)
	}
}

func validateReportEnums(t models.WasteType, q models.QuantityEstimate, u models.UrgencyLevel) []problem.InvalidParam {
	var invalids []problem.InvalidParam
	if !t.Valid() {
		invalids = append(invalids, problem.InvalidParam{Name: "wasteType", Reason: fmt.Sprintf("unknown waste type %q", t)})
	}
	if !q.Valid() {
		invalids = append(invalids, problem.InvalidParam{Name: "quantityEstimate", Reason: fmt.Sprintf("unknown quantity estimate %q", q)})
	}
	if !u.Valid() {
		invalids = append(invalids, problem.InvalidParam{Name: "urgencyLevel", Reason: fmt.Sprintf("unknown urgency level %q", u)})
	}
	return invalids
}

func applyUpdate(report *models.WasteReport, in models.UpdateReportInput) {
	if in.StreetAddress != nil {
		report.StreetAddress = *in.StreetAddress
	}
	if in.City != nil {
		report.City = *in.City
	}
	if in.PostalCode != nil {
		report.PostalCode = *in.PostalCode
	}
	if in.Latitude != nil {
		report.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		report.Longitude = in.Longitude
	}
	if in.WasteType != nil {
		report.WasteType = *in.WasteType
	}
	if in.QuantityEstimate != nil {
		report.QuantityEstimate = *in.QuantityEstimate
	}
	if in.UrgencyLevel != nil {
		report.UrgencyLevel = *in.UrgencyLevel
	}
	if in.Description != nil {
		report.Description = *in.Description
	}
	if in.ReporterName != nil {
		report.ReporterName = *in.ReporterName
	}
	if in.ReporterPhone != nil {
		report.ReporterPhone = *in.ReporterPhone
	}
}

// buildFilter parses the raw query params into a typed filter, rejecting
// unknown enum values and malformed dates.
func buildFilter(p *models.ListReportsParams) (repositories.ReportFilter, error) {
	filter := repositories.ReportFilter{
		Page:    p.Page,
		PerPage: p.PerPage,
		Sort:    p.Sort,
		Order:   p.Order,
		City:    p.City,
	}
	if p.Status != nil {
		status := models.ReportStatus(*p.Status)
		if !status.Valid() {
			return filter, problem.NewBadRequest("status", fmt.Sprintf("unknown status %q", *p.Status))
		}
		filter.Status = &status
	}
	if p.WasteType != nil {
		wt := models.WasteType(*p.WasteType)
		if !wt.Valid() {
			return filter, problem.NewBadRequest("wasteType", fmt.Sprintf("unknown waste type %q", *p.WasteType))
		}
		filter.WasteType = &wt
	}
	if p.Urgency != nil {
		u := models.UrgencyLevel(*p.Urgency)
		if !u.Valid() {
			return filter, problem.NewBadRequest("urgency", fmt.Sprintf("unknown urgency level %q", *p.Urgency))
		}
		filter.Urgency = &u
	}
	if p.From != nil {
		from, err := time.Parse("2006-01-02", *p.From)
		if err != nil {
			return filter, problem.NewBadRequest("from", "expected YYYY-MM-DD")
		}
		filter.From = &from
	}
	if p.To != nil {
		to, err := time.Parse("2006-01-02", *p.To)
		if err != nil {
			return filter, problem.NewBadRequest("to", "expected YYYY-MM-DD")
		}
		filter.To = &to
	}
	return filter, nil
}

package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/problem"
	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
)

const topCityLimit = 10

// AdminService implements the moderation endpoints.
type AdminService struct {
	reports repositories.ReportRepository
}

func NewAdminService(reports repositories.ReportRepository) *AdminService {
	return &AdminService{reports: reports}
}

func (s *AdminService) ListAll(ctx context.Context, p *models.ListReportsParams) (*models.ReportList, error) {
	filter, err := buildFilter(p)
	if err != nil {
		return nil, err
	}
	// admin scope: no owner restriction

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

func (s *AdminService) GetDetail(ctx context.Context, id string) (*models.AdminReportDetail, error) {
	report, err := s.reports.GetByIDWithUser(ctx, id)
	if err != nil {
		return nil, problem.NewInternalServerError("could not load report: " + err.Error())
	}
	if report == nil {
		return nil, problem.NewNotFound(id, "waste report not found")
	}
	return util.ToAdminReportDetail(report), nil
}

func (s *AdminService) UpdateStatus(ctx context.Context, in *models.StatusUpdateInput) (*models.AdminReportDetail, error) {
	if !in.Status.Valid() {
		return nil, problem.NewBadRequest("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	report, err := s.reports.GetByIDWithUser(ctx, in.Id)
	if err != nil {
		return nil, problem.NewInternalServerError("could not load report: " + err.Error())
	}
	if report == nil {
		return nil, problem.NewNotFound(in.Id, "waste report not found")
	}

	if err := s.reports.UpdateStatus(ctx, in.Id, in.Status, in.AdminNotes); err != nil {
		return nil, problem.NewInternalServerError("could not update status: " + err.Error())
	}
	report.Status = in.Status
	report.AdminNotes = in.AdminNotes
	return util.ToAdminReportDetail(report), nil
}

// Statistics fans the independent aggregates out with a bounded group; the
// queries do not depend on each other so there is no reason to run them in
// sequence.
func (s *AdminService) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{
		ByStatus:    map[models.ReportStatus]int64{},
		ByWasteType: map[models.WasteType]int64{},
		ByUrgency:   map[models.UrgencyLevel]int64{},
	}

	const maxConcurrent = 3
	sem := semaphore.NewWeighted(maxConcurrent)
	g, ctx := errgroup.WithContext(ctx)

	run := func(fn func() error) {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return fn()
		})
	}

	run(func() error {
		total, err := s.reports.CountAll(ctx)
		stats.TotalReports = total
		return err
	})
	run(func() error {
		byStatus, err := s.reports.CountGroupedBy(ctx, "status")
		for k, v := range byStatus {
			stats.ByStatus[models.ReportStatus(k)] = v
		}
		return err
	})
	run(func() error {
		byType, err := s.reports.CountGroupedBy(ctx, "waste_type")
		for k, v := range byType {
			stats.ByWasteType[models.WasteType(k)] = v
		}
		return err
	})
	run(func() error {
		byUrgency, err := s.reports.CountGroupedBy(ctx, "urgency_level")
		for k, v := range byUrgency {
			stats.ByUrgency[models.UrgencyLevel(k)] = v
		}
		return err
	})
	run(func() error {
		cities, err := s.reports.TopCities(ctx, topCityLimit)
		stats.TopCities = cities
		return err
	})
	run(func() error {
		photos, err := s.reports.CountPhotos(ctx)
		stats.TotalPhotos = photos
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, problem.NewInternalServerError("could not aggregate statistics: " + err.Error())
	}
	return stats, nil
}

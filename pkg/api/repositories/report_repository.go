package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/cleancity-app/waste-report-api/pkg/api/helpers/util"
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
)

// ReportFilter narrows and orders a report listing. A nil field means
// "no filter". UserID scopes the listing to one owner; empty means all
// reports (admin scope).
type ReportFilter struct {
	UserID    string
	Status    *models.ReportStatus
	WasteType *models.WasteType
	Urgency   *models.UrgencyLevel
	City      *string
	From      *time.Time
	To        *time.Time
	Sort      string
	Order     string
	Page      int
	PerPage   int
}

// sortColumns whitelists the fields a client may order by. Anything else
// falls back to created_at.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"urgency_level": "urgency_level",
	"status":        "status",
	"city":          "city",
}

type ReportRepository interface {
	Save(report *models.WasteReport) error
	GetByID(ctx context.Context, id string) (*models.WasteReport, error)
	GetByIDWithUser(ctx context.Context, id string) (*models.WasteReport, error)
	List(ctx context.Context, filter ReportFilter) ([]models.WasteReport, models.Pagination, error)
	Update(ctx context.Context, report *models.WasteReport) error
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus, adminNotes string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error)
	AddPhotos(ctx context.Context, photos []models.WastePhoto) error
	CountAll(ctx context.Context) (int64, error)
	CountGroupedBy(ctx context.Context, column string) (map[string]int64, error)
	TopCities(ctx context.Context, limit int) ([]models.CityCount, error)
	CountPhotos(ctx context.Context) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Save(report *models.WasteReport) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.WasteReport, error) {
	var report models.WasteReport
	err := r.db.WithContext(ctx).Preload("Photos").First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) GetByIDWithUser(ctx context.Context, id string) (*models.WasteReport, error) {
	var report models.WasteReport
	err := r.db.WithContext(ctx).Preload("Photos").Preload("User").First(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.WasteReport, models.Pagination, error) {
	page, perPage := util.ClampPaging(filter.Page, filter.PerPage)

	q := r.db.WithContext(ctx).Model(&models.WasteReport{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.WasteType != nil {
		q = q.Where("waste_type = ?", *filter.WasteType)
	}
	if filter.Urgency != nil {
		q = q.Where("urgency_level = ?", *filter.Urgency)
	}
	if filter.City != nil {
		q = q.Where("LOWER(city) = LOWER(?)", *filter.City)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", filter.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.Order == "asc" {
		direction = "ASC"
	}

	var reports []models.WasteReport
	err := q.Preload("Photos").
		Order(column + " " + direction).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&reports).Error
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return reports, util.BuildPagination(page, perPage, int(total)), nil
}

func (r *reportRepository) Update(ctx context.Context, report *models.WasteReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, adminNotes string) error {
	return r.db.WithContext(ctx).
		Model(&models.WasteReport{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "admin_notes": adminNotes}).Error
}

func (r *reportRepository) Delete(ctx context.Context, id string) error {
	// photo rows first; sqlite in tests does not enforce the cascade
	if err := r.db.WithContext(ctx).Where("waste_report_id = ?", id).Delete(&models.WastePhoto{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.WasteReport{}, "id = ?", id).Error
}

func (r *reportRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WasteReport{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WasteReport{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) AddPhotos(ctx context.Context, photos []models.WastePhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&photos).Error
}

func (r *reportRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WasteReport{}).Count(&count).Error
	return count, err
}

type groupCount struct {
	Key   string
	Count int64
}

func (r *reportRepository) CountGroupedBy(ctx context.Context, column string) (map[string]int64, error) {
	if _, ok := sortColumns[column]; !ok && column != "waste_type" {
		return nil, errors.New("unsupported grouping column: " + column)
	}
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&models.WasteReport{}).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *reportRepository) TopCities(ctx context.Context, limit int) ([]models.CityCount, error) {
	var rows []models.CityCount
	err := r.db.WithContext(ctx).Model(&models.WasteReport{}).
		Select("city, COUNT(*) AS count").
		Group("city").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountPhotos(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WastePhoto{}).Count(&count).Error
	return count, err
}

package util

import (
	"github.com/cleancity-app/waste-report-api/pkg/api/models"
)

func ToReportSummary(r *models.WasteReport) models.ReportSummary {
	return models.ReportSummary{
		Id:            r.Id,
		Reference:     r.Reference,
		StreetAddress: r.StreetAddress,
		City:          r.City,
		WasteType:     r.WasteType,
		UrgencyLevel:  r.UrgencyLevel,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		PhotoCount:    len(r.Photos),
	}
}

func ToReportDetail(r *models.WasteReport, warnings []string) *models.ReportDetail {
	return &models.ReportDetail{
		WasteReport:   *r,
		PhotoWarnings: warnings,
	}
}

func ToAdminReportDetail(r *models.WasteReport) *models.AdminReportDetail {
	detail := &models.AdminReportDetail{
		WasteReport: *r,
		AdminNotes:  r.AdminNotes,
	}
	if r.User != nil {
		detail.UserEmail = r.User.Email
		detail.UserUsername = r.User.Username
	}
	return detail
}

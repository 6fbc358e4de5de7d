package models

import "time"

type WasteReport struct {
	Id               string           `json:"id" gorm:"column:id;primaryKey"`
	Reference        string           `json:"reference" gorm:"uniqueIndex;size:16"`
	StreetAddress    string           `json:"streetAddress" gorm:"size:255"`
	City             string           `json:"city" gorm:"size:100;index"`
	PostalCode       string           `json:"postalCode" gorm:"size:20"`
	Latitude         *float64         `json:"latitude,omitempty"`
	Longitude        *float64         `json:"longitude,omitempty"`
	WasteType        WasteType        `json:"wasteType" gorm:"size:50;index"`
	QuantityEstimate QuantityEstimate `json:"quantityEstimate" gorm:"size:20"`
	UrgencyLevel     UrgencyLevel     `json:"urgencyLevel" gorm:"size:20;index"`
	Description      string           `json:"description,omitempty" gorm:"size:1000"`
	ReporterName     string           `json:"reporterName" gorm:"size:100"`
	ReporterPhone    string           `json:"reporterPhone,omitempty" gorm:"size:20"`
	Status           ReportStatus     `json:"status" gorm:"size:20;index;default:pending"`
	AdminNotes       string           `json:"-" gorm:"size:1000"`
	UserID           string           `json:"userId" gorm:"index"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`

	User   *User        `json:"-" gorm:"foreignKey:UserID"`
	Photos []WastePhoto `json:"photos,omitempty" gorm:"foreignKey:WasteReportID;constraint:OnDelete:CASCADE"`
}

// WastePhoto is one stored attachment linked to a report. Path is the
// storage reference returned by the intake validator and doubles as the
// on-disk location relative to the process working directory.
type WastePhoto struct {
	Id            string    `json:"id" gorm:"column:id;primaryKey"`
	WasteReportID string    `json:"wasteReportId" gorm:"index"`
	Path          string    `json:"path" gorm:"size:512"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// ReportSummary is the list view of a report.
type ReportSummary struct {
	Id            string       `json:"id"`
	Reference     string       `json:"reference"`
	StreetAddress string       `json:"streetAddress"`
	City          string       `json:"city"`
	WasteType     WasteType    `json:"wasteType"`
	UrgencyLevel  UrgencyLevel `json:"urgencyLevel"`
	Status        ReportStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	PhotoCount    int          `json:"photoCount"`
}

// ReportDetail is the owner view of a single report.
type ReportDetail struct {
	WasteReport
	// PhotoWarnings carries per-file upload failures when the service runs
	// with the fail-open upload policy.
	PhotoWarnings []string `json:"photoWarnings,omitempty"`
}

// AdminReportDetail adds reporter account info and moderation notes.
type AdminReportDetail struct {
	WasteReport
	AdminNotes   string `json:"adminNotes,omitempty"`
	UserEmail    string `json:"userEmail,omitempty"`
	UserUsername string `json:"userUsername,omitempty"`
}

type ReportList struct {
	Items      []ReportSummary `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

type ReportParams struct {
	Id string `path:"id"`
}

type StatusUpdateInput struct {
	Id         string       `path:"id"`
	Status     ReportStatus `json:"status" binding:"required"`
	AdminNotes string       `json:"adminNotes,omitempty" binding:"max=1000"`
}

// Statistics is the admin aggregate view over all reports.
type Statistics struct {
	TotalReports int64                  `json:"totalReports"`
	ByStatus     map[ReportStatus]int64 `json:"byStatus"`
	ByWasteType  map[WasteType]int64    `json:"byWasteType"`
	ByUrgency    map[UrgencyLevel]int64 `json:"byUrgency"`
	TopCities    []CityCount            `json:"topCities"`
	TotalPhotos  int64                  `json:"totalPhotos"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

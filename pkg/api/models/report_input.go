package models

// CreateReportInput carries the multipart form fields of a new report.
type CreateReportInput struct {
	StreetAddress    string           `form:"streetAddress" binding:"required,max=255"`
	City             string           `form:"city" binding:"required,max=100"`
	PostalCode       string           `form:"postalCode" binding:"required,max=20"`
	Latitude         *float64         `form:"latitude"`
	Longitude        *float64         `form:"longitude"`
	WasteType        WasteType        `form:"wasteType" binding:"required"`
	QuantityEstimate QuantityEstimate `form:"quantityEstimate" binding:"required"`
	UrgencyLevel     UrgencyLevel     `form:"urgencyLevel" binding:"required"`
	Description      string           `form:"description" binding:"max=1000"`
	ReporterName     string           `form:"reporterName" binding:"required,max=100"`
	ReporterPhone    string           `form:"reporterPhone" binding:"max=20"`
}

// UpdateReportInput carries optional multipart form fields; nil means
// "leave unchanged".
type UpdateReportInput struct {
	StreetAddress    *string           `form:"streetAddress" binding:"omitempty,max=255"`
	City             *string           `form:"city" binding:"omitempty,max=100"`
	PostalCode       *string           `form:"postalCode" binding:"omitempty,max=20"`
	Latitude         *float64          `form:"latitude"`
	Longitude        *float64          `form:"longitude"`
	WasteType        *WasteType        `form:"wasteType"`
	QuantityEstimate *QuantityEstimate `form:"quantityEstimate"`
	UrgencyLevel     *UrgencyLevel     `form:"urgencyLevel"`
	Description      *string           `form:"description" binding:"omitempty,max=1000"`
	ReporterName     *string           `form:"reporterName" binding:"omitempty,max=100"`
	ReporterPhone    *string           `form:"reporterPhone" binding:"omitempty,max=20"`
}

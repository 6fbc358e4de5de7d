package models

// WasteType classifies what kind of waste a report is about.
type WasteType string

const (
	WasteTypeHousehold      WasteType = "household"
	WasteTypeRecyclable     WasteType = "recyclable"
	WasteTypeElectronic     WasteType = "electronic"
	WasteTypeConstruction   WasteType = "construction"
	WasteTypeHazardous      WasteType = "hazardous"
	WasteTypeOrganic        WasteType = "organic"
	WasteTypeIllegalDumping WasteType = "illegal_dumping"
	WasteTypeOther          WasteType = "other"
)

func (t WasteType) Valid() bool {
	switch t {
	case WasteTypeHousehold, WasteTypeRecyclable, WasteTypeElectronic,
		WasteTypeConstruction, WasteTypeHazardous, WasteTypeOrganic,
		WasteTypeIllegalDumping, WasteTypeOther:
		return true
	}
	return false
}

// QuantityEstimate is the reporter's rough estimate of the amount of waste.
type QuantityEstimate string

const (
	QuantitySmall     QuantityEstimate = "small"
	QuantityMedium    QuantityEstimate = "medium"
	QuantityLarge     QuantityEstimate = "large"
	QuantityVeryLarge QuantityEstimate = "very_large"
)

func (q QuantityEstimate) Valid() bool {
	switch q {
	case QuantitySmall, QuantityMedium, QuantityLarge, QuantityVeryLarge:
		return true
	}
	return false
}

// UrgencyLevel indicates how quickly a report should be handled.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

func (u UrgencyLevel) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// ReportStatus is the moderation state of a waste report.
type ReportStatus string

const (
	StatusPending   ReportStatus = "pending"
	StatusApproved  ReportStatus = "approved"
	StatusRejected  ReportStatus = "rejected"
	StatusCompleted ReportStatus = "completed"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// WasteTypeInfo describes one waste type for the public catalog endpoint.
type WasteTypeInfo struct {
	Value       WasteType `json:"value"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

// WasteTypeCatalog returns every waste type with a human readable label.
func WasteTypeCatalog() []WasteTypeInfo {
	return []WasteTypeInfo{
		{WasteTypeHousehold, "Household Waste", "General household garbage and non-recyclable items"},
		{WasteTypeRecyclable, "Recyclable Materials", "Paper, plastic, glass, metal that can be recycled"},
		{WasteTypeElectronic, "Electronic Waste", "Computers, phones, batteries, and electronic devices"},
		{WasteTypeConstruction, "Construction Debris", "Building materials, concrete, wood, drywall"},
		{WasteTypeHazardous, "Hazardous Materials", "Chemicals, paints, oils, and dangerous substances"},
		{WasteTypeOrganic, "Organic Waste", "Food scraps, yard waste, compostable materials"},
		{WasteTypeIllegalDumping, "Illegal Dumping", "Unauthorized disposal of waste in public areas"},
		{WasteTypeOther, "Other", "Other types of waste not listed above"},
	}
}

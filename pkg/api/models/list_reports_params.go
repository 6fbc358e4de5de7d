package models

type ListReportsParams struct {
	Page      int     `query:"page"`
	PerPage   int     `query:"perPage"`
	Status    *string `query:"status"`
	WasteType *string `query:"wasteType"`
	Urgency   *string `query:"urgency"`
	City      *string `query:"city"`
	From      *string `query:"from"` // YYYY-MM-DD
	To        *string `query:"to"`   // YYYY-MM-DD
	Sort      string  `query:"sort"`
	Order     string  `query:"order"`
}

type Pagination struct {
	Next           *int `json:"next,omitempty"`
	Previous       *int `json:"previous,omitempty"`
	CurrentPage    int  `json:"currentPage"`
	RecordsPerPage int  `json:"recordsPerPage"`
	TotalPages     int  `json:"totalPages"`
	TotalRecords   int  `json:"totalRecords"`
}

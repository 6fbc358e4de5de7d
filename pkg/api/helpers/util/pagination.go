package util

import (
	"fmt"
	"math"
	"net/http"

	"github.com/cleancity-app/waste-report-api/pkg/api/models"
)

// BuildPagination computes page bookkeeping for a total record count.
func BuildPagination(page, perPage, totalRecords int) models.Pagination {
	totalPages := int(math.Ceil(float64(totalRecords) / float64(perPage)))
	p := models.Pagination{
		CurrentPage:    page,
		RecordsPerPage: perPage,
		TotalPages:     totalPages,
		TotalRecords:   totalRecords,
	}
	if page < totalPages {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p
}

// SetPaginationHeaders exposes the pagination state as response headers.
func SetPaginationHeaders(_ *http.Request, setHeader func(string, string), p models.Pagination) {
	setHeader("X-Total-Count", fmt.Sprintf("%d", p.TotalRecords))
	setHeader("X-Total-Pages", fmt.Sprintf("%d", p.TotalPages))
	setHeader("X-Current-Page", fmt.Sprintf("%d", p.CurrentPage))
	setHeader("X-Per-Page", fmt.Sprintf("%d", p.RecordsPerPage))
}

// ClampPaging normalises page/perPage query values.
func ClampPaging(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

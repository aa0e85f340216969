package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pdfwise/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Chat lists are small; a page is capped well below a generic API limit.
const (
	DefaultPage = 1
	DefaultSize = 20
	MaxSize     = 50
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// Offset returns the row offset for the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.Size
}

// FromContext extracts pagination params from the request, clamping out of
// range values instead of rejecting them.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.Query("page"), DefaultPage)
	size := parseIntOr(c.Query("size"), DefaultSize)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case size < 1:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}

	return Query{Page: page, Size: size}
}

// Paginate applies limit/offset to a GORM query and returns the pagination
// metadata. An empty result set skips the second query.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	meta := response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		Size:        q.Size,
	}
	if total == 0 {
		*dest = []T{}
		return meta, nil
	}

	if err := db.Offset(q.Offset()).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	meta.TotalPage = int((total + int64(q.Size) - 1) / int64(q.Size))
	meta.HasNextPage = q.Page < meta.TotalPage
	return meta, nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

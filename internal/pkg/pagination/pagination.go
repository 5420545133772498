package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 50
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext extracts and validates pagination params from the request.
// "limit" is accepted as an alias of "size".
func FromContext(c *gin.Context) Query {
	sizeParam := c.Query("size")
	if sizeParam == "" {
		sizeParam = c.DefaultQuery("limit", "10")
	}
	return Normalize(parseIntOr(c.DefaultQuery("page", "1"), DefaultPage), parseIntOr(sizeParam, DefaultSize))
}

// Normalize clamps page and size into their legal ranges.
func Normalize(page, size int) Query {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Query{Page: page, Size: size}
}

// Paginate applies limit/offset to a GORM query and returns the pagination metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	offset := (q.Page - 1) * q.Size
	if err := db.Offset(offset).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}
	return meta(total, q), nil
}

// Slice pages through an already loaded, already ordered slice.
func Slice[T any](items []T, q Query) ([]T, response.Pagination) {
	total := len(items)
	start := (q.Page - 1) * q.Size
	if start > total {
		start = total
	}
	end := start + q.Size
	if end > total {
		end = total
	}
	return items[start:end], meta(int64(total), q)
}

func meta(total int64, q Query) response.Pagination {
	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

package crud

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ListQuery carries the optional pagination and sorting of a list request.
// Page and Size are only sent when Sort is set.
type ListQuery struct {
	Page      int
	Size      int
	Sort      string
	Eagerload bool
}

func (q ListQuery) Sorted() bool {
	return strings.TrimSpace(q.Sort) != ""
}

// Values encodes q, always adding a cacheBuster derived from now.
func (q ListQuery) Values(now time.Time) url.Values {
	values := url.Values{}
	if q.Sorted() {
		values.Set("page", strconv.Itoa(q.Page))
		values.Set("size", strconv.Itoa(q.Size))
		values.Set("sort", strings.TrimSpace(q.Sort))
	}
	if q.Eagerload {
		values.Set("eagerload", "true")
	}
	values.Set("cacheBuster", strconv.FormatInt(now.UnixMilli(), 10))
	return values
}

// Page is one list response: the records plus the backend's total count.
type Page[T any] struct {
	Items []T
	Total int64
}

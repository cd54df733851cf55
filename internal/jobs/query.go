package jobs

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultPageSize is the listing page size when none is configured.
const DefaultPageSize = 20

// PageSizes lists the page sizes the listing endpoint accepts.
var PageSizes = []int{10, 20, 50, 100}

// ErrInvalidFilter reports a filter value the backend would reject.
var ErrInvalidFilter = errors.New("invalid filter")

// Filters narrows the job listing. Zero values mean "no constraint".
type Filters struct {
	Status       Status
	FailedStage  FailedStage
	UserID       string
	MobileNumber string
	JobID        string
	StartDate    string
	EndDate      string
}

// Empty reports whether no filter is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Validate checks that every set filter is well formed.
func (f Filters) Validate() error {
	if f.Status != "" && !f.Status.Known() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	if f.FailedStage != "" {
		if _, ok := ParseFailedStage(string(f.FailedStage)); !ok {
			return fmt.Errorf("%w: unknown failed stage %q", ErrInvalidFilter, f.FailedStage)
		}
	}
	if f.JobID != "" {
		id, err := strconv.ParseInt(f.JobID, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: job id must be a positive integer, got %q", ErrInvalidFilter, f.JobID)
		}
	}
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = time.Parse(time.DateOnly, f.StartDate); err != nil {
			return fmt.Errorf("%w: start date must be YYYY-MM-DD, got %q", ErrInvalidFilter, f.StartDate)
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, f.EndDate); err != nil {
			return fmt.Errorf("%w: end date must be YYYY-MM-DD, got %q", ErrInvalidFilter, f.EndDate)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end date is before start date", ErrInvalidFilter)
	}
	return nil
}

func (f Filters) trimmed() Filters {
	f.UserID = strings.TrimSpace(f.UserID)
	f.MobileNumber = strings.TrimSpace(f.MobileNumber)
	f.JobID = strings.TrimSpace(f.JobID)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
	return f
}

// Query is the full listing request: filters plus the page window. It is a
// value type; every mutator returns a new Query.
type Query struct {
	Filters  Filters
	Page     int
	PageSize int
}

// NewQuery returns an unfiltered first-page query.
func NewQuery(pageSize int) Query {
	if !slices.Contains(PageSizes, pageSize) {
		pageSize = DefaultPageSize
	}
	return Query{Page: 1, PageSize: pageSize}
}

// WithFilters replaces the filters. Any change sends the query back to page 1.
func (q Query) WithFilters(f Filters) Query {
	f = f.trimmed()
	if f != q.Filters {
		q.Page = 1
	}
	q.Filters = f
	return q
}

// WithPageSize changes the page size and returns to page 1.
func (q Query) WithPageSize(size int) (Query, error) {
	if !slices.Contains(PageSizes, size) {
		return q, fmt.Errorf("%w: page size must be one of %v, got %d", ErrInvalidFilter, PageSizes, size)
	}
	if size != q.PageSize {
		q.Page = 1
	}
	q.PageSize = size
	return q, nil
}

// WithPage moves to page, clamped to at least 1.
func (q Query) WithPage(page int) Query {
	q.Page = max(page, 1)
	return q
}

// Cleared drops every filter and restores the default page size.
func (q Query) Cleared(defaultPageSize int) Query {
	return NewQuery(defaultPageSize)
}

// Pagination describes which page controls are usable.
type Pagination struct {
	Page       int
	TotalPages int
}

// CanPrev reports whether a previous page exists.
func (p Pagination) CanPrev() bool {
	return p.Page > 1
}

// CanNext reports whether a next page exists.
func (p Pagination) CanNext() bool {
	return p.Page < p.TotalPages
}

// Visible reports whether pagination controls are worth showing.
func (p Pagination) Visible() bool {
	return p.TotalPages > 1
}

package jobs

import (
	"context"
	"log/slog"
	"sync"

	"jobdesk/internal/logging"
)

// ListState is a snapshot of the listing view.
type ListState struct {
	Query      Query
	Items      []Job
	Total      int
	TotalPages int
	Message    string
	Loading    bool
	Loaded     bool
	Err        error
}

// Pagination returns the page controls for the current state.
func (s ListState) Pagination() Pagination {
	return Pagination{Page: s.Query.Page, TotalPages: s.TotalPages}
}

// Empty reports a successful load that matched no jobs.
func (s ListState) Empty() bool {
	return s.Loaded && s.Err == nil && len(s.Items) == 0
}

// ListController owns the filter/pagination query and the listing results.
type ListController struct {
	src             Lister
	logger          *slog.Logger
	defaultPageSize int

	mu    sync.Mutex
	state ListState
	seq   uint64
}

// NewListController builds a controller starting at page 1 with no filters.
func NewListController(src Lister, pageSize int, logger *slog.Logger) *ListController {
	return &ListController{
		src:             src,
		logger:          logging.NewComponentLogger(logger, "jobs"),
		defaultPageSize: pageSize,
		state:           ListState{Query: NewQuery(pageSize)},
	}
}

// State returns a snapshot of the current listing.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.state
	state.Items = append([]Job(nil), c.state.Items...)
	return state
}

// Query returns the query the next Refresh will send.
func (c *ListController) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Query
}

// SetFilters validates and applies filters.
func (c *ListController) SetFilters(f Filters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = c.state.Query.WithFilters(f)
	return nil
}

// SetPageSize changes the page size.
func (c *ListController) SetPageSize(size int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, err := c.state.Query.WithPageSize(size)
	if err != nil {
		return err
	}
	c.state.Query = q
	return nil
}

// SetPage jumps to page.
func (c *ListController) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = c.state.Query.WithPage(page)
}

// NextPage advances one page. It reports false at the last page.
func (c *ListController) NextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Pagination().CanNext() {
		return false
	}
	c.state.Query = c.state.Query.WithPage(c.state.Query.Page + 1)
	return true
}

// PrevPage goes back one page. It reports false at page 1.
func (c *ListController) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Pagination().CanPrev() {
		return false
	}
	c.state.Query = c.state.Query.WithPage(c.state.Query.Page - 1)
	return true
}

// ClearFilters resets filters and page size to their defaults.
func (c *ListController) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = c.state.Query.Cleared(c.defaultPageSize)
}

// Refresh loads the current query. Only the most recently issued refresh may
// update the state, so a slow earlier response never overwrites a newer one.
func (c *ListController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	query := c.state.Query
	c.state.Loading = true
	c.mu.Unlock()

	page, err := c.src.ListJobs(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return err
	}
	c.state.Loading = false
	c.state.Loaded = true
	if err != nil {
		c.state.Items = nil
		c.state.Total = 0
		c.state.TotalPages = 0
		c.state.Message = ""
		c.state.Err = err
		logging.WithContext(ctx, c.logger).Warn("job listing failed", logging.Error(err))
		return err
	}
	c.state.Items = page.Items
	c.state.Total = page.Total
	c.state.TotalPages = page.TotalPages
	c.state.Message = page.Message
	c.state.Err = nil
	c.logger.Debug("job listing loaded",
		logging.Int("page", query.Page),
		logging.Int("items", len(page.Items)),
		logging.Int("total", page.Total),
	)
	return nil
}

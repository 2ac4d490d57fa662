// Package search owns the faceted-search state: filter fields, debounced
// promotion, pagination, query-parameter derivation and the URL round-trip.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// KindSearch tags search result cache entries.
const KindSearch = "search"

const (
	// DefaultDebounceWindow before filter writes are promoted to the query.
	DefaultDebounceWindow = 500 * time.Millisecond

	// DefaultPageSize of search result pages.
	DefaultPageSize = 50

	// Star rating bounds. Min at 0 or max at 5 means "no constraint".
	MinStarRating = 0
	MaxStarRating = 5
)

// Filters is the raw filter state. Nil pointer fields mean unset.
type Filters struct {
	Query    string
	AlbumID  *int
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
	MinStars *int
	MaxStars *int
	State    string
}

func (f Filters) clone() Filters {
	out := f
	if f.AlbumID != nil {
		v := *f.AlbumID
		out.AlbumID = &v
	}
	if f.MinStars != nil {
		v := *f.MinStars
		out.MinStars = &v
	}
	if f.MaxStars != nil {
		v := *f.MaxStars
		out.MaxStars = &v
	}
	return out
}

// Pagination is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// Searcher is the slice of the REST client the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, params api.SearchParams) (api.SearchResult, error)
}

var _ Searcher = (*api.Client)(nil)

// Pipeline drives a debounced, paginated, URL-round-trippable search.
type Pipeline struct {
	backend Searcher
	cache   *querycache.Cache
	deb     *debouncer

	mu        sync.Mutex
	filters   Filters
	debounced Filters
	pag       Pagination
	result    *api.SearchResult
	onPromote func()
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithDebounceWindow overrides the promotion delay.
func WithDebounceWindow(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.deb = newDebouncer(d, p.promote)
	}
}

// WithPageSize overrides the initial page size.
func WithPageSize(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.pag.PageSize = n
		}
	}
}

// WithOnPromote registers a callback fired after each debounced promotion,
// typically to trigger Run.
func WithOnPromote(fn func()) PipelineOption {
	return func(p *Pipeline) {
		p.onPromote = fn
	}
}

// NewPipeline creates a search pipeline over the backend and cache.
func NewPipeline(backend Searcher, cache *querycache.Cache, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		backend: backend,
		cache:   cache,
		pag:     Pagination{Page: 1, PageSize: DefaultPageSize},
	}
	p.deb = newDebouncer(DefaultDebounceWindow, p.promote)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close stops the debounce timer.
func (p *Pipeline) Close() {
	p.deb.stop()
}

// promote copies the raw filters into the debounced set and resets the page.
func (p *Pipeline) promote() {
	p.mu.Lock()
	p.debounced = p.filters.clone()
	p.pag.Page = 1
	cb := p.onPromote
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Flush promotes any pending filter writes immediately.
func (p *Pipeline) Flush() {
	p.deb.flushNow()
}

// SetQuery updates the free-text query. The write is visible immediately in
// Filters; the promoted value is debounced.
func (p *Pipeline) SetQuery(q string) {
	p.mu.Lock()
	p.filters.Query = q
	p.mu.Unlock()
	p.deb.trigger()
}

// SetAlbum scopes the search to one album; nil clears the scope.
func (p *Pipeline) SetAlbum(albumID *int) {
	p.mu.Lock()
	p.filters.AlbumID = albumID
	p.mu.Unlock()
	p.deb.trigger()
}

// SetDateRange sets the inclusive capture-date range. Empty strings unset.
func (p *Pipeline) SetDateRange(from, to string) {
	p.mu.Lock()
	p.filters.DateFrom = from
	p.filters.DateTo = to
	p.mu.Unlock()
	p.deb.trigger()
}

// SetStarRange sets the star rating bounds; nil unsets a bound.
func (p *Pipeline) SetStarRange(minStars, maxStars *int) {
	p.mu.Lock()
	p.filters.MinStars = minStars
	p.filters.MaxStars = maxStars
	p.mu.Unlock()
	p.deb.trigger()
}

// SetState filters by pick/reject workflow state; empty unsets.
func (p *Pipeline) SetState(state string) {
	p.mu.Lock()
	p.filters.State = state
	p.mu.Unlock()
	p.deb.trigger()
}

// ClearFilters resets every filter except the free-text query.
func (p *Pipeline) ClearFilters() {
	p.mu.Lock()
	p.filters = Filters{Query: p.filters.Query}
	p.mu.Unlock()
	p.deb.trigger()
}

// Filters returns a copy of the raw (not yet promoted) filter state.
func (p *Pipeline) Filters() Filters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.clone()
}

// Pagination returns the current pagination state.
func (p *Pipeline) Pagination() Pagination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pag
}

// HasActiveFilters reports whether any filter beyond the free-text query is
// effective.
func (p *Pipeline) HasActiveFilters() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := p.filters
	return f.AlbumID != nil ||
		f.DateFrom != "" ||
		f.DateTo != "" ||
		(f.MinStars != nil && *f.MinStars > MinStarRating) ||
		(f.MaxStars != nil && *f.MaxStars < MaxStarRating) ||
		f.State != ""
}

// Params derives the effective query parameters from the debounced filters
// and the pagination state. Star bounds at the full-range default are
// omitted; the upper date bound is normalized to the end of its day so the
// range includes the whole day.
func (p *Pipeline) Params() api.SearchParams {
	p.mu.Lock()
	f := p.debounced.clone()
	pag := p.pag
	p.mu.Unlock()

	params := api.SearchParams{
		Limit:  pag.PageSize,
		Offset: (pag.Page - 1) * pag.PageSize,
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		params.Query = q
	}
	params.AlbumID = f.AlbumID
	if f.DateFrom != "" {
		params.DateFrom = normalizeDate(f.DateFrom, false)
	}
	if f.DateTo != "" {
		params.DateTo = normalizeDate(f.DateTo, true)
	}
	if f.MinStars != nil && *f.MinStars > MinStarRating {
		params.MinStars = f.MinStars
	}
	if f.MaxStars != nil && *f.MaxStars < MaxStarRating {
		params.MaxStars = f.MaxStars
	}
	params.State = f.State

	return params
}

// Enabled reports whether the current debounced state is eligible to
// execute: an entirely empty filter set never queries.
func (p *Pipeline) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.TrimSpace(p.debounced.Query) != "" || p.debounced.AlbumID != nil
}

// Run executes the search for the current effective parameters through the
// query cache. When disabled, it is a no-op returning the last result. On a
// failed refresh the previous result for the same parameters stays visible.
func (p *Pipeline) Run(ctx context.Context) (api.SearchResult, error) {
	if !p.Enabled() {
		return p.Result(), nil
	}

	params := p.Params()
	key := searchKey(params)

	v, err := p.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return p.backend.Search(ctx, params)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if result, ok := v.(api.SearchResult); ok {
		p.result = &result
	}
	if err != nil {
		log.Debug().Err(err).Msg("Search failed, previous results kept")
	}
	if p.result == nil {
		return api.SearchResult{}, err
	}
	return *p.result, err
}

// Result returns the last search result, zero when none has landed yet.
func (p *Pipeline) Result() api.SearchResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return api.SearchResult{}
	}
	return *p.result
}

// TotalPages computes the page count from the last result's total.
func (p *Pipeline) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalPagesLocked()
}

func (p *Pipeline) totalPagesLocked() int {
	if p.result == nil || p.pag.PageSize <= 0 {
		return 0
	}
	return (p.result.Total + p.pag.PageSize - 1) / p.pag.PageSize
}

// SetPage jumps to a page. Out-of-range values are clamped to 1.
func (p *Pipeline) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page < 1 {
		page = 1
	}
	p.pag.Page = page
}

// SetPageSize changes the page size and resets to the first page.
func (p *Pipeline) SetPageSize(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if size < 1 {
		return
	}
	p.pag.PageSize = size
	p.pag.Page = 1
}

// NextPage advances one page; a no-op at the last page.
func (p *Pipeline) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pag.Page < p.totalPagesLocked() {
		p.pag.Page++
	}
}

// PreviousPage goes back one page; a no-op at the first page.
func (p *Pipeline) PreviousPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pag.Page > 1 {
		p.pag.Page--
	}
}

// searchKey keys a result set by the exact parameters that produced it.
func searchKey(params api.SearchParams) querycache.Key {
	return querycache.NewKey(KindSearch, params.Encode().Encode())
}

// normalizeDate turns a YYYY-MM-DD value into an RFC3339 timestamp with
// millisecond precision, at midnight or at 23:59:59.999 for the inclusive
// upper bound. Values that are not plain dates pass through unchanged.
func normalizeDate(value string, endOfDay bool) string {
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return value
	}
	if endOfDay {
		d = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999_000_000, time.UTC)
	}
	return d.Format("2006-01-02T15:04:05.000Z07:00")
}

package search

import (
	"net/url"
	"strconv"
)

// URL query-string keys for the filter/pagination round-trip.
const (
	paramQuery    = "q"
	paramAlbum    = "album"
	paramDateFrom = "dateFrom"
	paramDateTo   = "dateTo"
	paramMinStars = "minStars"
	paramMaxStars = "maxStars"
	paramState    = "state"
	paramPage     = "page"
	paramPageSize = "pageSize"
)

// EncodeQuery renders the raw filter and pagination state as URL query
// values. Default values (page 1, page size 50, full star range) are omitted
// to keep the URL canonical and minimal.
func (p *Pipeline) EncodeQuery() url.Values {
	p.mu.Lock()
	f := p.filters.clone()
	pag := p.pag
	p.mu.Unlock()

	values := url.Values{}
	if f.Query != "" {
		values.Set(paramQuery, f.Query)
	}
	if f.AlbumID != nil {
		values.Set(paramAlbum, strconv.Itoa(*f.AlbumID))
	}
	if f.DateFrom != "" {
		values.Set(paramDateFrom, f.DateFrom)
	}
	if f.DateTo != "" {
		values.Set(paramDateTo, f.DateTo)
	}
	if f.MinStars != nil && *f.MinStars > MinStarRating {
		values.Set(paramMinStars, strconv.Itoa(*f.MinStars))
	}
	if f.MaxStars != nil && *f.MaxStars < MaxStarRating {
		values.Set(paramMaxStars, strconv.Itoa(*f.MaxStars))
	}
	if f.State != "" {
		values.Set(paramState, f.State)
	}
	if pag.Page > 1 {
		values.Set(paramPage, strconv.Itoa(pag.Page))
	}
	if pag.PageSize != DefaultPageSize {
		values.Set(paramPageSize, strconv.Itoa(pag.PageSize))
	}
	return values
}

// ApplyQuery replaces the filter and pagination state from URL query values.
// The debounce is bypassed: both the raw and the promoted filters are set so
// the state is immediately queryable. Malformed or missing numeric values
// fall back to unset (filters) or their defaults (pagination).
func (p *Pipeline) ApplyQuery(values url.Values) {
	f := Filters{
		Query:    values.Get(paramQuery),
		AlbumID:  parseOptionalInt(values, paramAlbum),
		DateFrom: values.Get(paramDateFrom),
		DateTo:   values.Get(paramDateTo),
		MinStars: parseOptionalInt(values, paramMinStars),
		MaxStars: parseOptionalInt(values, paramMaxStars),
		State:    values.Get(paramState),
	}
	pag := Pagination{
		Page:     parseIntDefault(values, paramPage, 1),
		PageSize: parseIntDefault(values, paramPageSize, DefaultPageSize),
	}
	if pag.Page < 1 {
		pag.Page = 1
	}
	if pag.PageSize < 1 {
		pag.PageSize = DefaultPageSize
	}

	p.mu.Lock()
	p.filters = f.clone()
	p.debounced = f.clone()
	p.pag = pag
	p.mu.Unlock()
}

func parseOptionalInt(values url.Values, key string) *int {
	if !values.Has(key) {
		return nil
	}
	n, err := strconv.Atoi(values.Get(key))
	if err != nil {
		return nil
	}
	return &n
}

func parseIntDefault(values url.Values, key string, def int) int {
	if !values.Has(key) {
		return def
	}
	n, err := strconv.Atoi(values.Get(key))
	if err != nil {
		return def
	}
	return n
}

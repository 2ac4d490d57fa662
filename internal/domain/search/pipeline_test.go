package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// fakeSearcher counts calls and returns a configurable result.
type fakeSearcher struct {
	mu     sync.Mutex
	calls  int32
	result api.SearchResult
	err    error
	last   api.SearchParams
}

func (f *fakeSearcher) Search(ctx context.Context, params api.SearchParams) (api.SearchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = params
	err := f.err
	result := f.result
	f.mu.Unlock()
	if err != nil {
		return api.SearchResult{}, err
	}
	return result, nil
}

func (f *fakeSearcher) lastParams() api.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func intp(i int) *int { return &i }

func TestStarBoundsOmittedAtFullRange(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetQuery("beach")
	p.SetStarRange(intp(0), intp(5))
	p.Flush()

	params := p.Params()
	assert.Nil(t, params.MinStars, "minStars=0 means no constraint")
	assert.Nil(t, params.MaxStars, "maxStars=5 means no constraint")

	p.SetStarRange(intp(2), intp(4))
	p.Flush()

	params = p.Params()
	require.NotNil(t, params.MinStars)
	require.NotNil(t, params.MaxStars)
	assert.Equal(t, 2, *params.MinStars)
	assert.Equal(t, 4, *params.MaxStars)
}

func TestDateToNormalizedToEndOfDay(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetQuery("beach")
	p.SetDateRange("2024-03-10", "2024-03-15")
	p.Flush()

	params := p.Params()
	assert.Equal(t, "2024-03-10T00:00:00.000Z", params.DateFrom)
	assert.Equal(t, "2024-03-15T23:59:59.999Z", params.DateTo, "upper bound must include the whole day")
}

func TestQueryTrimmedAndOmittedWhenEmpty(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetQuery("  sunset  ")
	p.Flush()
	assert.Equal(t, "sunset", p.Params().Query)

	p.SetQuery("   ")
	p.Flush()
	assert.Empty(t, p.Params().Query)
}

func TestDebounceCoalescesRapidWrites(t *testing.T) {
	searcher := &fakeSearcher{result: api.SearchResult{Total: 1}}
	cache := querycache.New()

	var promotions int32
	var p *Pipeline
	p = NewPipeline(searcher, cache,
		WithDebounceWindow(50*time.Millisecond),
		WithOnPromote(func() {
			atomic.AddInt32(&promotions, 1)
			p.Run(context.Background())
		}),
	)
	defer p.Close()

	// Three rapid writes within the window.
	p.SetQuery("b")
	p.SetQuery("be")
	p.SetQuery("bea")

	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&promotions), "one promotion for the burst")
	assert.Equal(t, int32(1), atomic.LoadInt32(&searcher.calls), "one query for the burst")
	assert.Equal(t, "bea", searcher.lastParams().Query, "the last written value wins")
}

func TestSeparateBurstsPromoteIndependently(t *testing.T) {
	var promotions int32
	p := NewPipeline(&fakeSearcher{}, querycache.New(),
		WithDebounceWindow(30*time.Millisecond),
		WithOnPromote(func() { atomic.AddInt32(&promotions, 1) }),
	)
	defer p.Close()

	p.SetQuery("a")
	time.Sleep(80 * time.Millisecond)
	p.SetQuery("ab")
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(2), atomic.LoadInt32(&promotions))
}

func TestFilterWriteVisibleImmediatelyButPromotedLater(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetQuery("dog")
	assert.Equal(t, "dog", p.Filters().Query, "form echo sees the write at once")
	assert.Empty(t, p.Params().Query, "the network layer does not until promotion")

	p.Flush()
	assert.Equal(t, "dog", p.Params().Query)
}

func TestFilterChangeResetsPageToFirst(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetPage(4)
	require.Equal(t, 4, p.Pagination().Page)

	p.SetQuery("cat")
	p.Flush()
	assert.Equal(t, 1, p.Pagination().Page)
}

func TestPaginationBoundaries(t *testing.T) {
	searcher := &fakeSearcher{result: api.SearchResult{Total: 100}}
	p := NewPipeline(searcher, querycache.New())
	defer p.Close()

	p.SetQuery("x")
	p.Flush()
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, p.TotalPages())

	p.NextPage()
	assert.Equal(t, 2, p.Pagination().Page)
	p.NextPage()
	assert.Equal(t, 2, p.Pagination().Page, "next page at the last page is a no-op")

	p.PreviousPage()
	assert.Equal(t, 1, p.Pagination().Page)
	p.PreviousPage()
	assert.Equal(t, 1, p.Pagination().Page, "previous page at the first page is a no-op")
}

func TestEmptyFilterSetNeverQueries(t *testing.T) {
	searcher := &fakeSearcher{}
	p := NewPipeline(searcher, querycache.New())
	defer p.Close()

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Equal(t, int32(0), atomic.LoadInt32(&searcher.calls))

	// An album scope alone enables the query.
	p.SetAlbum(intp(3))
	p.Flush()
	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&searcher.calls))
}

func TestClearFiltersPreservesQueryText(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, querycache.New())
	defer p.Close()

	p.SetQuery("wedding")
	p.SetAlbum(intp(2))
	p.SetDateRange("2024-01-01", "2024-02-01")
	p.SetStarRange(intp(3), nil)
	p.SetState(api.StatePick)
	p.Flush()
	require.True(t, p.HasActiveFilters())

	p.ClearFilters()
	p.Flush()

	f := p.Filters()
	assert.Equal(t, "wedding", f.Query)
	assert.Nil(t, f.AlbumID)
	assert.Empty(t, f.DateFrom)
	assert.Empty(t, f.DateTo)
	assert.Nil(t, f.MinStars)
	assert.Empty(t, f.State)
	assert.False(t, p.HasActiveFilters())
}

func TestFailedSearchKeepsPreviousResults(t *testing.T) {
	searcher := &fakeSearcher{result: api.SearchResult{Total: 12, Photos: []api.Photo{{ID: 1}}}}
	p := NewPipeline(searcher, querycache.New())
	defer p.Close()

	p.SetQuery("alps")
	p.Flush()
	first, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, first.Total)

	searcher.err = &api.Error{Op: "Search", Status: 500, Message: "search backend down"}
	p.SetQuery("alps winter")
	p.Flush()

	got, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "search backend down", err.Error())
	assert.Equal(t, 12, got.Total, "previous result set stays displayed on failure")
	assert.Equal(t, first, p.Result())
}

func TestRepeatedRunUsesCache(t *testing.T) {
	searcher := &fakeSearcher{result: api.SearchResult{Total: 3}}
	p := NewPipeline(searcher, querycache.New())
	defer p.Close()

	p.SetQuery("dunes")
	p.Flush()
	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&searcher.calls), "identical params hit the cache")
}

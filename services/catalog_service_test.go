package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aramille1/olislab-product-catalog/services"
)

// fakeSource implements repository.CatalogSource for tests.
type fakeSource struct {
	mu      sync.Mutex
	csvText string
	err     error
	fetches int32
	block   chan struct{} // when set, Fetch waits until closed
}

func (f *fakeSource) Fetch(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.csvText, nil
}

func (f *fakeSource) set(csvText string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.csvText = csvText
	f.err = err
}

func readyCatalog(t *testing.T, csvText string) *services.CatalogService {
	t.Helper()
	catalog := services.NewCatalogService(&fakeSource{csvText: csvText})
	if err := catalog.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	return catalog
}

func TestCatalogLifecycle(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}
	catalog := services.NewCatalogService(source)

	state, _ := catalog.State()
	assert.Equal(t, services.StateIdle, state)

	_, _, _, err := catalog.List(context.Background(), 0, 10)
	assert.ErrorIs(t, err, services.ErrNotLoaded)

	// Failed load: state failed, no partial data.
	assert.Error(t, catalog.Refresh(context.Background()))
	state, lastErr := catalog.State()
	assert.Equal(t, services.StateFailed, state)
	assert.Error(t, lastErr)
	_, _, _, err = catalog.List(context.Background(), 0, 10)
	assert.ErrorIs(t, err, services.ErrNotLoaded)

	// A later refresh recovers.
	source.set(sampleCSV, nil)
	assert.NoError(t, catalog.Refresh(context.Background()))
	state, lastErr = catalog.State()
	assert.Equal(t, services.StateReady, state)
	assert.NoError(t, lastErr)

	products, total, hasMore, err := catalog.List(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.False(t, hasMore)
	assert.Len(t, products, 2)
}

func TestRefreshJoinsInflightLoad(t *testing.T) {
	block := make(chan struct{})
	source := &fakeSource{csvText: sampleCSV, block: block}
	catalog := services.NewCatalogService(source)

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = catalog.Refresh(context.Background())
		}(i)
	}

	close(block)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	// Concurrent refreshes share one source read.
	assert.Equal(t, int32(1), atomic.LoadInt32(&source.fetches))
}

func TestReadsServePriorSnapshotDuringRefresh(t *testing.T) {
	source := &fakeSource{csvText: sampleCSV}
	catalog := services.NewCatalogService(source)
	assert.NoError(t, catalog.Refresh(context.Background()))

	block := make(chan struct{})
	source.block = block

	done := make(chan error, 1)
	go func() { done <- catalog.Refresh(context.Background()) }()

	for {
		if state, _ := catalog.State(); state == services.StateLoading {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// The old snapshot stays readable while the load is in flight.
	products, total, _, err := catalog.List(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	close(block)
	assert.NoError(t, <-done)
}

func TestFailedRefreshKeepsPriorSnapshot(t *testing.T) {
	source := &fakeSource{csvText: sampleCSV}
	catalog := services.NewCatalogService(source)
	assert.NoError(t, catalog.Refresh(context.Background()))

	source.set("", errors.New("source down"))
	assert.Error(t, catalog.Refresh(context.Background()))

	state, lastErr := catalog.State()
	assert.Equal(t, services.StateFailed, state)
	assert.Error(t, lastErr)

	products, total, _, err := catalog.List(context.Background(), 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	_, err = catalog.GetByID(context.Background(), "csv-1")
	assert.NoError(t, err)

	_, err = catalog.Facets(context.Background())
	assert.NoError(t, err)
}

func TestListPaginationInvariant(t *testing.T) {
	catalog := readyCatalog(t, sampleCSV)

	cases := []struct {
		offset, limit int
		wantLen       int
		wantHasMore   bool
	}{
		{0, 1, 1, true},
		{0, 2, 2, false},
		{0, 50, 2, false},
		{1, 1, 1, false},
		{1, 50, 1, false},
		{2, 1, 0, false},
		{5, 10, 0, false},
	}

	for _, tc := range cases {
		products, total, hasMore, err := catalog.List(context.Background(), tc.offset, tc.limit)
		assert.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, products, tc.wantLen, "offset=%d limit=%d", tc.offset, tc.limit)
		assert.Equal(t, tc.wantHasMore, hasMore, "offset=%d limit=%d", tc.offset, tc.limit)
	}
}

func TestGetByID(t *testing.T) {
	catalog := readyCatalog(t, sampleCSV)

	product, err := catalog.GetByID(context.Background(), "csv-2")
	assert.NoError(t, err)
	assert.Equal(t, "Clear Serum", product.Name)

	_, err = catalog.GetByID(context.Background(), "csv-99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestFacetsAndFilterThroughService(t *testing.T) {
	catalog := readyCatalog(t, sampleCSV)

	facets, err := catalog.Facets(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Dry", "Sensitive", "Oily", "Combination"}, facets.SkinTypes)
	assert.Equal(t, []string{"Glow Labs", "Pure Skin"}, facets.Brands)

	result, err := catalog.Filter(context.Background(), services.FilterInput{
		Filters: []services.FilterToken{{Value: "Serums"}},
	})
	assert.NoError(t, err)
	assert.Len(t, result.Products, 1)
	assert.Equal(t, "csv-2", result.Products[0].ID)
}

func TestSearchIsAccentAndCaseInsensitive(t *testing.T) {
	csvText := "Name,Price,Brand\nCrème Fraîche Mask,€30.00,Glow Labs\nClay Mask,€12.00,Pure Skin\n"
	catalog := readyCatalog(t, csvText)

	results, err := catalog.Search(context.Background(), "creme", 10)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Crème Fraîche Mask", results[0].Name)

	results, err = catalog.Search(context.Background(), "MASK", 10)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRefreshReport(t *testing.T) {
	catalog := readyCatalog(t, sampleCSV)

	report := catalog.Report()
	assert.Equal(t, 2, report.TotalProducts)
	assert.Equal(t, 0, report.MalformedRows)
	assert.False(t, report.LoadedAt.IsZero())
}

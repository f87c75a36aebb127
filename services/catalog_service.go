package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/aramille1/olislab-product-catalog/models"
	"github.com/aramille1/olislab-product-catalog/repository"
)

// LoadState is the catalog lifecycle: idle until the first load, then
// loading, then ready or failed. A failed load never installs partial
// data; any previously loaded snapshot stays in service.
type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateFailed  LoadState = "failed"
)

var (
	// ErrNotLoaded is returned while the catalog has no ready snapshot.
	ErrNotLoaded = errors.New("catalog not loaded")
	// ErrProductNotFound is returned for unknown product ids.
	ErrProductNotFound = errors.New("product not found")
)

// CatalogService owns the in-memory catalog snapshot. Each successful
// Refresh replaces the snapshot and its filter engine atomically; reads see
// either the old or the new catalog, never a mix. While a refresh is in
// flight, and after a failed one, reads keep serving the previous snapshot;
// only a catalog that never loaded returns ErrNotLoaded.
type CatalogService struct {
	source repository.CatalogSource

	mu       sync.RWMutex
	state    LoadState
	products []models.Product
	report   models.IngestReport
	engine   *FilterEngine
	lastErr  error
	inflight chan struct{}
}

func NewCatalogService(source repository.CatalogSource) *CatalogService {
	return &CatalogService{
		source: source,
		state:  StateIdle,
	}
}

// Refresh loads the CSV source and rebuilds the catalog. It is re-entrant:
// a call that arrives while a load is already running joins that load and
// returns its outcome instead of fetching the source again.
func (s *CatalogService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if ch := s.inflight; ch != nil {
		s.mu.Unlock()
		select {
		case <-ch:
			return s.loadOutcome()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ch := make(chan struct{})
	s.inflight = ch
	s.state = StateLoading
	s.mu.Unlock()

	products, report, err := s.load(ctx)

	s.mu.Lock()
	s.inflight = nil
	if err != nil {
		s.state = StateFailed
		s.lastErr = err
	} else {
		s.state = StateReady
		s.lastErr = nil
		s.products = products
		s.report = report
		s.engine = NewFilterEngine(models.ToFilterProducts(products))
	}
	s.mu.Unlock()
	close(ch)

	if err != nil {
		zap.L().Error("Catalog refresh failed", zap.Error(err))
		return err
	}
	zap.L().Info("Catalog refreshed",
		zap.Int("products", report.TotalProducts),
		zap.Int("malformed_rows", report.MalformedRows),
	)
	return nil
}

func (s *CatalogService) load(ctx context.Context) ([]models.Product, models.IngestReport, error) {
	csvText, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, models.IngestReport{}, err
	}

	products, malformed := ParseCatalogCSV(csvText)
	if malformed > 0 {
		zap.L().Warn("CSV rows failed structural parsing", zap.Int("rows", malformed))
	}

	report := models.IngestReport{
		TotalProducts: len(products),
		MalformedRows: malformed,
		LoadedAt:      time.Now().UTC(),
	}
	return products, report, nil
}

func (s *CatalogService) loadOutcome() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateReady {
		return nil
	}
	if s.lastErr != nil {
		return s.lastErr
	}
	return ErrNotLoaded
}

// State returns the lifecycle state and the last load error, if any.
func (s *CatalogService) State() (LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.lastErr
}

// Report returns the ingestion health of the current snapshot.
func (s *CatalogService) Report() models.IngestReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// List returns a page of the catalog plus the pre-slice total and whether
// more products remain past the page.
func (s *CatalogService) List(ctx context.Context, offset, limit int) ([]models.Product, int, bool, error) {
	products, err := s.snapshot()
	if err != nil {
		return nil, 0, false, err
	}

	total := len(products)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return nil, 0, false, fmt.Errorf("limit must be positive")
	}

	end := offset + limit
	if offset >= total {
		return []models.Product{}, total, false, nil
	}
	if end > total {
		end = total
	}

	page := make([]models.Product, end-offset)
	copy(page, products[offset:end])
	return page, total, offset+limit < total, nil
}

// GetByID looks up one product by its snapshot id.
func (s *CatalogService) GetByID(ctx context.Context, id string) (models.Product, error) {
	products, err := s.snapshot()
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// Facets returns the filter vocabularies for the current snapshot.
func (s *CatalogService) Facets(ctx context.Context) (FacetOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return FacetOptions{}, ErrNotLoaded
	}
	return s.engine.Options(), nil
}

// Filter evaluates a filter state against the current snapshot.
func (s *CatalogService) Filter(ctx context.Context, input FilterInput) (FilterResult, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return FilterResult{}, ErrNotLoaded
	}
	return engine.Apply(input), nil
}

// Search does a fuzzy, accent- and case-insensitive match over product
// names and brands, best matches first.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]models.GridProduct, error) {
	products, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	needle := normalizeSearchText(query)
	if needle == "" {
		return []models.GridProduct{}, nil
	}

	type scored struct {
		product models.FilterProduct
		rank    int
	}
	var matches []scored
	for _, p := range products {
		haystack := normalizeSearchText(p.Name + " " + p.Brand)
		if rank := fuzzy.RankMatch(needle, haystack); rank >= 0 {
			matches = append(matches, scored{product: p.ToFilterProduct(), rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}
	results := make([]models.GridProduct, limit)
	for i := 0; i < limit; i++ {
		results[i] = matches[i].product.ToGridProduct()
	}
	return results, nil
}

func (s *CatalogService) snapshot() ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNotLoaded
	}
	return s.products, nil
}

// normalizeSearchText lowercases and strips diacritics so "crème" and
// "creme" match.
func normalizeSearchText(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

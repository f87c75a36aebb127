package controllers

import (
	"context"
	"time"

	"github.com/aramille1/olislab-product-catalog/models"
	"github.com/aramille1/olislab-product-catalog/services"
)

// Default configuration values
const (
	DefaultCacheTTL       = 10 * time.Minute
	DefaultContextTimeout = 30 * time.Second
)

// Pagination limits for the catalog listing.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ProductCache is the response cache the product controller writes
// through. Implementations must fail open: a cache outage degrades to
// uncached responses, never to errors.
type ProductCache interface {
	GetProductList(ctx context.Context, offset, limit int) (map[string]interface{}, bool)
	SetProductListAsync(offset, limit int, response map[string]interface{})
	Invalidate(ctx context.Context) error
}

// CatalogAPI defines the catalog operations the controllers depend on.
type CatalogAPI interface {
	Refresh(ctx context.Context) error
	List(ctx context.Context, offset, limit int) ([]models.Product, int, bool, error)
	GetByID(ctx context.Context, id string) (models.Product, error)
	Facets(ctx context.Context) (services.FacetOptions, error)
	Filter(ctx context.Context, input services.FilterInput) (services.FilterResult, error)
	Search(ctx context.Context, query string, limit int) ([]models.GridProduct, error)
	State() (services.LoadState, error)
	Report() models.IngestReport
}

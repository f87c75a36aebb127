package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aramille1/olislab-product-catalog/models"
	"github.com/aramille1/olislab-product-catalog/services"
)

// ProductController serves the catalog endpoints. Responses use the
// success/error envelope the storefront consumes.
type ProductController struct {
	catalog   CatalogAPI
	cache     ProductCache
	validator *RequestValidator
}

func NewProductController(catalog CatalogAPI, cache ProductCache, validator *RequestValidator) *ProductController {
	return &ProductController{
		catalog:   catalog,
		cache:     cache,
		validator: validator,
	}
}

// WarmCatalog refreshes the catalog and invalidates the response cache so
// pages cached by a previous snapshot (or a previous process, the version
// key outlives restarts) are never served against the new one.
func (pc *ProductController) WarmCatalog(ctx context.Context) error {
	if err := pc.catalog.Refresh(ctx); err != nil {
		return err
	}
	if err := pc.cache.Invalidate(ctx); err != nil {
		zap.L().Error("Failed to invalidate cache after refresh", zap.Error(err))
	}
	return nil
}

// GetProducts returns a catalog page: GET /api/products?limit&offset
func (pc *ProductController) GetProducts(c *gin.Context) {
	offset, limit, err := pc.validator.ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "data": []models.Product{}})
		return
	}

	ctx := c.Request.Context()

	if cached, ok := pc.cache.GetProductList(ctx, offset, limit); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, hasMore, err := pc.catalog.List(ctx, offset, limit)
	if err != nil {
		pc.failLoad(c, err)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    products,
		"pagination": map[string]interface{}{
			"offset":  offset,
			"limit":   limit,
			"total":   total,
			"hasMore": hasMore,
		},
	}

	pc.cache.SetProductListAsync(offset, limit, response)

	zap.L().Info("Products fetched",
		zap.Int("offset", offset),
		zap.Int("limit", limit),
		zap.Int("total", total),
	)
	c.JSON(http.StatusOK, response)
}

// GetProductByID returns a single product: GET /api/products/:id
func (pc *ProductController) GetProductByID(c *gin.Context) {
	pc.respondWithProduct(c, strings.TrimSpace(c.Param("id")))
}

// LookupProduct returns a single product from a JSON body: POST /api/products
func (pc *ProductController) LookupProduct(c *gin.Context) {
	req, err := pc.validator.ParseLookupRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	pc.respondWithProduct(c, req.ID)
}

func (pc *ProductController) respondWithProduct(c *gin.Context, id string) {
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Product ID is required"})
		return
	}

	product, err := pc.catalog.GetByID(c.Request.Context(), id)
	if errors.Is(err, services.ErrProductNotFound) {
		zap.L().Info("Product not found", zap.String("id", id))
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Product not found"})
		return
	}
	if err != nil {
		pc.failLoad(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// GetFacets returns the filter vocabularies: GET /api/products/facets
func (pc *ProductController) GetFacets(c *gin.Context) {
	facets, err := pc.catalog.Facets(c.Request.Context())
	if err != nil {
		pc.failLoad(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": facets})
}

// FilterProducts evaluates a filter state: POST /api/products/filter
func (pc *ProductController) FilterProducts(c *gin.Context) {
	req, err := pc.validator.ParseFilterRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := pc.catalog.Filter(c.Request.Context(), services.FilterInput{
		Filters:    req.Filters,
		Exclusions: req.Exclusions,
		Bundle:     req.Bundle,
		SortBy:     req.SortBy,
	})
	if err != nil {
		pc.failLoad(c, err)
		return
	}

	// A changed result resets the load-more window.
	displayCount := req.DisplayCount
	if result.Changed {
		displayCount = services.InitialDisplayCount
	}
	visible, hasMore := services.WindowSlice(models.ToGridProducts(result.Products), displayCount)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         visible,
		"displayCount": result.DisplayCount,
		"changed":      result.Changed,
		"hasMore":      hasMore,
	})
}

// SearchProducts does a fuzzy name/brand search: GET /api/products/search?q=
func (pc *ProductController) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Search query is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid limit"})
		return
	}

	results, err := pc.catalog.Search(c.Request.Context(), query, limit)
	if err != nil {
		pc.failLoad(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}

// RefreshCatalog reloads the CSV source: POST /api/catalog/refresh
func (pc *ProductController) RefreshCatalog(c *gin.Context) {
	if err := pc.WarmCatalog(c.Request.Context()); err != nil {
		zap.L().Error("Catalog refresh request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to load products", "data": []models.Product{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pc.catalog.Report()})
}

// HealthCheck reports service and ingestion health: GET /health
func (pc *ProductController) HealthCheck(c *gin.Context) {
	state, lastErr := pc.catalog.State()
	report := pc.catalog.Report()

	body := gin.H{
		"status": "OK",
		"catalog": gin.H{
			"state":          state,
			"total_products": report.TotalProducts,
			"malformed_rows": report.MalformedRows,
			"loaded_at":      report.LoadedAt,
		},
	}
	if lastErr != nil {
		body["catalog"].(gin.H)["last_error"] = lastErr.Error()
	}
	c.JSON(http.StatusOK, body)
}

// failLoad translates service errors into the storefront's failure
// envelope. A catalog that never loaded is unavailable, not broken.
func (pc *ProductController) failLoad(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrNotLoaded) {
		status = http.StatusServiceUnavailable
	}
	zap.L().Error("Catalog request failed", zap.Error(err))
	c.JSON(status, gin.H{"success": false, "error": "Failed to load products", "data": []models.Product{}})
}

package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/aramille1/olislab-product-catalog/services"
)

// LookupRequest is the body of the POST product lookup.
type LookupRequest struct {
	ID string `json:"id" validate:"required"`
}

// FilterRequest is the body of the filter evaluation endpoint.
type FilterRequest struct {
	Filters    []services.FilterToken `json:"filters"`
	Exclusions services.Exclusions    `json:"exclusions"`
	Bundle     *bool                  `json:"bundle"`
	SortBy     string                 `json:"sortBy" validate:"omitempty,oneof=price-low price-high"`
	// DisplayCount is the client's current load-more window; zero means
	// the initial window.
	DisplayCount int `json:"displayCount" validate:"gte=0"`
}

// BagItemRequest adds an item to the bag.
type BagItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// BagQuantityRequest sets an item's quantity; zero or less removes it.
type BagQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// RequestValidator handles all input validation.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// ParsePagination validates and parses offset/limit query parameters.
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	offsetStr := c.DefaultQuery("offset", "0")
	limitStr := c.DefaultQuery("limit", strconv.Itoa(DefaultLimit))

	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		return 0, 0, errors.New("invalid offset")
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return 0, 0, errors.New("invalid limit")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return offset, limit, nil
}

// ParseFilterRequest binds and validates the filter body, including facet
// names on qualified tokens.
func (rv *RequestValidator) ParseFilterRequest(c *gin.Context) (*FilterRequest, error) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("invalid filter body: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	for _, token := range req.Filters {
		if strings.TrimSpace(token.Value) == "" {
			return nil, errors.New("filter value must not be empty")
		}
		switch token.Facet {
		case "", services.FacetSkinType, services.FacetBrand, services.FacetSubcategory, services.FacetConcern:
		default:
			return nil, fmt.Errorf("unknown facet %q", token.Facet)
		}
	}

	return &req, nil
}

// ParseLookupRequest binds and validates the single-product lookup body.
func (rv *RequestValidator) ParseLookupRequest(c *gin.Context) (*LookupRequest, error) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.New("Product ID is required")
	}
	if err := rv.validate.Struct(&req); err != nil {
		return nil, errors.New("Product ID is required")
	}
	return &req, nil
}

// ParseBagItemRequest binds and validates an add-to-bag body.
func (rv *RequestValidator) ParseBagItemRequest(c *gin.Context) (*BagItemRequest, error) {
	var req BagItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.New("invalid payload")
	}
	if err := rv.validate.Struct(&req); err != nil {
		return nil, errors.New("product_id and a positive quantity are required")
	}
	return &req, nil
}

package models

import (
	"regexp"
	"strings"
)

// Product is the canonical record derived from one CSV row. IDs are
// positional (csv-<row>) and stable for a given CSV snapshot only.
type Product struct {
	ID                 string   `json:"id"`
	Brand              string   `json:"brand"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Size               string   `json:"size"`
	Price              float64  `json:"price"`
	Rating             string   `json:"rating"`
	Description        string   `json:"description"`
	Images             []string `json:"images"`
	Image              string   `json:"image"`
	WhyOliLovesIt      string   `json:"whyOliLovesIt"`
	HowToUse           string   `json:"howToUse"`
	Ingredients        []string `json:"ingredients"`
	SkinRecommendation string   `json:"skinRecommendation"`
	SkinTypes          []string `json:"skinTypes"`
	Subcategories      []string `json:"subcategories"`
	Concerns           []string `json:"concerns"`
	// Bundle has no CSV source column yet and is always false at ingestion.
	Bundle bool `json:"bundle"`
}

// FilterProduct is the projection the filter engine operates on.
type FilterProduct struct {
	ID            string   `json:"id"`
	Brand         string   `json:"brand"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Image         string   `json:"image"`
	SkinTypes     []string `json:"skinTypes"`
	Subcategories []string `json:"subcategories"`
	Concerns      []string `json:"concerns"`
	Bundle        bool     `json:"bundle"`
}

// GridProduct is the projection rendered by the product grid.
type GridProduct struct {
	ID    string  `json:"id"`
	Brand string  `json:"brand"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Slug  string  `json:"slug"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ToFilterProduct narrows a Product for filtering.
func (p Product) ToFilterProduct() FilterProduct {
	return FilterProduct{
		ID:            p.ID,
		Brand:         p.Brand,
		Name:          p.Name,
		Price:         p.Price,
		Image:         p.Image,
		SkinTypes:     p.SkinTypes,
		Subcategories: p.Subcategories,
		Concerns:      p.Concerns,
		Bundle:        p.Bundle,
	}
}

// ToGridProduct narrows a FilterProduct for grid display.
func (p FilterProduct) ToGridProduct() GridProduct {
	return GridProduct{
		ID:    p.ID,
		Brand: p.Brand,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
		Slug:  whitespaceRe.ReplaceAllString(strings.ToLower(p.Name), "-"),
	}
}

// ToFilterProducts converts a product slice in order.
func ToFilterProducts(products []Product) []FilterProduct {
	out := make([]FilterProduct, len(products))
	for i, p := range products {
		out[i] = p.ToFilterProduct()
	}
	return out
}

// ToGridProducts converts a filter-product slice in order.
func ToGridProducts(products []FilterProduct) []GridProduct {
	out := make([]GridProduct, len(products))
	for i, p := range products {
		out[i] = p.ToGridProduct()
	}
	return out
}

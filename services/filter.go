package services

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/aramille1/olislab-product-catalog/models"
)

// Facet is one filterable dimension of the catalog.
type Facet string

const (
	FacetSkinType    Facet = "skinType"
	FacetBrand       Facet = "brand"
	FacetSubcategory Facet = "subcategory"
	FacetConcern     Facet = "concern"
)

// classificationOrder fixes how bare labels resolve when a value appears in
// more than one facet vocabulary: first match wins.
var classificationOrder = []Facet{FacetSkinType, FacetBrand, FacetSubcategory, FacetConcern}

// Sort keys accepted by the engine.
const (
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// FilterToken is one active inclusion filter. Facet-qualified tokens are
// unambiguous; a token with an empty Facet is classified against the
// vocabularies in classificationOrder.
type FilterToken struct {
	Facet Facet  `json:"facet,omitempty"`
	Value string `json:"value"`
}

// Exclusions are the "Don't show me" block lists. Any single match drops a
// product regardless of inclusion filters.
type Exclusions struct {
	Brands        []string `json:"brands"`
	Subcategories []string `json:"subcategories"`
	Concerns      []string `json:"concerns"`
	SkinTypes     []string `json:"skinTypes"`
	Bundle        bool     `json:"bundle"`
}

func (e Exclusions) empty() bool {
	return len(e.Brands) == 0 && len(e.Subcategories) == 0 &&
		len(e.Concerns) == 0 && len(e.SkinTypes) == 0 && !e.Bundle
}

// FilterInput is the full filter state for one evaluation.
type FilterInput struct {
	Filters    []FilterToken `json:"filters"`
	Exclusions Exclusions    `json:"exclusions"`
	// Bundle is tri-state: nil imposes nothing, true keeps bundles only,
	// false keeps non-bundles only.
	Bundle *bool  `json:"bundle"`
	SortBy string `json:"sortBy"`
}

// FilterResult is the engine output for one evaluation.
type FilterResult struct {
	Products []models.FilterProduct `json:"products"`
	// DisplayCount is the badge number: the unfiltered total when no
	// filter or exclusion is active, otherwise the filtered count.
	DisplayCount int `json:"displayCount"`
	// Changed is false when the result is structurally identical to the
	// previous evaluation; consumers must then keep their pagination
	// window instead of resetting it.
	Changed bool `json:"changed"`
}

// FacetOptions are the filter vocabularies, deduplicated in first-seen
// order across the full product set.
type FacetOptions struct {
	SkinTypes     []string `json:"skinTypes"`
	Brands        []string `json:"brands"`
	Subcategories []string `json:"subcategories"`
	Concerns      []string `json:"concerns"`
}

// CollectFacetOptions scans every product once and builds the vocabulary
// for each facet.
func CollectFacetOptions(products []models.FilterProduct) FacetOptions {
	opts := FacetOptions{
		SkinTypes:     []string{},
		Brands:        []string{},
		Subcategories: []string{},
		Concerns:      []string{},
	}
	seenSkin := make(map[string]bool)
	seenBrand := make(map[string]bool)
	seenSub := make(map[string]bool)
	seenConcern := make(map[string]bool)

	for _, p := range products {
		for _, st := range p.SkinTypes {
			if !seenSkin[st] {
				seenSkin[st] = true
				opts.SkinTypes = append(opts.SkinTypes, st)
			}
		}
		if p.Brand != "" && !seenBrand[p.Brand] {
			seenBrand[p.Brand] = true
			opts.Brands = append(opts.Brands, p.Brand)
		}
		for _, sub := range p.Subcategories {
			if !seenSub[sub] {
				seenSub[sub] = true
				opts.Subcategories = append(opts.Subcategories, sub)
			}
		}
		for _, concern := range p.Concerns {
			if !seenConcern[concern] {
				seenConcern[concern] = true
				opts.Concerns = append(opts.Concerns, concern)
			}
		}
	}

	return opts
}

func (o FacetOptions) vocabulary(facet Facet) []string {
	switch facet {
	case FacetSkinType:
		return o.SkinTypes
	case FacetBrand:
		return o.Brands
	case FacetSubcategory:
		return o.Subcategories
	case FacetConcern:
		return o.Concerns
	}
	return nil
}

// FilterEngine computes the visible product subset for a filter state. It
// remembers its previous result so redundant downstream notifications can
// be suppressed.
type FilterEngine struct {
	mu       sync.Mutex
	products []models.FilterProduct
	options  FacetOptions
	prev     []models.FilterProduct
}

func NewFilterEngine(products []models.FilterProduct) *FilterEngine {
	return &FilterEngine{
		products: products,
		options:  CollectFacetOptions(products),
	}
}

// Options returns the facet vocabularies for the engine's product set.
func (e *FilterEngine) Options() FacetOptions {
	return e.options
}

// Classify resolves a bare label into a facet by case-insensitive
// membership in the vocabularies, in classificationOrder. The second
// return is false when the label matches no vocabulary.
func (e *FilterEngine) Classify(label string) (Facet, bool) {
	lowered := strings.ToLower(label)
	for _, facet := range classificationOrder {
		for _, value := range e.options.vocabulary(facet) {
			if strings.ToLower(value) == lowered {
				return facet, true
			}
		}
	}
	return "", false
}

// Apply evaluates the filter state: inclusion pass, exclusion pass, then
// sort. The evaluation is pure aside from the change-detection bookkeeping.
func (e *FilterEngine) Apply(input FilterInput) FilterResult {
	groups := e.classifyTokens(input.Filters)

	filtered := make([]models.FilterProduct, 0, len(e.products))
	for _, p := range e.products {
		if !matchesInclusion(p, groups, input.Bundle) {
			continue
		}
		if matchesExclusion(p, input.Exclusions) {
			continue
		}
		filtered = append(filtered, p)
	}

	sortProducts(filtered, input.SortBy)

	active := len(input.Filters) > 0 || input.Bundle != nil || !input.Exclusions.empty()
	displayCount := len(e.products)
	if active {
		displayCount = len(filtered)
	}

	e.mu.Lock()
	changed := !reflect.DeepEqual(filtered, e.prev)
	if changed {
		e.prev = filtered
	}
	e.mu.Unlock()

	return FilterResult{
		Products:     filtered,
		DisplayCount: displayCount,
		Changed:      changed,
	}
}

// classifyTokens buckets active labels per facet. Qualified tokens keep
// their facet; bare labels are classified, and labels outside every
// vocabulary impose no constraint.
func (e *FilterEngine) classifyTokens(tokens []FilterToken) map[Facet][]string {
	groups := make(map[Facet][]string)
	for _, token := range tokens {
		facet := token.Facet
		if facet == "" {
			classified, ok := e.Classify(token.Value)
			if !ok {
				continue
			}
			facet = classified
		}
		groups[facet] = append(groups[facet], strings.ToLower(token.Value))
	}
	return groups
}

// matchesInclusion is OR within a facet and AND across facets; facets with
// no active labels impose no constraint.
func matchesInclusion(p models.FilterProduct, groups map[Facet][]string, bundle *bool) bool {
	if bundle != nil && p.Bundle != *bundle {
		return false
	}
	if labels := groups[FacetBrand]; len(labels) > 0 && !containsFold(labels, p.Brand) {
		return false
	}
	if labels := groups[FacetSubcategory]; len(labels) > 0 && !anyFold(labels, p.Subcategories) {
		return false
	}
	if labels := groups[FacetConcern]; len(labels) > 0 && !anyFold(labels, p.Concerns) {
		return false
	}
	if labels := groups[FacetSkinType]; len(labels) > 0 && !anyFold(labels, p.SkinTypes) {
		return false
	}
	return true
}

// matchesExclusion reports whether any single block-list entry hits the
// product; exclusions are OR'd across all lists.
func matchesExclusion(p models.FilterProduct, ex Exclusions) bool {
	if ex.Bundle && p.Bundle {
		return true
	}
	if containsFold(lowerAll(ex.Brands), p.Brand) {
		return true
	}
	if anyFold(lowerAll(ex.Subcategories), p.Subcategories) {
		return true
	}
	if anyFold(lowerAll(ex.Concerns), p.Concerns) {
		return true
	}
	if anyFold(lowerAll(ex.SkinTypes), p.SkinTypes) {
		return true
	}
	return false
}

// sortProducts applies a stable price sort; unknown keys leave source
// order untouched.
func sortProducts(products []models.FilterProduct, sortBy string) {
	switch sortBy {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	}
}

// containsFold expects lowered needles.
func containsFold(lowered []string, value string) bool {
	v := strings.ToLower(value)
	for _, l := range lowered {
		if l == v {
			return true
		}
	}
	return false
}

// anyFold expects lowered needles and reports whether any product value
// matches any of them.
func anyFold(lowered []string, values []string) bool {
	for _, v := range values {
		if containsFold(lowered, v) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/aramille1/olislab-product-catalog/models"
)

// Ingestion turns raw CSV text into an ordered product sequence. Row order
// is the ordering key; ids are positional and stable per snapshot. Missing
// or malformed fields degrade to defaults field by field, never aborting
// the batch. Rows that fail structural CSV parsing are counted and skipped.

// Default field values used when a source column is missing or empty.
const (
	DefaultBrand       = "Brand name"
	DefaultName        = "Unknown Product"
	DefaultCategory    = "skincare"
	DefaultSubcategory = "product"
	DefaultSize        = "50ml"
	DefaultRating      = "0"

	maxIngredients = 10
)

var priceRe = regexp.MustCompile(`[0-9.]+`)

// ParseCatalogCSV parses header-keyed CSV text into products. The returned
// count is the number of rows discarded for structural parse errors; it is
// informational, not an error.
func ParseCatalogCSV(csvText string) ([]models.Product, int) {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		// No header row means no products; empty input is not an error.
		return []models.Product{}, 0
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	products := make([]models.Product, 0)
	malformed := 0

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				malformed++
				continue
			}
			break
		}

		row := recordToRow(header, record)
		if row == nil {
			continue // empty line
		}
		products = append(products, ConvertRow(row, len(products)))
	}

	return products, malformed
}

// recordToRow maps a CSV record onto trimmed header-keyed values,
// returning nil for all-empty lines.
func recordToRow(header, record []string) map[string]string {
	row := make(map[string]string, len(header))
	empty := true
	for i, name := range header {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		if value != "" {
			empty = false
		}
		row[name] = value
	}
	if empty {
		return nil
	}
	return row
}

// ConvertRow maps one CSV row onto the canonical Product. index is the
// 0-based position among parsed rows.
func ConvertRow(row map[string]string, index int) models.Product {
	skinTypes := splitTrim(row["Skin Types"])
	ingredients := splitTrim(row["Ingredients"])
	if len(ingredients) > maxIngredients {
		ingredients = ingredients[:maxIngredients]
	}

	images := ExtractImages(row["Images"])
	if len(images) == 0 {
		images = PlaceholderImages()
	}

	return models.Product{
		ID:            fmt.Sprintf("csv-%d", index+1),
		Brand:         parseBrand(row["Brand"]),
		Name:          defaultIfEmpty(row["Name"], DefaultName),
		Category:      defaultIfEmpty(row["Category"], DefaultCategory) + " • " + defaultIfEmpty(row["Sub Category"], DefaultSubcategory),
		Size:          DefaultSize, // not present in the CSV schema
		Price:         parsePrice(row["Price"]),
		Rating:        defaultIfEmpty(row["Rating/100"], DefaultRating) + "/100",
		Description:   row["Description"],
		Images:        images,
		Image:         images[0],
		WhyOliLovesIt: row["Why Oli Loves It"],
		HowToUse:      row["How To Use"],
		Ingredients:   ingredients,
		SkinRecommendation: fmt.Sprintf(
			"Perfect for %s skin types.", strings.ToLower(strings.Join(skinTypes, ", "))),
		SkinTypes:     skinTypes,
		Subcategories: splitTrim(row["Sub Category"]),
		Concerns:      []string{}, // no source column yet
		Bundle:        false,      // no source column yet
	}
}

// parsePrice extracts the first numeric run from a currency-prefixed string
// such as "€24.00". Anything unparseable is 0.
func parsePrice(raw string) float64 {
	match := priceRe.FindString(raw)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseBrand keeps the part before the first "(", which in the source data
// carries a raw URL.
func parseBrand(raw string) string {
	brand := strings.TrimSpace(strings.SplitN(raw, "(", 2)[0])
	if brand == "" {
		return DefaultBrand
	}
	return brand
}

func splitTrim(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultIfEmpty(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

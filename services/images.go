package services

import (
	"regexp"
	"strings"
)

// Image extraction pulls display URLs out of the messy free-text Images
// column. Two strategies run in order: the CDN-token strategy wins when it
// finds anything, otherwise the generic-path strategy is used. Both rewrite
// results onto the product CDN with a forced .avif extension.

const (
	// CDNBaseURL is the canonical image location served to clients.
	CDNBaseURL = "https://products.olislab.com/products/"
	// PlaceholderImage is substituted when a row yields no usable image.
	PlaceholderImage = "/follie.png"
	// MaxProductImages caps how many images one product keeps.
	MaxProductImages = 3
)

var (
	// Tokens that start with "Product%" and continue until whitespace,
	// comma or quote.
	cdnTokenRe = regexp.MustCompile(`Product%[^\s,"']+`)

	// Absolute URLs or paths ending in a known image extension, with an
	// optional query string.
	imagePathRe = regexp.MustCompile(`(?i)(?:https?://[^\s"'()]+|/?[A-Za-z0-9._/-]+)\.(?:png|jpe?g|gif|svg|webp)(?:\?[^\s"'()]*)?`)

	// Final extension plus optional query, for rewriting to .avif.
	extWithQueryRe = regexp.MustCompile(`\.[^.?#]+(\?.*)?$`)
	lastExtRe      = regexp.MustCompile(`\.[^.]+$`)
)

// ExtractImages returns up to MaxProductImages CDN URLs for a raw Images
// field. An empty result means neither strategy matched; the caller decides
// on the placeholder fallback.
func ExtractImages(input string) []string {
	urls := extractCDNTokenImages(input)
	if len(urls) == 0 {
		urls = extractPathImages(input)
	}
	if len(urls) > MaxProductImages {
		urls = urls[:MaxProductImages]
	}
	return urls
}

// extractCDNTokenImages handles "Product%..." tokens: the second
// slash-separated segment names the asset on the CDN.
func extractCDNTokenImages(input string) []string {
	if input == "" {
		return nil
	}

	var results []string
	seen := make(map[string]bool)

	for _, token := range cdnTokenRe.FindAllString(input, -1) {
		parts := strings.Split(token, "/")
		if len(parts) < 2 {
			continue
		}
		asset := parts[1]

		// Strip query/fragment.
		if i := strings.IndexAny(asset, "?#"); i >= 0 {
			asset = asset[:i]
		}
		if asset == "" {
			continue
		}

		// Force the .avif extension.
		if strings.Contains(asset, ".") {
			asset = lastExtRe.ReplaceAllString(asset, ".avif")
		} else {
			asset += ".avif"
		}

		url := CDNBaseURL + asset
		if !seen[url] {
			seen[url] = true
			results = append(results, url)
		}
	}

	return results
}

// extractPathImages is the fallback for plain image paths and URLs. The
// scheme and host (or the first path segment) are dropped, the extension is
// rewritten to .avif and any query string survives the rewrite.
func extractPathImages(input string) []string {
	if input == "" {
		return nil
	}

	var results []string
	seen := make(map[string]bool)

	for _, match := range imagePathRe.FindAllString(input, -1) {
		trimmed := strings.TrimSpace(match)

		// Drop the scheme so URLs normalize like paths.
		if i := strings.Index(trimmed, "://"); i >= 0 {
			trimmed = trimmed[i+3:]
		}
		trimmed = strings.TrimLeft(trimmed, "/")

		// Drop the leading segment (host or bucket folder) when present.
		if i := strings.Index(trimmed, "/"); i > 0 {
			trimmed = trimmed[i+1:]
		}
		if trimmed == "" {
			continue
		}

		trimmed = extWithQueryRe.ReplaceAllString(trimmed, ".avif$1")

		if !seen[trimmed] {
			seen[trimmed] = true
			results = append(results, CDNBaseURL+trimmed)
		}
	}

	return results
}

// PlaceholderImages returns the fallback image list for a product with no
// extractable images.
func PlaceholderImages() []string {
	return []string{PlaceholderImage, PlaceholderImage, PlaceholderImage}
}

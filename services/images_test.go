package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aramille1/olislab-product-catalog/services"
)

func TestExtractImagesCDNTokenStrategy(t *testing.T) {
	images := services.ExtractImages("Product%ABC/123.jpg, foo")

	assert.Equal(t, []string{"https://products.olislab.com/products/123.avif"}, images)
}

func TestExtractImagesCDNTokenWithoutExtension(t *testing.T) {
	images := services.ExtractImages("Product%ABC/hero")

	assert.Equal(t, []string{"https://products.olislab.com/products/hero.avif"}, images)
}

func TestExtractImagesCDNTokenStripsQuery(t *testing.T) {
	images := services.ExtractImages("Product%ABC/123.jpg?v=2#top")

	assert.Equal(t, []string{"https://products.olislab.com/products/123.avif"}, images)
}

func TestExtractImagesGenericPathStrategy(t *testing.T) {
	images := services.ExtractImages("/path/to/img.jpeg?x=1")

	assert.Equal(t, []string{"https://products.olislab.com/products/to/img.avif?x=1"}, images)
}

func TestExtractImagesGenericAbsoluteURL(t *testing.T) {
	images := services.ExtractImages("see https://cdn.example.com/assets/cream.png here")

	assert.Equal(t, []string{"https://products.olislab.com/products/assets/cream.avif"}, images)
}

func TestExtractImagesCDNTokensWinOverPaths(t *testing.T) {
	images := services.ExtractImages("Product%ABC/123.jpg plus /other/img.png")

	assert.Equal(t, []string{"https://products.olislab.com/products/123.avif"}, images)
}

func TestExtractImagesDeduplicatesAndCaps(t *testing.T) {
	input := "Product%A/1.jpg Product%B/2.jpg Product%C/1.jpg Product%D/3.jpg Product%E/4.jpg"

	images := services.ExtractImages(input)

	assert.Equal(t, []string{
		"https://products.olislab.com/products/1.avif",
		"https://products.olislab.com/products/2.avif",
		"https://products.olislab.com/products/3.avif",
	}, images)
}

func TestExtractImagesNoMatches(t *testing.T) {
	assert.Empty(t, services.ExtractImages(""))
	assert.Empty(t, services.ExtractImages("no images here"))
}

package parser

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetailExtractor(t *testing.T) *DetailExtractor {
	t.Helper()
	e, err := NewDetailExtractor("https://www.example.com",
		NewProductSelectors(nil), NewCategoryClassifier("Acme Studios"), zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestDetailExtract(t *testing.T) {
	html := `
	<div class="breadcrumb">Home > Acme Studios > Men > Knitwear</div>
	<h1>Wool Sweater</h1>
	<div class="description">Heavy rib knit in merino wool.</div>
	<div class="price">400 CZK</div>
	<div class="product-price">€16</div>
	<span class="sizes">S</span>
	<span class="sizes">M</span>
	<span class="sizes">L</span>
	<div class="availability">In Stock</div>
	<div class="sku">B60353-BZH</div>
	<div class="color">Charcoal</div>
	<div class="product-gallery">
		<img src="https://img.example.com/B60353-BZH_1.jpg" alt="worn">
		<img data-src="https://img.example.com/B60353-BZH_Y.jpg" alt="flat" class="gallery-item">
		<img src="https://img.example.com/arrow-left.svg">
	</div>`

	detail := newTestDetailExtractor(t).Extract(mustDoc(t, html), "400 CZK", "Listing Title")

	assert.Equal(t, "Wool Sweater", detail.Title, "page title beats listing fallback")
	assert.Equal(t, "Heavy rib knit in merino wool.", detail.Description)
	assert.Equal(t, "S, M, L", detail.SizeText)
	assert.Equal(t, "in stock", detail.Availability)
	assert.Equal(t, "B60353-BZH", detail.SKU)
	assert.Equal(t, "Charcoal", detail.Color)
	assert.Equal(t, "sweaters", detail.Category)
	assert.Equal(t, "400CZK,16EUR", detail.PriceText,
		"detail fragments ordered before the listing fallback, duplicates collapsed")

	require.Len(t, detail.ImageCandidates, 2, "chrome assets filtered out")
	assert.Equal(t, "https://img.example.com/B60353-BZH_1.jpg", detail.ImageCandidates[0].URL)
	assert.Equal(t, "https://img.example.com/B60353-BZH_Y.jpg", detail.ImageCandidates[1].URL)
	assert.Equal(t, "data-src", detail.ImageCandidates[1].SourceAttribute)
	assert.Equal(t, "flat", detail.ImageCandidates[1].AltText)
}

func TestDetailExtractDefaults(t *testing.T) {
	detail := newTestDetailExtractor(t).Extract(mustDoc(t, "<html><body></body></html>"), "", "Listing Title")

	assert.Equal(t, "Listing Title", detail.Title)
	assert.Equal(t, "unknown", detail.Availability)
	assert.Empty(t, detail.PriceText)
	assert.Empty(t, detail.ImageCandidates)
}

func TestDetailGatherImagesDedupes(t *testing.T) {
	html := `
	<div class="product-gallery">
		<img src="/media/A_Y.jpg">
	</div>
	<div class="swiper">
		<img src="https://www.example.com/media/A_Y.jpg">
		<img src="/media/A_2.jpg">
	</div>`

	detail := newTestDetailExtractor(t).Extract(mustDoc(t, html), "", "T")
	require.Len(t, detail.ImageCandidates, 2, "same image across galleries counted once")
	assert.Equal(t, "https://www.example.com/media/A_Y.jpg", detail.ImageCandidates[0].URL)
	assert.Equal(t, "https://www.example.com/media/A_2.jpg", detail.ImageCandidates[1].URL)
}

func TestEmbeddingDocument(t *testing.T) {
	tests := []struct {
		name     string
		detail   Detail
		expected string
	}{
		{
			name: "all fields labeled",
			detail: Detail{
				Title:       "Wool Sweater",
				Description: "Heavy rib knit.",
				PriceText:   "400CZK,16EUR",
				Category:    "sweaters",
				Color:       "Charcoal",
				SizeText:    "S, M",
				SKU:         "B60353",
			},
			expected: "Wool Sweater Heavy rib knit. Price: 400CZK,16EUR Category: sweaters Color: Charcoal Sizes: S, M SKU: B60353",
		},
		{
			name:     "empty fields omitted",
			detail:   Detail{Title: "Wool Sweater", Category: "sweaters"},
			expected: "Wool Sweater Category: sweaters",
		},
		{
			name:     "title only",
			detail:   Detail{Title: "Wool Sweater"},
			expected: "Wool Sweater",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.detail.EmbeddingDocument())
		})
	}
}

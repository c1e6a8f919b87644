package parser

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/stilmark/fashion-scraper/internal/models"
)

var externalIDPattern = regexp.MustCompile(`/([A-Z0-9-]+)\.html`)

// Attributes tried, in order, for lazily loaded images.
var lazyImageAttrs = []string{"data-src", "data-lazy-src", "data-original", "src"}

// ListingExtractor parses a category page into catalog entries.
type ListingExtractor struct {
	baseURL   *url.URL
	selectors *SelectorResolver
	log       zerolog.Logger
}

func NewListingExtractor(baseURL string, selectors *SelectorResolver, log zerolog.Logger) (*ListingExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &ListingExtractor{baseURL: base, selectors: selectors, log: log}, nil
}

// Extract walks every product tile on the page. Tiles with no resolvable
// title or detail link are expected noise and skipped silently. Entries are
// deduplicated by external id, first occurrence wins, order preserved.
func (e *ListingExtractor) Extract(doc *goquery.Document) []models.CatalogEntry {
	var entries []models.CatalogEntry
	seen := make(map[string]struct{})

	containers := doc.Find(e.selectors.Resolve("product_container"))
	e.log.Debug().Int("tiles", containers.Length()).Msg("found product containers")

	containers.Each(func(i int, tile *goquery.Selection) {
		entry, ok := e.extractTile(tile)
		if !ok {
			return
		}
		if _, dup := seen[entry.ExternalID]; dup {
			return
		}
		seen[entry.ExternalID] = struct{}{}
		entries = append(entries, entry)
	})

	return entries
}

func (e *ListingExtractor) extractTile(tile *goquery.Selection) (models.CatalogEntry, bool) {
	link, exists := tile.Find(e.selectors.Resolve("product_link")).First().Attr("href")
	if !exists || strings.TrimSpace(link) == "" {
		return models.CatalogEntry{}, false
	}
	detailURL := e.resolveURL(strings.TrimSpace(link))

	title := strings.TrimSpace(tile.Find(e.selectors.Resolve("product_title")).First().Text())
	if title == "" {
		title = e.titleFromDataAttr(tile)
	}
	if title == "" {
		return models.CatalogEntry{}, false
	}

	entry := models.CatalogEntry{
		ExternalID:       ExtractExternalID(detailURL),
		Title:            title,
		DetailURL:        detailURL,
		ListingPriceText: strings.TrimSpace(tile.Find(e.selectors.Resolve("product_price")).First().Text()),
	}

	if img := tile.Find(e.selectors.Resolve("product_image")).First(); img.Length() > 0 {
		if src, _, ok := resolveImageAttr(img); ok {
			entry.ThumbnailURL = e.resolveURL(src)
		}
	}

	return entry, true
}

// titleFromDataAttr recovers the title from structured data embedded as
// JSON in a tile attribute, the site's analytics payload.
func (e *ListingExtractor) titleFromDataAttr(tile *goquery.Selection) string {
	raw, exists := tile.Attr(e.selectors.Resolve("title_data_attr"))
	if !exists || raw == "" {
		return ""
	}

	var payload struct {
		ItemName string `json:"item_name"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.ItemName)
}

func (e *ListingExtractor) resolveURL(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return e.baseURL.ResolveReference(parsed).String()
}

// resolveImageAttr walks the lazy-load attribute chain. Data URIs and
// placeholder images are treated as absent so the chain continues.
func resolveImageAttr(img *goquery.Selection) (value, attr string, ok bool) {
	for _, name := range lazyImageAttrs {
		v, exists := img.Attr(name)
		if !exists {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" || strings.HasPrefix(v, "data:") || strings.Contains(strings.ToLower(v), "placeholder") {
			continue
		}
		return v, name, true
	}
	return "", "", false
}

// ExtractExternalID derives a stable product code from a detail-page URL.
func ExtractExternalID(detailURL string) string {
	if m := externalIDPattern.FindStringSubmatch(detailURL); m != nil {
		return m[1]
	}

	// Fallback: the URL path, slashes flattened.
	parsed, err := url.Parse(detailURL)
	if err != nil {
		return detailURL
	}
	return strings.ReplaceAll(strings.Trim(parsed.Path, "/"), "/", "-")
}

package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/stilmark/fashion-scraper/internal/models"
)

// Detail-page price elements scanned for currency fragments, in priority
// order. The listing price text is appended by the caller as the
// lowest-priority source.
var detailPriceSelectors = []string{
	".price",
	".product-price",
	`[data-testid*="price"]`,
	".product-tile__price",
}

// URL substrings that mark chrome assets rather than product photography.
var skipImageSubstrings = []string{"icon", "logo", "arrow", "svg"}

// Detail is everything extracted from one product page before image
// selection and embedding.
type Detail struct {
	Title           string
	Description     string
	SizeText        string
	Availability    string
	SKU             string
	Color           string
	Category        string
	PriceText       string
	ImageCandidates []models.ImageCandidate
}

// DetailExtractor parses product pages into Detail records.
type DetailExtractor struct {
	baseURL    *url.URL
	selectors  *SelectorResolver
	classifier *CategoryClassifier
	log        zerolog.Logger

	// Image gathering tries these selectors in order, deduplicating
	// across them by resolved absolute URL.
	imageSelectors []string
}

func NewDetailExtractor(baseURL string, selectors *SelectorResolver, classifier *CategoryClassifier, log zerolog.Logger) (*DetailExtractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	d := &DetailExtractor{
		baseURL:    base,
		selectors:  selectors,
		classifier: classifier,
		log:        log,
	}

	d.imageSelectors = []string{
		selectors.Resolve("images"),
		fmt.Sprintf(`img[src*="%s"]`, base.Hostname()),
		".product-gallery img",
		".product-images img",
		".gallery img",
		".swiper img",
		".carousel img",
		"img[data-src]",
	}

	return d, nil
}

// Extract pulls every field the detail page offers. Missing fields resolve
// to their zero value; only availability carries a non-empty default.
func (d *DetailExtractor) Extract(doc *goquery.Document, listingPriceText, listingTitle string) Detail {
	detail := Detail{
		Title:        d.text(doc, "title"),
		Description:  d.text(doc, "description"),
		SKU:          d.text(doc, "sku"),
		Color:        d.text(doc, "color"),
		Availability: strings.ToLower(d.text(doc, "availability")),
	}

	if detail.Title == "" {
		detail.Title = listingTitle
	}
	if detail.Availability == "" {
		detail.Availability = "unknown"
	}

	detail.SizeText = strings.Join(d.texts(doc, "sizes"), ", ")
	detail.Category = d.classifier.Classify(d.text(doc, "category"))
	detail.PriceText = d.extractPrice(doc, listingPriceText)
	detail.ImageCandidates = d.gatherImages(doc)

	return detail
}

// EmbeddingDocument assembles the plain-text document fed to the text
// encoder, labeled parts space-joined with empty fields omitted.
func (det *Detail) EmbeddingDocument() string {
	parts := []string{det.Title}
	if det.Description != "" {
		parts = append(parts, det.Description)
	}
	if det.PriceText != "" {
		parts = append(parts, "Price: "+det.PriceText)
	}
	if det.Category != "" {
		parts = append(parts, "Category: "+det.Category)
	}
	if det.Color != "" {
		parts = append(parts, "Color: "+det.Color)
	}
	if det.SizeText != "" {
		parts = append(parts, "Sizes: "+det.SizeText)
	}
	if det.SKU != "" {
		parts = append(parts, "SKU: "+det.SKU)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (d *DetailExtractor) text(doc *goquery.Document, field string) string {
	sel := d.selectors.Resolve(field)
	if sel == "" {
		return ""
	}
	return strings.TrimSpace(doc.Find(sel).First().Text())
}

func (d *DetailExtractor) texts(doc *goquery.Document, field string) []string {
	sel := d.selectors.Resolve(field)
	if sel == "" {
		return nil
	}
	var out []string
	doc.Find(sel).Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func (d *DetailExtractor) extractPrice(doc *goquery.Document, listingPriceText string) string {
	var fragments []string
	for _, sel := range detailPriceSelectors {
		doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			t := strings.TrimSpace(s.Text())
			if t != "" && len(t) <= 50 {
				fragments = append(fragments, t)
			}
		})
	}
	if listingPriceText != "" {
		fragments = append(fragments, listingPriceText)
	}
	return NormalizePrice(fragments)
}

// gatherImages collects candidates across the prioritized selector list,
// deduplicating by resolved absolute URL and discarding chrome assets.
func (d *DetailExtractor) gatherImages(doc *goquery.Document) []models.ImageCandidate {
	var candidates []models.ImageCandidate
	seen := make(map[string]struct{})

	for _, sel := range d.imageSelectors {
		if sel == "" {
			continue
		}
		doc.Find(sel).Each(func(i int, img *goquery.Selection) {
			src, attr, ok := resolveImageAttr(img)
			if !ok {
				return
			}
			abs := d.resolveURL(src)
			if _, dup := seen[abs]; dup {
				return
			}
			lower := strings.ToLower(abs)
			for _, skip := range skipImageSubstrings {
				if strings.Contains(lower, skip) {
					return
				}
			}
			seen[abs] = struct{}{}

			alt, _ := img.Attr("alt")
			title, _ := img.Attr("title")
			classes, _ := img.Attr("class")
			candidates = append(candidates, models.ImageCandidate{
				URL:             abs,
				AltText:         alt,
				TitleText:       title,
				CSSClasses:      classes,
				SourceAttribute: attr,
			})
		})
	}

	return candidates
}

func (d *DetailExtractor) resolveURL(ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.baseURL.ResolveReference(parsed).String()
}

package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/stilmark/fashion-scraper/internal/config"
	"github.com/stilmark/fashion-scraper/internal/embeddings"
	"github.com/stilmark/fashion-scraper/internal/fetch"
	"github.com/stilmark/fashion-scraper/internal/models"
	"github.com/stilmark/fashion-scraper/internal/parser"
)

// SiteScraper walks one site's configured categories, producing the
// complete normalized catalog. Execution is strictly sequential: one
// detail page is fetched, parsed and embedded at a time.
type SiteScraper struct {
	site     *config.Site
	baseURL  *url.URL
	fetcher  fetch.Fetcher
	listing  *parser.ListingExtractor
	detail   *parser.DetailExtractor
	embedder embeddings.Generator
	policy   parser.ImagePolicy
	log      zerolog.Logger
	stats    *Stats
}

func NewSiteScraper(site *config.Site, fetcher fetch.Fetcher, embedder embeddings.Generator, stats *Stats, log zerolog.Logger) (*SiteScraper, error) {
	classifier := parser.NewCategoryClassifier(site.Brand)

	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url for %s: %w", site.Source, err)
	}

	listing, err := parser.NewListingExtractor(site.BaseURL, parser.NewListingSelectors(site.Selectors), log)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url for %s: %w", site.Source, err)
	}
	detail, err := parser.NewDetailExtractor(site.BaseURL, parser.NewProductSelectors(site.ProductSelectors), classifier, log)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url for %s: %w", site.Source, err)
	}

	return &SiteScraper{
		site:     site,
		baseURL:  base,
		fetcher:  fetcher,
		listing:  listing,
		detail:   detail,
		embedder: embedder,
		policy:   parser.ImagePolicy(site.ImagePolicy),
		log:      log.With().Str("source", site.Source).Logger(),
		stats:    stats,
	}, nil
}

// Run scrapes every configured category and returns the full catalog.
// Fetch failures and policy rejections degrade to skipped products; only
// a context cancellation aborts the run.
func (s *SiteScraper) Run(ctx context.Context) ([]models.Product, error) {
	var all []models.Product

	for _, cat := range s.site.Categories {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		products, err := s.scrapeCategory(ctx, cat)
		if err != nil {
			return all, err
		}
		all = append(all, products...)
	}

	s.log.Info().Int("products", len(all)).Msg("site scrape finished")
	return all, nil
}

func (s *SiteScraper) scrapeCategory(ctx context.Context, cat config.Category) ([]models.Product, error) {
	log := s.log.With().Str("category", cat.Name).Logger()

	gender := cat.Gender
	if gender == "" {
		gender = parser.ClassifyGender(cat.Name)
	}
	categoryHint := parser.MapCategory(cat.Name)

	doc, err := s.fetcher.Fetch(ctx, s.categoryURL(cat))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Error().Err(err).Msg("failed to load category page")
		return nil, nil
	}

	entries := s.listing.Extract(doc)
	log.Info().Int("entries", len(entries)).Msg("extracted catalog entries")

	var products []models.Product
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return products, ctx.Err()
		default:
		}

		s.stats.Attempted.Add(1)
		result := s.ScrapeDetail(ctx, entry, gender, categoryHint)

		switch result.Outcome {
		case OutcomeOK:
			s.stats.Scraped.Add(1)
			products = append(products, result.Product)
		case OutcomeDropped:
			s.stats.Dropped.Add(1)
			log.Warn().Err(result.Reason).Str("url", entry.DetailURL).Msg("product dropped")
		case OutcomeFailed:
			s.stats.Skipped.Add(1)
			log.Error().Err(result.Reason).Str("url", entry.DetailURL).Msg("product extraction failed")
		}
	}

	log.Info().Int("products", len(products)).Msg("category scrape finished")
	return products, nil
}

// categoryURL resolves a possibly relative category URL against the
// site's base URL.
func (s *SiteScraper) categoryURL(cat config.Category) string {
	ref, err := url.Parse(cat.URL)
	if err != nil {
		return cat.URL
	}
	return s.baseURL.ResolveReference(ref).String()
}

// ScrapeDetail produces the normalized product for one catalog entry.
func (s *SiteScraper) ScrapeDetail(ctx context.Context, entry models.CatalogEntry, gender, categoryHint string) Result {
	doc, err := s.fetcher.Fetch(ctx, entry.DetailURL)
	if err != nil {
		return Dropped(fmt.Errorf("%w: %v", ErrFetchFailed, err))
	}

	detail := s.detail.Extract(doc, entry.ListingPriceText, entry.Title)
	if detail.Title == "" {
		return Dropped(ErrNoTitle)
	}

	candidates := make([]string, 0, len(detail.ImageCandidates))
	for _, c := range detail.ImageCandidates {
		candidates = append(candidates, c.URL)
	}

	canonical, rest, ok := parser.SelectCanonical(candidates, s.policy)
	if !ok {
		return Dropped(ErrNoCanonicalImage)
	}

	product := models.Product{
		Source:            s.site.Source,
		ExternalID:        entry.ExternalID,
		DetailURL:         entry.DetailURL,
		CanonicalImageURL: canonical,
		AdditionalImages:  rest,
		Title:             detail.Title,
		Description:       detail.Description,
		PriceText:         detail.PriceText,
		CurrencyDefault:   s.site.Currency,
		Gender:            gender,
		Category:          detail.Category,
		SizeText:          detail.SizeText,
		Availability:      detail.Availability,
		SKU:               detail.SKU,
		Country:           s.site.Country,
		SecondHand:        s.site.SecondHand,
		Brand:             s.site.Brand,
		MerchantName:      s.site.MerchantName,
	}

	if product.Category == "" {
		product.Category = categoryHint
	}
	if detail.Color != "" {
		product.Tags = []string{detail.Color}
	}

	product.ImageEmbedding = s.embedder.EmbedImage(ctx, canonical)
	if docText := detail.EmbeddingDocument(); docText != "" {
		product.TextEmbedding = s.embedder.EmbedText(ctx, docText)
	}

	return Ok(product)
}

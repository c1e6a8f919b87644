package models

// CatalogEntry is the raw tile record produced by the listing extractor.
// It lives only long enough to drive the detail-page scrape.
type CatalogEntry struct {
	ExternalID       string `json:"external_id"`
	Title            string `json:"title"`
	DetailURL        string `json:"detail_url"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	ListingPriceText string `json:"listing_price_text,omitempty"`
}

// ImageCandidate is a single image found on a detail page before the
// canonical image is chosen. Discarded once selection has run.
type ImageCandidate struct {
	URL             string
	AltText         string
	TitleText       string
	CSSClasses      string
	SourceAttribute string
}

// Product is the durable unit handed to the sync engine. (source,
// external_id) or (source, detail_url) uniquely identifies it, depending
// on the deployment's identity key setting.
type Product struct {
	Source            string    `json:"source"`
	ExternalID        string    `json:"external_id"`
	DetailURL         string    `json:"product_url"`
	CanonicalImageURL string    `json:"image_url"`
	AdditionalImages  []string  `json:"additional_images,omitempty"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	PriceText         string    `json:"price,omitempty"`
	CurrencyDefault   string    `json:"currency"`
	Gender            string    `json:"gender,omitempty"`
	Category          string    `json:"category,omitempty"`
	SizeText          string    `json:"size,omitempty"`
	Availability      string    `json:"availability"`
	SKU               string    `json:"sku,omitempty"`
	Tags              []string  `json:"tags,omitempty"`
	ImageEmbedding    []float32 `json:"image_embedding,omitempty"`
	TextEmbedding     []float32 `json:"text_embedding,omitempty"`
	Country           string    `json:"country"`
	SecondHand        bool      `json:"second_hand"`
	Brand             string    `json:"brand"`
	MerchantName      string    `json:"merchant_name"`
}

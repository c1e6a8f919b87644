package models

import (
	"encoding/json"
)

// Row is the storage shape of a product. Optional fields are pointers so
// the store writes SQL NULL instead of empty strings.
type Row struct {
	ID               string    `json:"id"`
	Source           string    `json:"source"`
	ExternalID       string    `json:"external_id"`
	ProductURL       string    `json:"product_url"`
	ImageURL         string    `json:"image_url"`
	Brand            string    `json:"brand"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Category         *string   `json:"category,omitempty"`
	Gender           *string   `json:"gender,omitempty"`
	Size             *string   `json:"size,omitempty"`
	Availability     string    `json:"availability"`
	SKU              *string   `json:"sku,omitempty"`
	Price            *string   `json:"price,omitempty"`
	AdditionalImages *string   `json:"additional_images,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	ImageEmbedding   []float32 `json:"image_embedding,omitempty"`
	TextEmbedding    []float32 `json:"text_embedding,omitempty"`
	Metadata         *string   `json:"metadata,omitempty"`
}

// RowMetadata is the serialized metadata column.
type RowMetadata struct {
	Source           string `json:"source"`
	Country          string `json:"country"`
	OriginalCurrency string `json:"original_currency"`
	MerchantName     string `json:"merchant_name,omitempty"`
	SecondHand       bool   `json:"second_hand"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToRow converts a product to its storage shape. The id is supplied by the
// sync engine, which owns identity derivation.
func (p *Product) ToRow(id string) (Row, error) {
	row := Row{
		ID:             id,
		Source:         p.Source,
		ExternalID:     p.ExternalID,
		ProductURL:     p.DetailURL,
		ImageURL:       p.CanonicalImageURL,
		Brand:          p.Brand,
		Title:          p.Title,
		Description:    optional(p.Description),
		Category:       optional(p.Category),
		Gender:         optional(p.Gender),
		Size:           optional(p.SizeText),
		Availability:   p.Availability,
		SKU:            optional(p.SKU),
		Price:          optional(p.PriceText),
		Tags:           p.Tags,
		ImageEmbedding: p.ImageEmbedding,
		TextEmbedding:  p.TextEmbedding,
	}

	if len(p.AdditionalImages) > 0 {
		b, err := json.Marshal(p.AdditionalImages)
		if err != nil {
			return Row{}, err
		}
		row.AdditionalImages = optional(string(b))
	}

	meta, err := json.Marshal(RowMetadata{
		Source:           p.Source,
		Country:          p.Country,
		OriginalCurrency: p.CurrencyDefault,
		MerchantName:     p.MerchantName,
		SecondHand:       p.SecondHand,
	})
	if err != nil {
		return Row{}, err
	}
	row.Metadata = optional(string(meta))

	return row, nil
}

// ProductFromRow reverses ToRow as far as the stored columns allow.
func ProductFromRow(r Row) (Product, error) {
	p := Product{
		Source:            r.Source,
		ExternalID:        r.ExternalID,
		DetailURL:         r.ProductURL,
		CanonicalImageURL: r.ImageURL,
		Brand:             r.Brand,
		Title:             r.Title,
		Description:       deref(r.Description),
		Category:          deref(r.Category),
		Gender:            deref(r.Gender),
		SizeText:          deref(r.Size),
		Availability:      r.Availability,
		SKU:               deref(r.SKU),
		PriceText:         deref(r.Price),
		Tags:              r.Tags,
		ImageEmbedding:    r.ImageEmbedding,
		TextEmbedding:     r.TextEmbedding,
	}

	if r.AdditionalImages != nil {
		if err := json.Unmarshal([]byte(*r.AdditionalImages), &p.AdditionalImages); err != nil {
			return Product{}, err
		}
	}
	if r.Metadata != nil {
		var meta RowMetadata
		if err := json.Unmarshal([]byte(*r.Metadata), &meta); err != nil {
			return Product{}, err
		}
		p.Country = meta.Country
		p.CurrencyDefault = meta.OriginalCurrency
		p.MerchantName = meta.MerchantName
		p.SecondHand = meta.SecondHand
	}

	return p, nil
}

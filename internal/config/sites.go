package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Identity key choices for the persistence uniqueness constraint.
const (
	IdentityExternalID = "external_id"
	IdentityDetailURL  = "detail_url"
)

// Canonical-image selection policies.
const (
	ImagePolicyStrict     = "strict"
	ImagePolicyPermissive = "permissive"
)

// Site is the typed definition of one catalog to harvest. Unknown keys in
// the YAML are rejected; missing keys resolve to documented defaults.
type Site struct {
	BaseURL      string  `yaml:"base_url"`
	Source       string  `yaml:"source"`
	MerchantName string  `yaml:"merchant_name"`
	Brand        string  `yaml:"brand"`
	Currency     string  `yaml:"currency"`
	Country      string  `yaml:"country"`
	SecondHand   bool    `yaml:"second_hand"`
	DelaySeconds float64 `yaml:"delay_between_requests"`
	// MaxPages is accepted for compatibility with existing sites files.
	// Pagination is driven entirely by the configured category URLs, so
	// the scraper never reads it.
	MaxPages         int               `yaml:"max_pages"`
	IdentityKey      string            `yaml:"identity_key"`
	ImagePolicy      string            `yaml:"image_policy"`
	Categories       []Category        `yaml:"categories"`
	Selectors        map[string]string `yaml:"selectors"`
	ProductSelectors map[string]string `yaml:"product_selectors"`
}

// Category is one listing page to scrape. Gender, when set, overrides the
// gender inferred from the category name.
type Category struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Gender string `yaml:"gender"`
}

// Delay returns the configured inter-request delay.
func (s *Site) Delay() time.Duration {
	return time.Duration(s.DelaySeconds * float64(time.Second))
}

// LoadSites reads and validates the sites file. Every site comes back with
// defaults applied, keyed by its name in the file.
func LoadSites(path string) (map[string]*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites file: %w", err)
	}

	var raw map[string]*Site
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse sites file: %w", err)
	}

	for name, site := range raw {
		if site == nil {
			return nil, fmt.Errorf("site %q: empty definition", name)
		}
		if err := site.applyDefaults(name); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
	}

	return raw, nil
}

func (s *Site) applyDefaults(name string) error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if _, err := url.Parse(s.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if len(s.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	for i, cat := range s.Categories {
		if cat.URL == "" {
			return fmt.Errorf("category %d: url is required", i)
		}
		switch cat.Gender {
		case "", "men", "women":
		default:
			return fmt.Errorf("category %d: gender must be men or women", i)
		}
	}

	if s.Source == "" {
		s.Source = name
	}
	if s.Currency == "" {
		s.Currency = "EUR"
	}
	if s.Country == "" {
		s.Country = "eu"
	}
	if s.DelaySeconds == 0 {
		s.DelaySeconds = 1
	}
	if s.MaxPages == 0 {
		s.MaxPages = 50
	}

	switch s.IdentityKey {
	case "":
		s.IdentityKey = IdentityExternalID
	case IdentityExternalID, IdentityDetailURL:
	default:
		return fmt.Errorf("identity_key must be %q or %q", IdentityExternalID, IdentityDetailURL)
	}

	switch s.ImagePolicy {
	case "":
		s.ImagePolicy = ImagePolicyStrict
	case ImagePolicyStrict, ImagePolicyPermissive:
	default:
		return fmt.Errorf("image_policy must be %q or %q", ImagePolicyStrict, ImagePolicyPermissive)
	}

	if s.Selectors == nil {
		s.Selectors = map[string]string{}
	}
	if s.ProductSelectors == nil {
		s.ProductSelectors = map[string]string{}
	}

	return nil
}

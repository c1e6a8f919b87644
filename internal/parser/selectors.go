package parser

// Built-in selector defaults. A site config only needs to list the
// selectors that differ from these.
var listingDefaults = map[string]string{
	"product_container": ".product-tile",
	"product_link":      "a",
	"product_title":     ".product-tile__name",
	"product_price":     ".price",
	"product_image":     "img",
	"title_data_attr":   "data-ga4-item",
}

var productDefaults = map[string]string{
	"title":        `h1, .product-title, [data-testid*="product-title"]`,
	"description":  ".description",
	"sizes":        ".sizes",
	"availability": ".availability",
	"sku":          ".sku",
	"category":     ".breadcrumb",
	"color":        ".color",
	"images":       ".product-gallery img",
}

// SelectorResolver maps logical field names to CSS selectors, falling back
// to the built-in defaults when the configuration omits a field.
type SelectorResolver struct {
	configured map[string]string
	defaults   map[string]string
}

func NewListingSelectors(configured map[string]string) *SelectorResolver {
	return &SelectorResolver{configured: configured, defaults: listingDefaults}
}

func NewProductSelectors(configured map[string]string) *SelectorResolver {
	return &SelectorResolver{configured: configured, defaults: productDefaults}
}

// Resolve returns the configured selector for a field, or its default.
// Unknown fields with no configured value resolve to "".
func (r *SelectorResolver) Resolve(field string) string {
	if r.configured != nil {
		if sel, ok := r.configured[field]; ok && sel != "" {
			return sel
		}
	}
	return r.defaults[field]
}

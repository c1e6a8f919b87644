package parser

import (
	"regexp"
	"strings"
)

var breadcrumbSplit = regexp.MustCompile(`[>/]`)

// Keyword table mapping breadcrumb text to the closed taxonomy. Ordered by
// specificity: knitwear before outerwear, outerwear before footwear.
var categoryKeywords = []struct {
	keywords []string
	category string
}{
	{[]string{"sweater", "knit"}, "sweaters"},
	{[]string{"hoodie", "hoody"}, "hoodies"},
	{[]string{"jacket", "coat"}, "jackets"},
	{[]string{"shoe", "boot", "sneaker", "footwear"}, "footwear"},
	{[]string{"bag"}, "bags"},
	{[]string{"scarf", "accessor", "hat", "belt"}, "accessories"},
}

// CategoryClassifier maps free-text breadcrumb and category strings onto
// the closed taxonomy. The brand name counts as navigation boilerplate.
type CategoryClassifier struct {
	boilerplate map[string]struct{}
}

func NewCategoryClassifier(brand string) *CategoryClassifier {
	boilerplate := map[string]struct{}{"home": {}}
	if brand != "" {
		boilerplate[strings.ToLower(brand)] = struct{}{}
	}
	return &CategoryClassifier{boilerplate: boilerplate}
}

// Classify parses breadcrumb text, scanning segments from the end so the
// most specific one is considered first. Segments of two characters or
// fewer and navigation boilerplate are skipped. The first qualifying
// segment is mapped through the keyword table, falling back to its raw
// text when no keyword matches.
func (c *CategoryClassifier) Classify(breadcrumb string) string {
	if breadcrumb == "" {
		return ""
	}

	segments := breadcrumbSplit.Split(breadcrumb, -1)
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if len(segment) <= 2 {
			continue
		}
		if _, skip := c.boilerplate[strings.ToLower(segment)]; skip {
			continue
		}
		if mapped := MapCategory(segment); mapped != "" {
			return mapped
		}
		return segment
	}

	return ""
}

// MapCategory maps a single category name through the keyword table.
// Returns "" when nothing matches.
func MapCategory(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return ""
}

// ClassifyGender detects gender from a category name. "women" is checked
// first because it contains "men" as a substring.
func ClassifyGender(name string) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "women") {
		return "women"
	}
	if strings.Contains(lower, "men") {
		return "men"
	}
	return ""
}

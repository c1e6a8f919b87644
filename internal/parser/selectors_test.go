package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectorResolver(t *testing.T) {
	resolver := NewListingSelectors(map[string]string{
		"product_container": ".tile",
		"product_title":     "",
	})

	tests := []struct {
		name     string
		field    string
		expected string
	}{
		{
			name:     "configured value wins over the default",
			field:    "product_container",
			expected: ".tile",
		},
		{
			name:     "empty configured value falls back to the default",
			field:    "product_title",
			expected: ".product-tile__name",
		},
		{
			name:     "unconfigured field resolves to its default",
			field:    "product_link",
			expected: "a",
		},
		{
			name:     "unknown field resolves to empty",
			field:    "no_such_field",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolver.Resolve(tt.field))
		})
	}
}

func TestSelectorResolverNilConfig(t *testing.T) {
	assert.Equal(t, ".breadcrumb", NewProductSelectors(nil).Resolve("category"))
	assert.Equal(t, "", NewProductSelectors(nil).Resolve("no_such_field"))
}

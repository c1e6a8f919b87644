package parser

import "regexp"

// The site marks ghost-mannequin/product-flat shots with a single-letter
// suffix before the extension, e.g. B60353-BZH_Y.jpg.
var productOnlyPattern = regexp.MustCompile(`_[A-Za-z]\.jpg`)

// ImagePolicy controls what happens when no product-only image exists
// among the candidates.
type ImagePolicy string

const (
	// ImagePolicyStrict rejects the product outright. Worn-on-model shots
	// degrade visual-search embedding quality, so no verified product-only
	// image means the product is unusable downstream.
	ImagePolicyStrict ImagePolicy = "strict"
	// ImagePolicyPermissive falls back to the second candidate, or the
	// first when only one exists.
	ImagePolicyPermissive ImagePolicy = "permissive"
)

// SelectCanonical picks the single image that represents the product. The
// candidates must already be deduplicated and in discovery order. When ok
// is false the caller must drop the product. The rest slice preserves the
// original relative order with the canonical removed.
func SelectCanonical(candidates []string, policy ImagePolicy) (canonical string, rest []string, ok bool) {
	if len(candidates) == 0 {
		return "", nil, false
	}

	for _, u := range candidates {
		if productOnlyPattern.MatchString(u) {
			canonical = u
			break
		}
	}

	if canonical == "" {
		if policy != ImagePolicyPermissive {
			return "", nil, false
		}
		if len(candidates) > 1 {
			canonical = candidates[1]
		} else {
			canonical = candidates[0]
		}
	}

	rest = make([]string, 0, len(candidates)-1)
	for _, u := range candidates {
		if u != canonical {
			rest = append(rest, u)
		}
	}

	return canonical, rest, true
}

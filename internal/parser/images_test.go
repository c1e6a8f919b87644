package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectCanonical(t *testing.T) {
	tests := []struct {
		name          string
		candidates    []string
		policy        ImagePolicy
		wantCanonical string
		wantRest      []string
		wantOK        bool
	}{
		{
			name: "product-only shot wins over model shots",
			candidates: []string{
				"https://img.example.com/B60353-BZH_1.jpg",
				"https://img.example.com/B60353-BZH_Y.jpg",
				"https://img.example.com/B60353-BZH_2.jpg",
			},
			policy:        ImagePolicyStrict,
			wantCanonical: "https://img.example.com/B60353-BZH_Y.jpg",
			wantRest: []string{
				"https://img.example.com/B60353-BZH_1.jpg",
				"https://img.example.com/B60353-BZH_2.jpg",
			},
			wantOK: true,
		},
		{
			name: "first matching suffix wins",
			candidates: []string{
				"https://img.example.com/A_B.jpg",
				"https://img.example.com/A_Y.jpg",
			},
			policy:        ImagePolicyStrict,
			wantCanonical: "https://img.example.com/A_B.jpg",
			wantRest:      []string{"https://img.example.com/A_Y.jpg"},
			wantOK:        true,
		},
		{
			name: "strict policy drops product without product-only shot",
			candidates: []string{
				"https://img.example.com/look_01.jpg",
				"https://img.example.com/look_02.jpg",
			},
			policy: ImagePolicyStrict,
			wantOK: false,
		},
		{
			name: "permissive policy falls back to second candidate",
			candidates: []string{
				"https://img.example.com/look_01.jpg",
				"https://img.example.com/look_02.jpg",
				"https://img.example.com/look_03.jpg",
			},
			policy:        ImagePolicyPermissive,
			wantCanonical: "https://img.example.com/look_02.jpg",
			wantRest: []string{
				"https://img.example.com/look_01.jpg",
				"https://img.example.com/look_03.jpg",
			},
			wantOK: true,
		},
		{
			name:          "permissive policy with a single candidate uses it",
			candidates:    []string{"https://img.example.com/only_10.jpg"},
			policy:        ImagePolicyPermissive,
			wantCanonical: "https://img.example.com/only_10.jpg",
			wantRest:      []string{},
			wantOK:        true,
		},
		{
			name:   "no candidates",
			policy: ImagePolicyPermissive,
			wantOK: false,
		},
		{
			name: "multi digit suffix is not product-only",
			candidates: []string{
				"https://img.example.com/A_10.jpg",
			},
			policy: ImagePolicyStrict,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, rest, ok := SelectCanonical(tt.candidates, tt.policy)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantCanonical, canonical)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"running", "runn"},
		{"studies", "study"},
		{"technologies", "technology"},
		{"organization", "organize"},
		{"quickly", "quick"},
		{"walked", "walk"},
		{"classes", "class"},
		// Short tokens are left alone.
		{"cats", "cats"},
		{"go", "go"},
		// "ss" is not a plural.
		{"address", "address"},
		// No matching suffix.
		{"graph", "graph"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, Stem(tt.token))
		})
	}
}

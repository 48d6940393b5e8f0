package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestIsWhitelisted(t *testing.T) {
	c := NewChecker([]string{" Example.com ", "", "trusted.org", "example.com"}, zaptest.NewLogger(t))

	tests := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"ALICE@EXAMPLE.COM", true},
		{"<bob@trusted.org>", true},
		{"carol@sub.example.com", false},
		{"dave@other.net", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"eve@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsWhitelisted(tt.from))
		})
	}
}

func TestEmptyChecker(t *testing.T) {
	assert.False(t, NewChecker(nil, nil).IsWhitelisted("alice@example.com"))

	var c *Checker
	assert.False(t, c.IsWhitelisted("alice@example.com"))
}

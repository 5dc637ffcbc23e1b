package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/taskflow/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Alice@Example.COM", "alice@example.com"},
		{"trims whitespace", "  alice@example.com  ", "alice@example.com"},
		{"consolidates dots in local part", "a..l..ice@example.com", "a.l.ice@example.com"},
		{"strips leading and trailing dots", ".alice.@example.com", "alice@example.com"},
		{"leaves invalid shapes alone", "not-an-email", "not-an-email"},
		{"leaves domain dots alone", "alice@sub.example.com", "alice@sub.example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestTrimString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", sanitizer.TrimString("  hello \n"))
	assert.Equal(t, "", sanitizer.TrimString("   "))
}

package otp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/otp"
)

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	t.Run("always six digits", func(t *testing.T) {
		t.Parallel()
		for i := 0; i < 100; i++ {
			code, err := otp.GenerateCode()
			require.NoError(t, err)
			require.Len(t, code, otp.CodeLength)
			for _, r := range code {
				require.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
			}
		}
	})

	t.Run("codes vary", func(t *testing.T) {
		t.Parallel()
		seen := make(map[string]struct{})
		for i := 0; i < 50; i++ {
			code, err := otp.GenerateCode()
			require.NoError(t, err)
			seen[code] = struct{}{}
		}
		// 50 draws from a million values colliding down to one value would
		// mean the generator is broken.
		assert.Greater(t, len(seen), 1)
	})
}

package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("nil when all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "Alice"),
			validator.MinLen("password", "password123", 8),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failing rule", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Required("name", "  "),
			validator.MinLen("password", "short", 8),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has("name"))
		assert.True(t, errs.Has("password"))
		assert.True(t, errs.Has("email"))
		assert.ElementsMatch(t, []string{"name", "password", "email"}, errs.Fields())
	})
}

func TestStringRules(t *testing.T) {
	t.Parallel()

	t.Run("LenBetween", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply(validator.LenBetween("title", "ok", 2, 100)))
		assert.Error(t, validator.Apply(validator.LenBetween("title", "x", 2, 100)))
		assert.Error(t, validator.Apply(validator.LenBetween("title", string(make([]byte, 101)), 2, 100)))
	})

	t.Run("ExactDigits", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply(validator.ExactDigits("otp", "123456", 6)))
		assert.Error(t, validator.Apply(validator.ExactDigits("otp", "12345", 6)))
		assert.Error(t, validator.Apply(validator.ExactDigits("otp", "12345a", 6)))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"alice@example.com", "a+b@sub.example.co.uk", "x_y@host.io"}
	for _, addr := range valid {
		assert.NoError(t, validator.Apply(validator.ValidEmail("email", addr)), addr)
	}

	invalid := []string{"", "plain", "@example.com", "a@b", "a b@example.com"}
	for _, addr := range invalid {
		assert.Error(t, validator.Apply(validator.ValidEmail("email", addr)), addr)
	}
}

func TestChoiceAndCollectionRules(t *testing.T) {
	t.Parallel()

	t.Run("InList", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply(validator.InList("status", "To Do", []string{"To Do", "Done"})))
		assert.Error(t, validator.Apply(validator.InList("status", "Blocked", []string{"To Do", "Done"})))
	})

	t.Run("NonEmptySlice", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validator.Apply(validator.NonEmptySlice("ids", []string{"a"})))
		assert.Error(t, validator.Apply(validator.NonEmptySlice("ids", []string{})))
		assert.Error(t, validator.Apply(validator.NonEmptySlice[string]("ids", nil)))
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	t.Run("survives wrapping", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(validator.Required("name", ""))
		wrapped := fmt.Errorf("saving profile: %w", err)

		assert.True(t, validator.IsValidationError(wrapped))
		errs := validator.ExtractValidationErrors(wrapped)
		require.NotNil(t, errs)
		assert.Equal(t, []string{"field is required"}, errs.Get("name"))
	})

	t.Run("nil for other errors", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))
		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.False(t, validator.IsValidationError(nil))
	})
}

// internal/domain/discount/entity_test.go
package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	window := DiscountCode{
		IsActive:  true,
		ValidFrom: now.AddDate(0, 0, -7),
		ValidTo:   now.AddDate(0, 0, 7),
	}

	t.Run("within window", func(t *testing.T) {
		code := window
		assert.True(t, code.IsValidAt(now))
	})

	t.Run("inactive", func(t *testing.T) {
		code := window
		code.IsActive = false
		assert.False(t, code.IsValidAt(now))
	})

	t.Run("not started", func(t *testing.T) {
		code := window
		code.ValidFrom = now.AddDate(0, 0, 1)
		assert.False(t, code.IsValidAt(now))
	})

	t.Run("expired", func(t *testing.T) {
		code := window
		code.ValidTo = now.AddDate(0, 0, -1)
		assert.False(t, code.IsValidAt(now))
	})

	t.Run("usage cap reached", func(t *testing.T) {
		code := window
		code.MaxUses = 5
		code.UsedCount = 5
		assert.False(t, code.IsValidAt(now))
	})

	t.Run("under usage cap", func(t *testing.T) {
		code := window
		code.MaxUses = 5
		code.UsedCount = 4
		assert.True(t, code.IsValidAt(now))
	})

	t.Run("zero max uses means unlimited", func(t *testing.T) {
		code := window
		code.MaxUses = 0
		code.UsedCount = 100000
		assert.True(t, code.IsValidAt(now))
	})
}

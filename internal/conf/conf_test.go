package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	t.Run("Valid duration", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, ParseDuration("30s", time.Minute))
	})

	t.Run("Empty string returns default", func(t *testing.T) {
		assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	})

	t.Run("Invalid string returns default", func(t *testing.T) {
		assert.Equal(t, time.Minute, ParseDuration("abc", time.Minute))
	})
}

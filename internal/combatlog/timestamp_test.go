package combatlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("with year and offset", func(t *testing.T) {
		got, ok := ParseTimestamp("9/22/2024 20:15:32.1234-4", 2000)
		require.True(t, ok)
		want := time.Date(2024, 9, 23, 0, 15, 32, 123400000, time.UTC)
		assert.True(t, want.Equal(got), "got %s", got.UTC())
	})

	t.Run("without year", func(t *testing.T) {
		got, ok := ParseTimestamp("9/22 20:15:32.123", 2026)
		require.True(t, ok)
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, time.September, got.Month())
		assert.Equal(t, 22, got.Day())
		assert.Equal(t, 123*time.Millisecond, time.Duration(got.Nanosecond()))
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := ParseTimestamp("not a time", 2026)
		assert.False(t, ok)
	})
}

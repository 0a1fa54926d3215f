package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessClock(t *testing.T) {
	c, err := NewBusinessClock()
	require.NoError(t, err)
	assert.Equal(t, BusinessTimezone, c.Location().String())
	assert.Equal(t, c.Location(), c.Now().Location())
}

func TestFixedClock_Today(t *testing.T) {
	loc, err := time.LoadLocation(BusinessTimezone)
	require.NoError(t, err)

	c := &FixedClock{Current: time.Date(2025, 3, 14, 17, 45, 12, 0, loc)}
	today := c.Today()
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, loc), today)
	assert.Equal(t, loc, today.Location())
}

func TestSameDay(t *testing.T) {
	loc, err := time.LoadLocation(BusinessTimezone)
	require.NoError(t, err)

	tests := []struct {
		name     string
		a, b     time.Time
		expected bool
	}{
		{
			name:     "same local day different hours",
			a:        time.Date(2025, 3, 14, 0, 1, 0, 0, loc),
			b:        time.Date(2025, 3, 14, 23, 59, 0, 0, loc),
			expected: true,
		},
		{
			name:     "consecutive days",
			a:        time.Date(2025, 3, 14, 23, 59, 0, 0, loc),
			b:        time.Date(2025, 3, 15, 0, 0, 0, 0, loc),
			expected: false,
		},
		{
			name: "utc instant on same business day",
			// 03:00 UTC is 22:00 of the previous day in business time
			a:        time.Date(2025, 3, 14, 22, 0, 0, 0, loc),
			b:        time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SameDay(tt.a, tt.b))
		})
	}
}

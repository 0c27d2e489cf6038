package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04:05.000", s)
	require.NoError(t, err)
	return v
}

func TestResolve(t *testing.T) {
	now := ts(t, "2026-03-31 14:25:00.000")

	tests := []struct {
		filter   Filter
		from, to string
	}{
		{FilterToday, "2026-03-31 00:00:00.000", "2026-03-31 23:59:59.999"},
		{FilterYesterday, "2026-03-30 00:00:00.000", "2026-03-30 23:59:59.999"},
		{FilterTomorrow, "2026-04-01 00:00:00.000", "2026-04-01 23:59:59.999"},
		{FilterWeek, "2026-03-24 00:00:00.000", "2026-03-31 23:59:59.999"},
		// time.AddDate normalizes Feb 31 to Mar 3
		{FilterMonth, "2026-03-03 00:00:00.000", "2026-03-31 23:59:59.999"},
		{FilterYear, "2025-03-31 00:00:00.000", "2026-03-31 23:59:59.999"},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			iv, ok := Resolve(tt.filter, Custom{}, now)
			require.True(t, ok)
			require.NotNil(t, iv.From)
			require.NotNil(t, iv.To)
			assert.Equal(t, ts(t, tt.from), *iv.From)
			assert.Equal(t, ts(t, tt.to), *iv.To)
		})
	}

	t.Run("all is unbounded", func(t *testing.T) {
		iv, ok := Resolve(FilterAll, Custom{}, now)
		require.True(t, ok)
		assert.True(t, iv.Unbounded())
		assert.True(t, iv.Contains(time.Time{}))
	})

	t.Run("custom normalizes to day boundaries", func(t *testing.T) {
		from := ts(t, "2026-01-05 13:00:00.000")
		to := ts(t, "2026-01-07 08:30:00.000")

		iv, ok := Resolve(FilterCustom, Custom{From: &from, To: &to}, now)
		require.True(t, ok)
		assert.Equal(t, ts(t, "2026-01-05 00:00:00.000"), *iv.From)
		assert.Equal(t, ts(t, "2026-01-07 23:59:59.999"), *iv.To)
	})

	t.Run("custom with a missing end resolves to nothing", func(t *testing.T) {
		from := ts(t, "2026-01-05 13:00:00.000")

		_, ok := Resolve(FilterCustom, Custom{From: &from}, now)
		assert.False(t, ok)
		_, ok = Resolve(FilterCustom, Custom{To: &from}, now)
		assert.False(t, ok)
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, ok := Resolve(Filter("decade"), Custom{}, now)
		assert.False(t, ok)
	})

	t.Run("uses now's location", func(t *testing.T) {
		loc := time.FixedZone("UTC+9", 9*60*60)
		local := time.Date(2026, 3, 31, 1, 0, 0, 0, loc)

		iv, ok := Resolve(FilterToday, Custom{}, local)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, loc), *iv.From)
		assert.Equal(t, loc, iv.To.Location())
	})
}

func TestInterval_Contains(t *testing.T) {
	now := ts(t, "2026-03-31 14:25:00.000")
	iv, _ := Resolve(FilterToday, Custom{}, now)

	assert.True(t, iv.Contains(*iv.From))
	assert.True(t, iv.Contains(*iv.To))
	assert.False(t, iv.Contains(iv.From.Add(-time.Millisecond)))
	assert.False(t, iv.Contains(iv.To.Add(time.Millisecond)))
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" Week ")
	require.NoError(t, err)
	assert.Equal(t, FilterWeek, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseFilter("fortnight")
	assert.Error(t, err)
}

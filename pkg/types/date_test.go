package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		d, err := ParseDate("2025-03-10")
		require.NoError(t, err)
		assert.Equal(t, "2025-03-10", d.String())
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseDate("10.03.2025")
		assert.Error(t, err)
	})
}

func TestDateArithmetic(t *testing.T) {
	start := NewDate(2025, time.March, 10)

	t.Run("add days crosses month boundary", func(t *testing.T) {
		assert.Equal(t, "2025-04-01", start.AddDays(22).String())
	})

	t.Run("days until", func(t *testing.T) {
		assert.Equal(t, 3, start.DaysUntil(start.AddDays(3)))
		assert.Equal(t, -3, start.AddDays(3).DaysUntil(start))
	})

	t.Run("dates until is half-open", func(t *testing.T) {
		dates := start.DatesUntil(start.AddDays(2))
		require.Len(t, dates, 2)
		assert.Equal(t, "2025-03-10", dates[0].String())
		assert.Equal(t, "2025-03-11", dates[1].String())
	})

	t.Run("empty range", func(t *testing.T) {
		assert.Empty(t, start.DatesUntil(start))
	})

	t.Run("comparisons", func(t *testing.T) {
		assert.True(t, start.Before(start.AddDays(1)))
		assert.True(t, start.AddDays(1).After(start))
		assert.True(t, start.Equal(NewDate(2025, time.March, 10)))
	})
}

func TestDateOfNormalizesTime(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	d := DateOf(time.Date(2025, time.March, 10, 23, 45, 0, 0, loc))

	assert.Equal(t, "2025-03-10", d.String())
}

func TestDateSQL(t *testing.T) {
	d := NewDate(2025, time.March, 10)

	t.Run("value is a time", func(t *testing.T) {
		v, err := d.Value()
		require.NoError(t, err)

		ts, ok := v.(time.Time)
		require.True(t, ok)
		assert.Equal(t, "2025-03-10", ts.Format("2006-01-02"))
	})

	t.Run("scan from time", func(t *testing.T) {
		var got Date
		require.NoError(t, got.Scan(time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)))
		assert.True(t, got.Equal(d))
	})
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.March, 10)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(data))

	var got Date
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Equal(d))
}

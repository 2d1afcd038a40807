package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeStringValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ts, err := NewTimeStringFromString("09:30")
		require.NoError(t, err)
		assert.Equal(t, "09:30", ts.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"9:30:00", "25:00", "десять утра", ""} {
			_, err := NewTimeStringFromString(s)
			assert.ErrorIs(t, err, ErrInvalidTimeString, "input %q", s)
		}
	})
}

func TestTimeStringComparisons(t *testing.T) {
	morning := TimeString("09:30")
	evening := TimeString("18:00")

	assert.True(t, morning.IsBefore(evening))
	assert.True(t, evening.IsAfter(morning))
	assert.False(t, morning.IsBefore(morning))
}

func TestTimeStringAddMinutes(t *testing.T) {
	ts := TimeString("23:30")

	got, err := ts.AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, "00:15", got.String())
}

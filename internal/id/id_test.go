package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDateKey(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 20240110},
		{time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), 20231231},
		{time.Date(999, 3, 4, 0, 0, 0, 0, time.UTC), 9990304},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDateKey(tt.date), "FormatDateKey(%s)", tt.date)
	}
}

func TestParseDateKey(t *testing.T) {
	got, err := ParseDateKey(20240229)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateKey_Invalid(t *testing.T) {
	for _, key := range []int{0, -1, 20230229, 20241301, 20240100, 20240132} {
		_, err := ParseDateKey(key)
		assert.Error(t, err, "key %d", key)
	}
}

func TestDateKeyRoundTrip(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := start; d.Year() < 2025; d = d.AddDate(0, 0, 1) {
		got, err := ParseDateKey(FormatDateKey(d))
		require.NoError(t, err)
		require.True(t, d.Equal(got), "round trip %s -> %s", d, got)
	}
}

func TestQuarter(t *testing.T) {
	want := []int{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}
	for m := 1; m <= 12; m++ {
		assert.Equal(t, want[m-1], Quarter(m), "month %d", m)
	}
}

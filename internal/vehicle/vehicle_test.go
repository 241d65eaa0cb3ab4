package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAuctionTime(t *testing.T) {
	want := time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		input string
	}{
		{"slash separators", "2030/01/01 09:00:00"},
		{"dash separators", "2030-01-01 09:00:00"},
		{"t separator", "2030-01-01T09:00:00"},
		{"surrounding whitespace", "  2030/01/01 09:00:00 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAuctionTime(tt.input)
			require.NoError(t, err)
			require.True(t, got.Equal(want), "got %v, want %v", got, want)
		})
	}
}

func TestParseAuctionTime_DateOnly(t *testing.T) {
	got, err := ParseAuctionTime("2030/06/15")
	require.NoError(t, err)
	require.Equal(t, 2030, got.Year())
	require.Equal(t, time.June, got.Month())
	require.Equal(t, 15, got.Day())
}

func TestParseAuctionTime_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "2030-13-45 99:00:00"} {
		_, err := ParseAuctionTime(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestVehicleAuctionEndTime(t *testing.T) {
	v := Vehicle{
		ID:              7,
		Make:            "BMW",
		Model:           "M3",
		Year:            2021,
		StartingBid:     45000,
		AuctionDateTime: "2030/01/01 09:00:00",
		Favourite:       true,
	}

	end, err := v.AuctionEndTime()
	require.NoError(t, err)
	require.Equal(t, time.Date(2030, 1, 1, 9, 0, 0, 0, time.Local), end)
	require.Equal(t, "BMW M3", v.DisplayName())
}

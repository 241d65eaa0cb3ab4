package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/motorbid/auction-alerts/internal/vehicle"
)

const (
	endedTitle = "🏁 Auction Ended!"
	testTitle  = "🧪 Test Notification"
)

func endedBody(v vehicle.Vehicle) string {
	return fmt.Sprintf("The auction for your favorite %s (%d) has ended. Starting bid was $%s.",
		v.DisplayName(), v.Year, formatBid(v.StartingBid))
}

func testBody(v vehicle.Vehicle) string {
	return fmt.Sprintf("This is a test notification for %s. Notifications are working!",
		v.DisplayName())
}

func payload(v vehicle.Vehicle, kind string) map[string]string {
	return map[string]string{
		"vehicleId": strconv.Itoa(v.ID),
		"type":      kind,
	}
}

// formatBid renders a dollar amount with thousands separators, dropping
// cents when whole.
func formatBid(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', -1, 64)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var neg bool
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

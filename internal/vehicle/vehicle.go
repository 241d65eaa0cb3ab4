// Package vehicle defines the vehicle record consumed from the auction data
// source and the auction end time parsing shared by the notification
// scheduler.
package vehicle

import (
	"fmt"
	"strings"
	"time"
)

// Vehicle is a read-only auction listing. The scheduler only interprets ID,
// Favourite and AuctionDateTime; everything else is payload for the
// notification body.
type Vehicle struct {
	ID              int     `json:"id"`
	Make            string  `json:"make"`
	Model           string  `json:"model"`
	Year            int     `json:"year"`
	StartingBid     float64 `json:"startingBid"`
	AuctionDateTime string  `json:"auctionDateTime"`
	Favourite       bool    `json:"favourite"`
}

// DisplayName returns "Make Model" for log lines and notification bodies.
func (v Vehicle) DisplayName() string {
	return strings.TrimSpace(v.Make + " " + v.Model)
}

// AuctionEndTime parses the vehicle's auction end timestamp.
func (v Vehicle) AuctionEndTime() (time.Time, error) {
	return ParseAuctionTime(v.AuctionDateTime)
}

// Layouts accepted after separator normalization. Upstream feeds have been
// seen with both "2030/01/01 09:00:00" and "2030-01-01 09:00:00".
var auctionTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseAuctionTime parses an auction end timestamp string. Slash-separated
// dates are normalized to dashes before parsing. Timestamps without an
// explicit offset are interpreted in local time.
func ParseAuctionTime(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty auction time")
	}
	normalized := strings.ReplaceAll(trimmed, "/", "-")

	for _, layout := range auctionTimeLayouts {
		if t, err := time.ParseInLocation(layout, normalized, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable auction time %q", s)
}

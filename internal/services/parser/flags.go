package parser

import (
	"strings"

	"github.com/purserdev/purser/internal/domain"
)

var (
	offerPhrases    = []string{"best offer", "make offer"}
	shippingPhrases = []string{"free shipping"}
)

// ParseFlags detects listing flags by case-insensitive substring match
// against a fixed phrase table. Flags are independent of each other; text
// with no known phrase yields the zero value.
func ParseFlags(text string) domain.ListingFlags {
	lower := strings.ToLower(text)

	var flags domain.ListingFlags
	for _, phrase := range offerPhrases {
		if strings.Contains(lower, phrase) {
			flags.AcceptsOffers = true
			break
		}
	}
	for _, phrase := range shippingPhrases {
		if strings.Contains(lower, phrase) {
			flags.FreeShipping = true
			break
		}
	}
	return flags
}

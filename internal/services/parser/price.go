// Package parser extracts prices and listing flags from free-form page text.
// Everything here is pure text analysis with no I/O.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// pricePatterns are tried in order, most specific first: explicit currency
// prefixes before a bare dollar sign, bare currency suffixes last. The first
// pattern whose capture parses to a positive amount wins.
var pricePatterns = []struct {
	re       *regexp.Regexp
	currency string
}{
	{regexp.MustCompile(`(?i)US\s*\$\s*(\d+\.?\d*)`), "USD"},
	{regexp.MustCompile(`(?i)GBP\s*(\d+\.?\d*)`), "GBP"},
	{regexp.MustCompile(`(?i)EUR\s*(\d+\.?\d*)`), "EUR"},
	{regexp.MustCompile(`\$\s*(\d+\.?\d*)`), "USD"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*USD`), "USD"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*GBP`), "GBP"},
	{regexp.MustCompile(`(?i)(\d+\.?\d*)\s*EUR`), "EUR"},
}

// ParsePrice scans text for a currency-tagged amount. It returns the amount,
// its ISO currency code and true on success. Zero, negative and unparseable
// captures are rejected and matching continues with the next pattern. Absence
// of a match is a normal outcome, never an error.
func ParsePrice(text string) (decimal.Decimal, string, bool) {
	if text == "" {
		return decimal.Decimal{}, "", false
	}

	// Strip thousands separators so "1,234.00" parses as one number.
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))

	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount, err := decimal.NewFromString(m[1])
		if err != nil || !amount.IsPositive() {
			continue
		}
		return amount, p.currency, true
	}

	return decimal.Decimal{}, "", false
}

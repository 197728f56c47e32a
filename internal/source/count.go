package source

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"influencer-app/internal/domain"
)

var countSuffixes = map[byte]int64{
	'K': 1_000,
	'M': 1_000_000,
	'B': 1_000_000_000,
}

// ParseCount converts an upstream-formatted counter such as "1.2M",
// "350K" or "12,345" into an integer. Plain digit strings pass through.
func ParseCount(text string) (int64, error) {
	text = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(text, ",", "")))
	if text == "" {
		return 0, fmt.Errorf("%w: empty count", domain.ErrInvalidInput)
	}

	multiplier := int64(1)
	if m, ok := countSuffixes[text[len(text)-1]]; ok {
		multiplier = m
		text = text[:len(text)-1]
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable count %q", domain.ErrInvalidInput, text)
	}
	if value.IsNegative() {
		return 0, fmt.Errorf("%w: negative count %q", domain.ErrInvalidInput, text)
	}

	return value.Mul(decimal.NewFromInt(multiplier)).IntPart(), nil
}

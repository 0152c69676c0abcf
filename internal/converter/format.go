package converter

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount rounds half up to two decimals and groups thousands with commas,
// e.g. 168030 becomes "168,030.00". Digits come straight from the decimal, so
// amounts of any size print exactly.
func FormatAmount(value decimal.Decimal) string {
	whole, fraction, _ := strings.Cut(value.Round(2).StringFixed(2), ".")
	return groupThousands(whole) + "." + fraction
}

// groupThousands inserts a comma before every third digit from the right
func groupThousands(digits string) string {
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}

	var builder strings.Builder
	builder.Grow(len(digits) + len(digits)/3)
	builder.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		builder.WriteByte(',')
		builder.WriteString(digits[i : i+3])
	}
	return builder.String()
}

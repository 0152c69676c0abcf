// Package converter turns typed dollar amounts into rupiah at a fixed rate.
package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dalfonso89/currency-converter/internal/config"
)

// entryPattern accepts a non-negative decimal number while it is being typed,
// including "" and a trailing bare point.
var entryPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

// Accepts reports whether text may be stored as the form input
func Accepts(text string) bool {
	return entryPattern.MatchString(text)
}

// Filter returns proposed when it is acceptable and current otherwise
func Filter(current, proposed string) (string, bool) {
	if Accepts(proposed) {
		return proposed, true
	}
	return current, false
}

// ParseAmount parses accepted input text. "12." reads as 12 and ".5" as 0.5.
func ParseAmount(text string) (decimal.Decimal, error) {
	if !Accepts(text) {
		return decimal.Zero, &ConversionError{Type: ErrorTypePattern, Input: text}
	}
	if !strings.ContainsAny(text, "0123456789") {
		return decimal.Zero, &ConversionError{Type: ErrorTypeEmpty, Input: text}
	}

	normalized := strings.TrimSuffix(text, ".")
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}

	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, &ConversionError{Type: ErrorTypeParse, Input: text, Cause: err}
	}
	return amount, nil
}

// Conversion is a successful conversion of one input
type Conversion struct {
	Input     string
	Amount    decimal.Decimal
	Rate      decimal.Decimal
	Converted decimal.Decimal
	Formatted string
	Text      string
}

// Engine converts at a rate fixed when it is built. It holds no mutable state.
type Engine struct {
	rate       decimal.Decimal
	fromSymbol string
	toLabel    string
}

// NewEngine creates an engine from the conversion settings
func NewEngine(settings config.ConversionSettings) *Engine {
	return &Engine{
		rate:       settings.Rate,
		fromSymbol: settings.FromSymbol,
		toLabel:    settings.ToLabel,
	}
}

// Rate returns the fixed conversion rate
func (engine *Engine) Rate() decimal.Decimal {
	return engine.rate
}

// Convert multiplies the parsed input by the rate
func (engine *Engine) Convert(text string) (Conversion, error) {
	amount, err := ParseAmount(text)
	if err != nil {
		return Conversion{}, err
	}

	converted := amount.Mul(engine.rate)
	formatted := FormatAmount(converted)

	return Conversion{
		Input:     text,
		Amount:    amount,
		Rate:      engine.rate,
		Converted: converted,
		Formatted: formatted,
		Text:      fmt.Sprintf("%s%s = %s %s", engine.fromSymbol, text, engine.toLabel, formatted),
	}, nil
}

// Result returns the text shown in the result area: the conversion, or
// InvalidInputMessage when the input cannot be converted.
func (engine *Engine) Result(text string) string {
	conversion, err := engine.Convert(text)
	if err != nil {
		return InvalidInputMessage
	}
	return conversion.Text
}

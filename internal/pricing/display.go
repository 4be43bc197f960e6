package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultUSDToJPY is the fixed conversion rate used when none is configured.
	DefaultUSDToJPY = 150
	// Placeholder is shown for an unknown price.
	Placeholder = "-"
)

var (
	yenPrinter    = message.NewPrinter(language.Japanese)
	dollarPrinter = message.NewPrinter(language.AmericanEnglish)

	numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// Display is a price ready to render: the yen text, an optional annotation
// with the original amount, and whether the yen figure is a conversion.
type Display struct {
	Text      string `json:"text" yaml:"text"`
	Sub       string `json:"sub,omitempty" yaml:"sub,omitempty"`
	Estimated bool   `json:"estimated,omitempty" yaml:"estimated,omitempty"`
}

// Format renders amount in yen. Strings already in yen pass through
// unchanged; dollar strings and USD pairs are converted at rate; unknown
// currency codes are shown as yen and flagged as estimates. A nil or empty
// amount renders the placeholder.
func Format(amount *Amount, rate float64) Display {
	if amount == nil || amount.IsZero() {
		return Display{Text: Placeholder}
	}
	if rate <= 0 {
		rate = DefaultUSDToJPY
	}

	switch amount.kind {
	case amountText:
		return formatText(amount.text, rate)
	case amountPair:
		switch amount.currency {
		case "JPY", "":
			return Display{Text: Yen(amount.value)}
		case "USD":
			return Display{Text: Yen(amount.value * rate), Sub: Dollars(amount.value), Estimated: true}
		default:
			return Display{
				Text:      Yen(amount.value),
				Sub:       amount.currency + " " + strconv.FormatFloat(amount.value, 'f', 2, 64),
				Estimated: true,
			}
		}
	case amountNumber:
		return Display{Text: Yen(amount.value)}
	}
	return Display{Text: Placeholder}
}

func formatText(text string, rate float64) Display {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Display{Text: Placeholder}
	}
	if isYenText(trimmed) || !isDollarText(trimmed) {
		return Display{Text: text}
	}
	match := numberPattern.FindString(trimmed)
	if match == "" {
		return Display{Text: text}
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return Display{Text: text}
	}
	return Display{Text: Yen(value * rate), Sub: trimmed}
}

func isYenText(text string) bool {
	return strings.ContainsAny(text, "¥￥円") || strings.Contains(strings.ToUpper(text), "JPY")
}

func isDollarText(text string) bool {
	return strings.Contains(text, "$") || strings.Contains(strings.ToUpper(text), "USD")
}

// Yen formats value rounded to the nearest yen with thousands separators.
func Yen(value float64) string {
	return yenPrinter.Sprintf("¥%d", int64(math.Round(value)))
}

// Dollars formats value as US dollars with cents.
func Dollars(value float64) string {
	return dollarPrinter.Sprintf("$%.2f", value)
}

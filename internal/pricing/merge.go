package pricing

import (
	"strings"

	"byebye/internal/discogs"
)

// first returns the first non-nil candidate.
func first[T any](candidates ...func() *T) *T {
	for _, candidate := range candidates {
		if v := candidate(); v != nil {
			return v
		}
	}
	return nil
}

// merge folds the source outcomes into a quote. Where two sources carry the
// same field the order of the candidates below decides.
func merge(src *sources) *Quote {
	release, _ := src.release.Get()
	stats, _ := src.stats.Get()
	history, scraped := src.history.Get()
	scrapedYear, _ := src.released.Get()
	suggestions, _ := src.suggestions.Get()

	quote := &Quote{
		Scraped:        scraped,
		ScrapeDegraded: scraped && src.historyHTML > 0 && !history.Recognized,
	}

	quote.ReleasedYear = first(
		func() *string { return scrapedYear },
		func() *string {
			if release == nil {
				return nil
			}
			return yearPrefix(release.Released)
		},
		func() *string {
			if release == nil {
				return nil
			}
			return yearPrefix(string(release.Year))
		},
	)
	quote.LastSoldDate = first(
		func() *string { return history.LastSold },
		func() *string {
			if stats == nil {
				return nil
			}
			return nonBlank(stats.LastSold)
		},
	)
	quote.WantCount = first(
		func() *int {
			if stats == nil {
				return nil
			}
			return stats.NumWant
		},
		func() *int {
			if release == nil {
				return nil
			}
			return release.Community.Want
		},
	)
	quote.HaveCount = first(
		func() *int {
			if stats == nil {
				return nil
			}
			return stats.NumHave
		},
		func() *int {
			if release == nil {
				return nil
			}
			return release.Community.Have
		},
	)
	if release != nil {
		quote.AvgRating = release.Community.Rating.Average
		quote.ForSaleCount = release.NumForSale
		if release.LowestPrice != nil {
			lowest := PairAmount(*release.LowestPrice, suggestionCurrency(suggestions))
			quote.LowestListing = &lowest
		}
	}

	quote.HistoryLow = textAmount(history.Low)
	quote.HistoryMedian = textAmount(history.Median)
	quote.HistoryHigh = textAmount(history.High)
	quote.HistoryAverage = textAmount(history.Average)

	if len(suggestions) > 0 {
		quote.Suggestions = make(map[string]Amount, len(suggestions))
		for condition, price := range suggestions {
			quote.Suggestions[condition] = PairAmount(price.Value, price.Currency)
		}
	}
	return quote
}

// suggestionCurrency is the marketplace currency of the account behind the
// token, which is also the currency lowest_price is reported in.
func suggestionCurrency(suggestions discogs.PriceSuggestions) string {
	for _, price := range suggestions {
		if c := strings.TrimSpace(price.Currency); c != "" {
			return c
		}
	}
	return "USD"
}

func textAmount(text *string) *Amount {
	if text == nil || strings.TrimSpace(*text) == "" {
		return nil
	}
	amount := TextAmount(strings.TrimSpace(*text))
	return &amount
}

func nonBlank(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

// yearPrefix returns the leading four-digit year of a date such as
// "1977-05-00", or nil.
func yearPrefix(value string) *string {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return nil
	}
	year := value[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return nil
		}
	}
	if year == "0000" {
		return nil
	}
	return &year
}

package marketpage

import (
	"html"
	"regexp"
	"strings"
)

// HistoryStats are the summary values of a sales-history page. Nil means the
// value was not found.
type HistoryStats struct {
	Low      *string
	Median   *string
	High     *string
	Average  *string
	LastSold *string
	// Recognized is true when at least one known summary label occurs in the
	// page as its own text node. False on a non-empty page suggests the layout
	// changed rather than the data being absent.
	Recognized bool
}

type fieldPatterns struct {
	labels   []string
	patterns []*regexp.Regexp
}

func compile(labels []string, build func(label string) string) fieldPatterns {
	fp := fieldPatterns{labels: labels}
	for _, label := range labels {
		fp.patterns = append(fp.patterns, regexp.MustCompile(build(label)))
	}
	return fp
}

// precedingValue matches the text node immediately before a label, with only
// tags between them: <span>¥2,500</span><small>低</small>.
func precedingValue(label string) string {
	return `>\s*([^<>\s][^<>]*?)\s*(?:<[^>]+>\s*)+` + regexp.QuoteMeta(label) + `[:：]?\s*<`
}

// followingValue matches the first text node after a label, tolerating any
// tags in between: <h4>Last Sold:</h4> <span>2024-05-01</span>.
func followingValue(label string) string {
	return `>\s*` + regexp.QuoteMeta(label) + `\s*[:：]?\s*(?:<[^>]*>\s*)*([^<>\s][^<>]*?)\s*<`
}

// standalone matches a label that forms a complete text node.
func standalone(label string) string {
	return `>\s*` + regexp.QuoteMeta(label) + `\s*[:：]?\s*<`
}

var (
	lowPatterns      = compile(lowLabels, precedingValue)
	medianPatterns   = compile(medianLabels, precedingValue)
	highPatterns     = compile(highLabels, precedingValue)
	averagePatterns  = compile(averageLabels, precedingValue)
	lastSoldPatterns = compile(lastSoldLabels, followingValue)
	releasedPatterns = compile(releasedLabels, followingValue)

	summaryPresence = compile(concat(lowLabels, medianLabels, highLabels, averageLabels, lastSoldLabels), standalone)

	yearPattern = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)

	knownLabels = func() map[string]struct{} {
		set := map[string]struct{}{}
		for _, label := range concat(lowLabels, medianLabels, highLabels, averageLabels, lastSoldLabels, releasedLabels) {
			set[label] = struct{}{}
		}
		return set
	}()
)

func concat(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}

// firstMatch tries each pattern in order and returns the first non-empty
// capture that is not itself a label.
func (fp fieldPatterns) firstMatch(markup string) *string {
	for _, pattern := range fp.patterns {
		for _, m := range pattern.FindAllStringSubmatch(markup, -1) {
			value := strings.TrimSpace(html.UnescapeString(m[1]))
			if value == "" || isLabel(value) {
				continue
			}
			return &value
		}
	}
	return nil
}

func isLabel(value string) bool {
	_, ok := knownLabels[strings.TrimRight(value, ":：")]
	return ok
}

func (fp fieldPatterns) anyMatch(markup string) bool {
	for _, pattern := range fp.patterns {
		if pattern.MatchString(markup) {
			return true
		}
	}
	return false
}

// ExtractHistory pulls low, median, high, average, and last-sold values out of
// a sales-history page.
func ExtractHistory(markup string) HistoryStats {
	stats := HistoryStats{
		Low:      lowPatterns.firstMatch(markup),
		Median:   medianPatterns.firstMatch(markup),
		High:     highPatterns.firstMatch(markup),
		Average:  averagePatterns.firstMatch(markup),
		LastSold: lastSoldPatterns.firstMatch(markup),
	}
	stats.Recognized = summaryPresence.anyMatch(markup)
	return stats
}

// ExtractReleased returns the four-digit release year from a release page.
func ExtractReleased(markup string) *string {
	for _, pattern := range releasedPatterns.patterns {
		for _, m := range pattern.FindAllStringSubmatch(markup, -1) {
			if year := yearOf(html.UnescapeString(m[1])); year != "" {
				return &year
			}
		}
	}
	return nil
}

func yearOf(text string) string {
	m := yearPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

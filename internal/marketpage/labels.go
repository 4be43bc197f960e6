package marketpage

// Label lists per field, most specific wording first. Japanese comes first
// because the pages are requested with a Japanese Accept-Language.
var (
	lowLabels     = []string{"低", "最低", "Low", "Lowest"}
	medianLabels  = []string{"中間点", "中央値", "Median"}
	highLabels    = []string{"高", "最高", "High", "Highest"}
	averageLabels = []string{"平均", "Average"}

	lastSoldLabels = []string{"最終販売日", "最後の販売", "Last Sold"}
	releasedLabels = []string{"リリース", "発売日", "Released", "Release Date"}
)

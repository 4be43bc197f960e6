package pricing_test

import (
	"context"
	"errors"
	"testing"

	"byebye/internal/discogs"
	"byebye/internal/pricing"
	"byebye/internal/services"
)

type fakeSource struct {
	suggestions discogs.PriceSuggestions
	release     *discogs.Release
	stats       *discogs.ReleaseStats
	history     string
	releasePage string
	err         error
	panicOn     string
}

func (f *fakeSource) check(name string) error {
	if f.panicOn == name {
		panic(name + " exploded")
	}
	return f.err
}

func (f *fakeSource) PriceSuggestions(context.Context, int64) (discogs.PriceSuggestions, error) {
	if err := f.check("suggestions"); err != nil {
		return nil, err
	}
	return f.suggestions, nil
}

func (f *fakeSource) Release(context.Context, int64) (*discogs.Release, error) {
	if err := f.check("release"); err != nil {
		return nil, err
	}
	return f.release, nil
}

func (f *fakeSource) ReleaseStats(context.Context, int64) (*discogs.ReleaseStats, error) {
	if err := f.check("stats"); err != nil {
		return nil, err
	}
	return f.stats, nil
}

func (f *fakeSource) SalesHistoryPage(context.Context, int64) (string, error) {
	if err := f.check("history"); err != nil {
		return "", err
	}
	return f.history, nil
}

func (f *fakeSource) ReleasePage(context.Context, int64) (string, error) {
	if err := f.check("release_page"); err != nil {
		return "", err
	}
	return f.releasePage, nil
}

func (f *fakeSource) HistoryURL(id int64) string {
	if f.panicOn == "url" {
		panic("url exploded")
	}
	return "https://www.discogs.com/sell/history/42"
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestQuoteRejectsInvalidRelease(t *testing.T) {
	_, err := pricing.NewAggregator(&fakeSource{}, nil).Quote(context.Background(), 0)
	if !errors.Is(err, services.ErrInvalidQuery) {
		t.Fatalf("expected invalid query, got %v", err)
	}
}

func TestQuoteAllSourcesFailing(t *testing.T) {
	source := &fakeSource{err: services.Wrap(services.ErrUpstream, "discogs", "get", "boom", nil)}
	quote, err := pricing.NewAggregator(source, nil).Quote(context.Background(), 42)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if quote.Scraped || quote.ScrapeDegraded {
		t.Fatalf("expected unscraped quote, got %+v", quote)
	}
	if quote.WantCount != nil || quote.HaveCount != nil || quote.AvgRating != nil ||
		quote.ReleasedYear != nil || quote.LowestListing != nil || quote.ForSaleCount != nil ||
		quote.HistoryLow != nil || quote.HistoryMedian != nil || quote.HistoryHigh != nil ||
		quote.HistoryAverage != nil || quote.LastSoldDate != nil || quote.Suggestions != nil {
		t.Fatalf("expected every optional field to be empty, got %+v", quote)
	}
	if quote.SourceURL == "" {
		t.Fatal("expected source url even without data")
	}
	if quote.FetchedAt.IsZero() {
		t.Fatal("expected fetch timestamp")
	}
}

func TestQuoteMergesSources(t *testing.T) {
	source := &fakeSource{
		suggestions: discogs.PriceSuggestions{
			"Mint (M)": {Currency: "JPY", Value: 5400},
		},
		release: &discogs.Release{
			Year:        "1979",
			Released:    "1978-11-00",
			NumForSale:  intPtr(7),
			LowestPrice: floatPtr(2100),
			Community: discogs.Community{
				Want:   intPtr(1),
				Have:   intPtr(2),
				Rating: discogs.Rating{Count: 10, Average: floatPtr(4.5)},
			},
		},
		stats: &discogs.ReleaseStats{
			NumWant:  intPtr(310),
			LastSold: strPtr("2023-01-02"),
		},
		history: `<div><span>最終販売日</span><span>2024年3月1日</span></div>
<ul><li><span>¥1,200</span><small>低</small></li>
<li><span>¥2,500</span><small>中間点</small></li>
<li><span>¥4,800</span><small>高</small></li></ul>`,
		releasePage: `<p>no release line</p>`,
	}

	quote, err := pricing.NewAggregator(source, nil).Quote(context.Background(), 42)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if !quote.Scraped || quote.ScrapeDegraded {
		t.Fatalf("expected recognized scrape, got scraped=%v degraded=%v", quote.Scraped, quote.ScrapeDegraded)
	}
	if quote.WantCount == nil || *quote.WantCount != 310 {
		t.Fatalf("expected want count from stats, got %v", quote.WantCount)
	}
	if quote.HaveCount == nil || *quote.HaveCount != 2 {
		t.Fatalf("expected have count from community, got %v", quote.HaveCount)
	}
	if quote.ReleasedYear == nil || *quote.ReleasedYear != "1978" {
		t.Fatalf("expected released year from api date, got %v", quote.ReleasedYear)
	}
	if quote.LastSoldDate == nil || *quote.LastSoldDate != "2024年3月1日" {
		t.Fatalf("expected scraped last sold date, got %v", quote.LastSoldDate)
	}
	if quote.ForSaleCount == nil || *quote.ForSaleCount != 7 {
		t.Fatalf("unexpected for sale count %v", quote.ForSaleCount)
	}
	if quote.AvgRating == nil || *quote.AvgRating != 4.5 {
		t.Fatalf("unexpected rating %v", quote.AvgRating)
	}
	value, currency, ok := quote.LowestListing.Pair()
	if !ok || value != 2100 || currency != "JPY" {
		t.Fatalf("expected lowest listing in suggestion currency, got %v", quote.LowestListing)
	}
	for name, got := range map[string]*pricing.Amount{
		"low":    quote.HistoryLow,
		"median": quote.HistoryMedian,
		"high":   quote.HistoryHigh,
	} {
		if got == nil {
			t.Fatalf("expected history %s", name)
		}
	}
	if text, _ := quote.HistoryMedian.Text(); text != "¥2,500" {
		t.Fatalf("unexpected median %q", text)
	}
	if quote.HistoryAverage != nil {
		t.Fatalf("expected no average, got %v", quote.HistoryAverage)
	}
	if got := quote.Suggestions["Mint (M)"]; got.String() != "5400 JPY" {
		t.Fatalf("unexpected suggestion %q", got.String())
	}
}

func TestQuoteScrapedYearWins(t *testing.T) {
	source := &fakeSource{
		release:     &discogs.Release{Year: "1979", Released: "1978-11-00"},
		releasePage: `<div><span>リリース:</span><span>1977年5月</span></div>`,
	}
	quote, err := pricing.NewAggregator(source, nil).Quote(context.Background(), 42)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if quote.ReleasedYear == nil || *quote.ReleasedYear != "1977" {
		t.Fatalf("expected scraped year, got %v", quote.ReleasedYear)
	}
}

func TestQuoteFlagsUnrecognizedHistoryPage(t *testing.T) {
	source := &fakeSource{history: "<html><body>completely different layout</body></html>"}
	quote, err := pricing.NewAggregator(source, nil).Quote(context.Background(), 42)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if !quote.Scraped || !quote.ScrapeDegraded {
		t.Fatalf("expected degraded scrape, got scraped=%v degraded=%v", quote.Scraped, quote.ScrapeDegraded)
	}
}

func TestQuoteSourcePanicIsUnavailable(t *testing.T) {
	source := &fakeSource{
		panicOn: "stats",
		release: &discogs.Release{NumForSale: intPtr(3)},
	}
	quote, err := pricing.NewAggregator(source, nil).Quote(context.Background(), 42)
	if err != nil {
		t.Fatalf("Quote returned error: %v", err)
	}
	if quote.ForSaleCount == nil || *quote.ForSaleCount != 3 {
		t.Fatalf("expected other sources to survive, got %v", quote.ForSaleCount)
	}
}

func TestQuotePipelinePanicIsInternal(t *testing.T) {
	_, err := pricing.NewAggregator(&fakeSource{panicOn: "url"}, nil).Quote(context.Background(), 42)
	if !errors.Is(err, services.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

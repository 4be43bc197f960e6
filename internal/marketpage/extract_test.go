package marketpage_test

import (
	"testing"

	"byebye/internal/marketpage"
)

const japaneseHistory = `<html><body>
<section class="summary">
  <ul>
    <li><span class="price">¥1,200</span> <small>低</small></li>
    <li><span class="price">¥2,500</span><small>中間点</small></li>
    <li><span class="price">¥4,800</span>
        <small>高</small></li>
    <li><span class="price"> ¥2,650 </span><small>平均</small></li>
  </ul>
  <p><span>最終販売日:</span> <strong>2026-09-30</strong></p>
</section>
</body></html>`

const englishHistory = `<div id="statistics"><ul>
<li><span>$8.00</span><h4>Low</h4></li>
<li><span>$17.50</span><h4>Median</h4></li>
<li><span>$41.99</span><h4>High</h4></li>
</ul>
<div><h4>Last Sold:</h4><span>May 1, 2024</span></div></div>`

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestExtractHistoryJapanese(t *testing.T) {
	stats := marketpage.ExtractHistory(japaneseHistory)
	checks := map[string]struct{ got, want string }{
		"low":       {deref(stats.Low), "¥1,200"},
		"median":    {deref(stats.Median), "¥2,500"},
		"high":      {deref(stats.High), "¥4,800"},
		"average":   {deref(stats.Average), "¥2,650"},
		"last sold": {deref(stats.LastSold), "2026-09-30"},
	}
	for field, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %q, want %q", field, c.got, c.want)
		}
	}
	if !stats.Recognized {
		t.Fatal("expected page to be recognized")
	}
}

func TestExtractHistoryEnglishFallback(t *testing.T) {
	stats := marketpage.ExtractHistory(englishHistory)
	if deref(stats.Low) != "$8.00" || deref(stats.Median) != "$17.50" || deref(stats.High) != "$41.99" {
		t.Fatalf("unexpected stats: low=%s median=%s high=%s", deref(stats.Low), deref(stats.Median), deref(stats.High))
	}
	if stats.Average != nil {
		t.Fatalf("expected no average, got %q", *stats.Average)
	}
	if deref(stats.LastSold) != "May 1, 2024" {
		t.Fatalf("last sold = %q", deref(stats.LastSold))
	}
	if !stats.Recognized {
		t.Fatal("expected page to be recognized")
	}
}

func TestExtractHistoryFirstVariantWins(t *testing.T) {
	markup := `<li><b>$9.00</b><i>Low</i></li><li><b>¥1,000</b><i>低</i></li>`
	stats := marketpage.ExtractHistory(markup)
	if deref(stats.Low) != "¥1,000" {
		t.Fatalf("expected Japanese label to take precedence, got %q", deref(stats.Low))
	}
}

func TestExtractHistoryIgnoresLongerWords(t *testing.T) {
	markup := `<p><b>¥500</b><i>最高値の記録</i></p><p><b>$3</b><i>Lowland</i></p>`
	stats := marketpage.ExtractHistory(markup)
	if stats.High != nil || stats.Low != nil {
		t.Fatalf("expected no matches, got high=%s low=%s", deref(stats.High), deref(stats.Low))
	}
	if stats.Recognized {
		t.Fatal("expected page not to be recognized")
	}
}

func TestExtractHistoryLabelsWithoutValues(t *testing.T) {
	markup := `<ul><li><small>低</small></li><li><small>高</small></li></ul>`
	stats := marketpage.ExtractHistory(markup)
	if stats.Low != nil || stats.High != nil {
		t.Fatalf("expected nil values, got low=%s high=%s", deref(stats.Low), deref(stats.High))
	}
	if !stats.Recognized {
		t.Fatal("labels are present, so the layout should be recognized")
	}
}

func TestExtractHistoryUnescapesEntities(t *testing.T) {
	stats := marketpage.ExtractHistory(`<li><span>&yen;3,000</span><small>平均</small></li>`)
	if deref(stats.Average) != "¥3,000" {
		t.Fatalf("average = %q", deref(stats.Average))
	}
}

func TestExtractReleased(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		want   string
	}{
		{"english table", `<tr><th scope="row">Released:</th><td><a href="/search?year=1997">20 Jan 1997</a></td></tr>`, "1997"},
		{"japanese", `<div class="head">リリース:</div><div class="content"><span><a href="#">1983年</a></span></div>`, "1983"},
		{"iso date", `<dt>Released</dt> <dd>2001-03-12</dd>`, "2001"},
		{"no year", `<th>Released:</th><td>Unknown</td>`, "<nil>"},
		{"absent", `<p>Tracklist</p>`, "<nil>"},
	}
	for _, tc := range cases {
		if got := deref(marketpage.ExtractReleased(tc.markup)); got != tc.want {
			t.Fatalf("%s: ExtractReleased = %q, want %q", tc.name, got, tc.want)
		}
	}
}

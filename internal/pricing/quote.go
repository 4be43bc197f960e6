package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"byebye/internal/discogs"
	"byebye/internal/logging"
	"byebye/internal/marketpage"
	"byebye/internal/services"
)

// Quote is the aggregated market picture for one release. Nil fields are
// unknown, never zero.
type Quote struct {
	ReleaseID      int64             `json:"releaseId" yaml:"release_id"`
	WantCount      *int              `json:"wantCount,omitempty" yaml:"want_count,omitempty"`
	HaveCount      *int              `json:"haveCount,omitempty" yaml:"have_count,omitempty"`
	AvgRating      *float64          `json:"avgRating,omitempty" yaml:"avg_rating,omitempty"`
	ReleasedYear   *string           `json:"releasedYear,omitempty" yaml:"released_year,omitempty"`
	LowestListing  *Amount           `json:"lowestListingPrice,omitempty" yaml:"lowest_listing_price,omitempty"`
	ForSaleCount   *int              `json:"forSaleCount,omitempty" yaml:"for_sale_count,omitempty"`
	HistoryLow     *Amount           `json:"historyLow,omitempty" yaml:"history_low,omitempty"`
	HistoryMedian  *Amount           `json:"historyMedian,omitempty" yaml:"history_median,omitempty"`
	HistoryHigh    *Amount           `json:"historyHigh,omitempty" yaml:"history_high,omitempty"`
	HistoryAverage *Amount           `json:"historyAverage,omitempty" yaml:"history_average,omitempty"`
	LastSoldDate   *string           `json:"lastSoldDate,omitempty" yaml:"last_sold_date,omitempty"`
	Suggestions    map[string]Amount `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	SourceURL      string            `json:"sourceUrl" yaml:"source_url"`
	Scraped        bool              `json:"scraped" yaml:"scraped"`
	ScrapeDegraded bool              `json:"scrapeDegraded,omitempty" yaml:"scrape_degraded,omitempty"`
	FetchedAt      time.Time         `json:"fetchedAt" yaml:"fetched_at"`
}

// Source is the subset of the Discogs client the aggregator reads from.
type Source interface {
	PriceSuggestions(ctx context.Context, releaseID int64) (discogs.PriceSuggestions, error)
	Release(ctx context.Context, releaseID int64) (*discogs.Release, error)
	ReleaseStats(ctx context.Context, releaseID int64) (*discogs.ReleaseStats, error)
	SalesHistoryPage(ctx context.Context, releaseID int64) (string, error)
	ReleasePage(ctx context.Context, releaseID int64) (string, error)
	HistoryURL(releaseID int64) string
}

// Aggregator builds quotes from a Source.
type Aggregator struct {
	source Source
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewAggregator builds an Aggregator over source.
func NewAggregator(source Source, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		source: source,
		logger: logging.NewComponentLogger(logger, "pricing"),
		tracer: otel.Tracer("byebye/pricing"),
		now:    time.Now,
	}
}

// sources holds one outcome per upstream.
type sources struct {
	suggestions Outcome[discogs.PriceSuggestions]
	release     Outcome[*discogs.Release]
	stats       Outcome[*discogs.ReleaseStats]
	history     Outcome[marketpage.HistoryStats]
	historyHTML int
	released    Outcome[*string]
}

// Quote assembles the current market picture for releaseID. Individual source
// failures never fail the call.
func (a *Aggregator) Quote(ctx context.Context, releaseID int64) (quote *Quote, err error) {
	if releaseID <= 0 {
		return nil, services.Wrap(services.ErrInvalidQuery, "pricing", "quote", fmt.Sprintf("invalid release id %d", releaseID), nil)
	}
	ctx = services.WithReleaseID(ctx, releaseID)
	ctx, span := a.tracer.Start(ctx, "pricing.quote",
		trace.WithAttributes(attribute.Int64("release.id", releaseID)),
	)
	defer span.End()
	logger := logging.WithContext(ctx, a.logger)

	defer func() {
		if r := recover(); r != nil {
			quote = nil
			err = services.Wrap(services.ErrInternal, "pricing", "quote", fmt.Sprintf("panic: %v", r), nil)
			span.RecordError(err)
			span.SetStatus(codes.Error, "quote panicked")
			logging.ErrorWithContext(logger, "quote pipeline panicked", "quote_panic",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "report the release id; the quote was discarded"),
			)
		}
	}()

	var src sources
	a.fetchStructured(ctx, releaseID, &src)
	a.fetchPages(ctx, releaseID, &src)

	quote = merge(&src)
	quote.ReleaseID = releaseID
	quote.SourceURL = a.source.HistoryURL(releaseID)
	quote.FetchedAt = a.now().UTC()

	available := src.available()
	span.SetAttributes(
		attribute.Int("sources.available", available),
		attribute.Bool("quote.scraped", quote.Scraped),
		attribute.Bool("quote.scrape_degraded", quote.ScrapeDegraded),
	)
	if quote.ScrapeDegraded {
		logging.WarnWithContext(logger, "sales history page layout not recognized", "scrape_degraded",
			logging.Int("html_bytes", src.historyHTML),
			logging.String(logging.FieldErrorHint, "the marketplace page wording may have changed; update the label lists"),
			logging.String(logging.FieldImpact, "history prices are missing from the quote"),
		)
	}
	logger.Debug("quote assembled",
		logging.String(logging.FieldEventType, "quote_assembled"),
		logging.Int("sources_available", available),
		logging.Bool("scraped", quote.Scraped),
	)
	return quote, nil
}

// fetchStructured queries the three JSON endpoints concurrently.
func (a *Aggregator) fetchStructured(ctx context.Context, releaseID int64, src *sources) {
	var g errgroup.Group
	g.Go(func() error {
		src.suggestions = guarded(func() (discogs.PriceSuggestions, error) {
			return a.source.PriceSuggestions(ctx, releaseID)
		})
		return nil
	})
	g.Go(func() error {
		src.release = guarded(func() (*discogs.Release, error) {
			return a.source.Release(ctx, releaseID)
		})
		return nil
	})
	g.Go(func() error {
		src.stats = guarded(func() (*discogs.ReleaseStats, error) {
			return a.source.ReleaseStats(ctx, releaseID)
		})
		return nil
	})
	_ = g.Wait()

	logger := logging.WithContext(ctx, a.logger)
	for name, err := range map[string]error{
		"price_suggestions": src.suggestions.Err(),
		"release":           src.release.Err(),
		"release_stats":     src.stats.Err(),
	} {
		if err != nil {
			logger.Debug("quote source unavailable",
				logging.String("source", name),
				logging.String(logging.FieldEventType, "quote_source_unavailable"),
				logging.Error(err),
			)
		}
	}
}

// fetchPages scrapes the history page, then the release page.
func (a *Aggregator) fetchPages(ctx context.Context, releaseID int64, src *sources) {
	logger := logging.WithContext(ctx, a.logger)

	src.history = guarded(func() (marketpage.HistoryStats, error) {
		markup, err := a.source.SalesHistoryPage(ctx, releaseID)
		if err != nil {
			return marketpage.HistoryStats{}, err
		}
		src.historyHTML = len(markup)
		return marketpage.ExtractHistory(markup), nil
	})
	if err := src.history.Err(); err != nil {
		logger.Debug("sales history scrape failed",
			logging.String(logging.FieldEventType, "quote_scrape_failed"),
			logging.Error(err),
		)
	}

	src.released = guarded(func() (*string, error) {
		markup, err := a.source.ReleasePage(ctx, releaseID)
		if err != nil {
			return nil, err
		}
		return marketpage.ExtractReleased(markup), nil
	})
	if err := src.released.Err(); err != nil {
		logger.Debug("release page scrape failed",
			logging.String(logging.FieldEventType, "quote_scrape_failed"),
			logging.Error(err),
		)
	}
}

// guarded runs fetch and turns errors and panics into an unavailable outcome.
func guarded[T any](fetch func() (T, error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Unavailable[T](services.Wrap(services.ErrInternal, "pricing", "source", fmt.Sprintf("panic: %v", r), nil))
		}
	}()
	return fromResult(fetch())
}

func (s *sources) available() int {
	count := 0
	for _, ok := range []bool{
		s.suggestions.ok,
		s.release.ok && s.release.value != nil,
		s.stats.ok && s.stats.value != nil,
		s.history.ok,
		s.released.ok,
	} {
		if ok {
			count++
		}
	}
	return count
}

package catalog

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"byebye/internal/discogs"
	"byebye/internal/logging"
	"byebye/internal/services"
)

// MaxCandidates caps the number of candidates Search returns.
const MaxCandidates = 5

// Searcher is the subset of the Discogs client the resolver needs.
type Searcher interface {
	HasCredential() bool
	Search(ctx context.Context, params discogs.SearchParams) (*discogs.SearchResponse, error)
}

// Resolver turns search fields into candidate releases.
type Resolver struct {
	searcher Searcher
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewResolver builds a Resolver over searcher.
func NewResolver(searcher Searcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		searcher: searcher,
		logger:   logging.NewComponentLogger(logger, "catalog"),
		tracer:   otel.Tracer("byebye/catalog"),
	}
}

// Search returns up to MaxCandidates candidates in upstream order. A blank
// query fails with services.ErrInvalidQuery and a missing token with
// services.ErrMissingCredential; neither touches the network.
func (r *Resolver) Search(ctx context.Context, q Query) ([]Candidate, error) {
	q = q.Normalize()
	ctx, span := r.tracer.Start(ctx, "catalog.search",
		trace.WithAttributes(
			attribute.String("query.catalog_no", q.CatalogNo),
			attribute.Bool("query.has_text", q.Query != ""),
			attribute.Bool("query.has_artist", q.Artist != ""),
			attribute.Bool("query.has_title", q.Title != ""),
		),
	)
	defer span.End()

	if q.Empty() {
		err := services.Wrap(services.ErrInvalidQuery, "catalog", "search", "one of catalog number, query, artist, or title is required", nil)
		span.SetStatus(codes.Error, "invalid query")
		return nil, err
	}
	if r.searcher == nil || !r.searcher.HasCredential() {
		err := services.Wrap(services.ErrMissingCredential, "catalog", "search", "discogs token not configured", nil)
		span.SetStatus(codes.Error, "missing credential")
		return nil, err
	}

	resp, err := r.searcher.Search(ctx, discogs.SearchParams{
		CatalogNo: q.CatalogNo,
		Query:     q.Query,
		Artist:    q.Artist,
		Title:     q.Title,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		logging.WithContext(ctx, r.logger).Debug("catalog search failed",
			logging.String(logging.FieldEventType, "catalog_search_failed"),
			logging.Error(err),
		)
		return nil, err
	}

	var results []discogs.SearchResult
	if resp != nil {
		results = resp.Results
	}
	if len(results) > MaxCandidates {
		results = results[:MaxCandidates]
	}
	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		candidates = append(candidates, fromResult(result))
	}

	span.SetAttributes(attribute.Int("results.upstream", lenResults(resp)), attribute.Int("results.returned", len(candidates)))
	logging.WithContext(ctx, r.logger).Debug("catalog search complete",
		logging.String(logging.FieldEventType, "catalog_search_complete"),
		logging.String("catalog_no", q.CatalogNo),
		logging.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func lenResults(resp *discogs.SearchResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Results)
}

func fromResult(result discogs.SearchResult) Candidate {
	artist, title := SplitTitle(result.Title)
	candidate := Candidate{
		ReleaseID:    result.ID,
		Title:        title,
		Artist:       artist,
		CatalogNo:    result.CatNo,
		Year:         string(result.Year),
		Format:       strings.Join(result.Format, ", "),
		ResourceURL:  result.ResourceURL,
		ThumbnailURL: result.Thumb,
	}
	if len(result.Label) > 0 {
		candidate.Label = result.Label[0]
	}
	return candidate
}

package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"byebye/internal/catalog"
	"byebye/internal/logging"
	"byebye/internal/pricing"
	"byebye/internal/services"
)

type quoteResponse struct {
	*pricing.Quote
	Display map[string]pricing.Display `json:"display"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			s.writeJSON(w, r, http.StatusServiceUnavailable, status)
			return
		}
	}
	s.writeJSON(w, r, http.StatusOK, status)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.writeError(w, r, services.Wrap(services.ErrConfiguration, "api", "search", "catalog search is not configured", nil))
		return
	}
	values := r.URL.Query()
	query := catalog.Query{
		CatalogNo: values.Get("catalogNo"),
		Query:     values.Get("q"),
		Artist:    values.Get("artist"),
		Title:     values.Get("title"),
	}
	candidates, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if candidates == nil {
		candidates = []catalog.Candidate{}
	}
	s.writeJSON(w, r, http.StatusOK, candidates)
}

// handleQuote answers with the quote plus yen display values. With ?itemId=
// the release is remembered on that item.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if s.quoter == nil {
		s.writeError(w, r, services.Wrap(services.ErrConfiguration, "api", "quote", "price quotes are not configured", nil))
		return
	}
	releaseID, err := pathID(r, "releaseID")
	if err != nil {
		s.writeError(w, r, services.Wrap(services.ErrInvalidQuery, "api", "quote", "release id must be a positive integer", nil))
		return
	}
	var itemID int64
	if raw := strings.TrimSpace(r.URL.Query().Get("itemId")); raw != "" {
		itemID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || itemID <= 0 {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "quote", "itemId must be a positive integer", nil))
			return
		}
	}

	quote, err := s.quoter.Quote(r.Context(), releaseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if itemID > 0 && s.store != nil {
		if err := s.store.SetReleaseID(r.Context(), itemID, releaseID); err != nil {
			logging.WarnWithContext(logging.WithContext(services.WithItemID(r.Context(), itemID), s.logger),
				"could not remember release on item", "release_link_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "quote returned but item not linked"),
			)
		}
	}
	s.writeJSON(w, r, http.StatusOK, quoteResponse{Quote: quote, Display: displayValues(quote, s.opts.USDToJPY)})
}

func displayValues(q *pricing.Quote, rate float64) map[string]pricing.Display {
	out := map[string]pricing.Display{
		"lowestListingPrice": pricing.Format(q.LowestListing, rate),
		"historyLow":         pricing.Format(q.HistoryLow, rate),
		"historyMedian":      pricing.Format(q.HistoryMedian, rate),
		"historyHigh":        pricing.Format(q.HistoryHigh, rate),
		"historyAverage":     pricing.Format(q.HistoryAverage, rate),
	}
	for condition, amount := range q.Suggestions {
		out["suggestion:"+condition] = pricing.Format(&amount, rate)
	}
	return out
}

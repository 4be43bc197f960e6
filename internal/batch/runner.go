package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"byebye/internal/catalog"
	"byebye/internal/inventory"
	"byebye/internal/logging"
	"byebye/internal/notifications"
	"byebye/internal/services"
)

// errItemNotFound is recorded for ids the lookup could not resolve.
const errItemNotFound = "item not found"

// Searcher resolves a catalog query to candidates.
type Searcher interface {
	Search(ctx context.Context, q catalog.Query) ([]catalog.Candidate, error)
}

// ItemLookup resolves ids to item records.
type ItemLookup interface {
	ListByIDs(ctx context.Context, ids []int64) ([]*inventory.Item, error)
}

// ItemUpdater applies a patch to one item record.
type ItemUpdater interface {
	UpdateFields(ctx context.Context, id int64, patch inventory.Patch) (*inventory.Item, error)
}

// Observer receives a copy of every item state after each transition.
type Observer func(states []ItemState)

// Runner drives batch identification runs.
type Runner struct {
	searcher  Searcher
	lookup    ItemLookup
	updater   ItemUpdater
	delay     time.Duration
	autoApply bool
	notifier  notifications.Service
	logger    *slog.Logger
	tracer    trace.Tracer

	// OnComplete is called once per finished run, including cancelled runs.
	OnComplete func(Summary)
}

// Option configures a Runner.
type Option func(*Runner)

// WithDelay sets the pause between items.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d < 0 {
			d = 0
		}
		r.delay = d
	}
}

// WithAutoApply controls whether unique matches are written to the item.
func WithAutoApply(enabled bool) Option {
	return func(r *Runner) { r.autoApply = enabled }
}

// WithNotifier publishes completion and failure events.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logging.NewComponentLogger(logger, "batch") }
}

// NewRunner builds a Runner. Auto-apply is on unless disabled.
func NewRunner(searcher Searcher, lookup ItemLookup, updater ItemUpdater, opts ...Option) *Runner {
	r := &Runner{
		searcher:  searcher,
		lookup:    lookup,
		updater:   updater,
		autoApply: true,
		notifier:  notifications.NewService(nil),
		logger:    logging.NewComponentLogger(nil, "batch"),
		tracer:    otel.Tracer("byebye/batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run identifies ids in order. It returns an error only when the items cannot
// be looked up or ctx ends; per-item failures are recorded as outcomes.
func (r *Runner) Run(ctx context.Context, ids []int64, observe Observer) (Summary, error) {
	batchID, ok := services.BatchIDFromContext(ctx)
	if !ok {
		batchID = uuid.NewString()
		ctx = services.WithBatchID(ctx, batchID)
	}
	ctx, span := r.tracer.Start(ctx, "batch.run",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.Int("batch.items", len(ids)),
		),
	)
	defer span.End()
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	states, items, err := r.prepare(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		logging.ErrorWithContext(logger, "batch lookup failed", "batch_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the inventory database is reachable"),
		)
		r.publish(ctx, notifications.EventError, notifications.Payload{"context": "batch identify", "error": err})
		return Summary{BatchID: batchID}, err
	}

	emit := func() {
		if observe != nil {
			observe(snapshot(states))
		}
	}

	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.Int("items", len(states)),
		logging.Bool("auto_apply", r.autoApply),
	)
	emit()

	var runErr error
	processed := 0
	for i := range states {
		if states[i].Outcome.Terminal() {
			continue
		}
		if processed > 0 {
			if err := r.wait(ctx); err != nil {
				runErr = err
				break
			}
		} else if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		processed++
		r.identify(ctx, &states[i], items[states[i].ItemID], emit)
	}

	summary := summarize(batchID, states)
	elapsed := time.Since(started)
	span.SetAttributes(
		attribute.Int("batch.found", summary.Found),
		attribute.Int("batch.errors", summary.Counts[OutcomeError]),
	)
	if runErr != nil {
		span.SetStatus(codes.Error, "batch cancelled")
		logging.WarnWithContext(logger, "batch cancelled", "batch_cancelled",
			logging.Error(runErr),
			logging.Int("pending", summary.Counts[OutcomePending]),
			logging.String(logging.FieldImpact, "remaining items were not searched"),
			logging.String(logging.FieldErrorHint, "rerun identify for the pending items"),
		)
	} else {
		logger.Info("batch completed",
			logging.String(logging.FieldEventType, "batch_completed"),
			logging.Int("found", summary.Found),
			logging.Int("multiple", summary.Counts[OutcomeMultiple]),
			logging.Int("not_found", summary.Counts[OutcomeNotFound]),
			logging.Int("errors", summary.Counts[OutcomeError]),
			logging.Duration("elapsed", elapsed),
		)
		r.publish(ctx, notifications.EventBatchCompleted, notifications.Payload{
			"total":    summary.Total,
			"found":    summary.Found,
			"review":   summary.Review(),
			"failed":   summary.Counts[OutcomeError],
			"duration": elapsed,
		})
	}
	if r.OnComplete != nil {
		r.OnComplete(summary)
	}
	return summary, runErr
}

// prepare resolves ids to items and builds the initial state list in input
// order. Duplicate ids are collapsed; unknown ids start as errors.
func (r *Runner) prepare(ctx context.Context, ids []int64) ([]ItemState, map[int64]*inventory.Item, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found, err := r.lookup.ListByIDs(ctx, unique)
	if err != nil {
		return nil, nil, fmt.Errorf("look up batch items: %w", err)
	}
	items := make(map[int64]*inventory.Item, len(found))
	for _, item := range found {
		if item != nil {
			items[item.ID] = item
		}
	}

	states := make([]ItemState, 0, len(unique))
	for _, id := range unique {
		item, ok := items[id]
		if !ok {
			states = append(states, ItemState{ItemID: id, Outcome: OutcomeError, Error: errItemNotFound})
			continue
		}
		states = append(states, ItemState{
			ItemID:    id,
			SKU:       item.SKU,
			CatalogNo: strings.TrimSpace(item.CatalogNo),
			Outcome:   OutcomePending,
		})
	}
	return states, items, nil
}

// identify moves one item from pending to a terminal outcome.
func (r *Runner) identify(ctx context.Context, state *ItemState, item *inventory.Item, emit func()) {
	ctx = services.WithItemID(ctx, state.ItemID)
	logger := logging.WithContext(ctx, r.logger).With(logging.String(logging.FieldSKU, state.SKU))

	if state.CatalogNo == "" {
		state.Outcome = OutcomeNotFound
		emit()
		logger.Debug("item has no catalog number",
			logging.String(logging.FieldEventType, "batch_item_skipped"),
		)
		return
	}

	state.Outcome = OutcomeSearching
	emit()

	candidates, err := r.search(ctx, state.CatalogNo)
	switch {
	case err != nil:
		state.Outcome = OutcomeError
		state.Error = err.Error()
		logging.WarnWithContext(logger, "catalog search failed", "batch_item_failed",
			logging.Error(err),
			logging.String("catalog_no", state.CatalogNo),
			logging.String(logging.FieldErrorHint, "search the item manually once the upstream recovers"),
			logging.String(logging.FieldImpact, "item left unidentified"),
		)
	case len(candidates) == 0:
		state.Outcome = OutcomeNotFound
	case len(candidates) > 1:
		state.Outcome = OutcomeMultiple
	default:
		candidate := candidates[0]
		state.Candidate = &candidate
		state.Outcome = OutcomeFound
		if r.autoApply {
			if err := r.apply(ctx, item, candidate); err != nil {
				state.Outcome = OutcomeError
				state.Error = err.Error()
				logging.WarnWithContext(logger, "applying match failed", "batch_apply_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "item record left unchanged"),
				)
			}
		}
	}
	emit()
	logger.Debug("item identified",
		logging.String(logging.FieldEventType, "batch_item_done"),
		logging.String("outcome", string(state.Outcome)),
		logging.Int("candidates", len(candidates)),
	)
}

// search calls the resolver, turning a panic into an error outcome.
func (r *Runner) search(ctx context.Context, catalogNo string) (candidates []catalog.Candidate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			candidates = nil
			err = services.Wrap(services.ErrInternal, "batch", "search", fmt.Sprintf("panic: %v", rec), nil)
		}
	}()
	return r.searcher.Search(ctx, catalog.Query{CatalogNo: catalogNo})
}

func (r *Runner) apply(ctx context.Context, item *inventory.Item, candidate catalog.Candidate) error {
	if r.updater == nil || item == nil {
		return errors.New("no item store to apply the match to")
	}
	var patch inventory.Patch
	if title := strings.TrimSpace(candidate.Title); title != "" {
		patch.Title = &title
	}
	if artist := strings.TrimSpace(candidate.Artist); artist != "" {
		patch.Artist = &artist
	}
	if patch.Empty() {
		return nil
	}
	_, err := r.updater.UpdateFields(ctx, item.ID, patch)
	return err
}

func (r *Runner) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) publish(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(context.WithoutCancel(ctx), event, payload); err != nil {
		r.logger.Warn("notification failed",
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String("event", string(event)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "batch result was not pushed"),
		)
	}
}

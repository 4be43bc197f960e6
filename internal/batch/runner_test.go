package batch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"byebye/internal/batch"
	"byebye/internal/catalog"
	"byebye/internal/inventory"
	"byebye/internal/notifications"
	"byebye/internal/services"
	"byebye/internal/testsupport"
)

type scriptedSearcher struct {
	mu      sync.Mutex
	results map[string][]catalog.Candidate
	errs    map[string]error
	calls   []string
	onCall  func(catalogNo string)
}

func (s *scriptedSearcher) Search(_ context.Context, q catalog.Query) ([]catalog.Candidate, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q.CatalogNo)
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall(q.CatalogNo)
	}
	if err := s.errs[q.CatalogNo]; err != nil {
		return nil, err
	}
	return s.results[q.CatalogNo], nil
}

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

func outcomes(states []batch.ItemState) []batch.Outcome {
	out := make([]batch.Outcome, len(states))
	for i, s := range states {
		out[i] = s.Outcome
	}
	return out
}

func equalOutcomes(a, b []batch.Outcome) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRunClassifiesAndAppliesUniqueMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	noCatalog := testsupport.NewItem(t, store, "", "", "")
	unknown := testsupport.NewItem(t, store, "", "", "NOPE-1")
	match := testsupport.NewItem(t, store, "", "", "SRCL-1234")

	searcher := &scriptedSearcher{results: map[string][]catalog.Candidate{
		"SRCL-1234": {{Title: "Homework", Artist: "Daft Punk", CatalogNo: "SRCL-1234", ReleaseID: 9}},
	}}
	notifier := &recordingNotifier{}
	var completed *batch.Summary
	runner := batch.NewRunner(searcher, store, store, batch.WithNotifier(notifier))
	runner.OnComplete = func(s batch.Summary) { completed = &s }

	var snapshots [][]batch.ItemState
	summary, err := runner.Run(context.Background(), []int64{noCatalog.ID, unknown.ID, match.ID}, func(states []batch.ItemState) {
		snapshots = append(snapshots, states)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []batch.Outcome{batch.OutcomeNotFound, batch.OutcomeNotFound, batch.OutcomeFound}
	if got := outcomes(summary.States); !equalOutcomes(got, want) {
		t.Fatalf("unexpected outcomes %v, want %v", got, want)
	}
	if summary.Found != 1 || summary.Total != 3 || summary.Review() != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.BatchID == "" {
		t.Fatal("expected generated batch id")
	}
	if len(searcher.calls) != 2 {
		t.Fatalf("expected item without catalog number to skip search, calls=%v", searcher.calls)
	}
	if completed == nil || completed.Found != 1 {
		t.Fatalf("expected completion callback, got %+v", completed)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventBatchCompleted {
		t.Fatalf("unexpected notifications %v", notifier.events)
	}

	first := snapshots[0]
	if got := outcomes(first); !equalOutcomes(got, []batch.Outcome{batch.OutcomePending, batch.OutcomePending, batch.OutcomePending}) {
		t.Fatalf("expected all pending initially, got %v", got)
	}
	sawSearching := false
	for _, snap := range snapshots {
		if snap[2].Outcome == batch.OutcomeSearching {
			sawSearching = true
		}
	}
	if !sawSearching {
		t.Fatal("expected a searching snapshot for the matched item")
	}
	// Observers get copies; the initial snapshot stays pending.
	if first[2].Outcome != batch.OutcomePending {
		t.Fatalf("snapshot mutated after emit: %v", first[2].Outcome)
	}

	updated, err := store.GetByID(context.Background(), match.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Title != "Homework" || updated.Artist != "Daft Punk" {
		t.Fatalf("expected match applied, got %q / %q", updated.Artist, updated.Title)
	}
	untouched, err := store.GetByID(context.Background(), unknown.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if untouched.Title != "" || untouched.Artist != "" {
		t.Fatalf("expected not_found item untouched, got %+v", untouched)
	}
}

func TestRunWaitsBetweenEveryItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	noCatalog := testsupport.NewItem(t, store, "", "", "")
	first := testsupport.NewItem(t, store, "", "", "X-1")
	second := testsupport.NewItem(t, store, "", "", "Y-2")

	const delay = 80 * time.Millisecond
	var (
		mu     sync.Mutex
		stamps []time.Time
	)
	searcher := &scriptedSearcher{
		results: map[string][]catalog.Candidate{
			"Y-2": {{Title: "Discovery", Artist: "Daft Punk", CatalogNo: "Y-2"}},
		},
		onCall: func(string) {
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		},
	}
	runner := batch.NewRunner(searcher, store, store, batch.WithDelay(delay))

	started := time.Now()
	summary, err := runner.Run(context.Background(), []int64{noCatalog.ID, first.ID, second.ID}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []batch.Outcome{batch.OutcomeNotFound, batch.OutcomeNotFound, batch.OutcomeFound}
	if got := outcomes(summary.States); !equalOutcomes(got, want) {
		t.Fatalf("unexpected outcomes %v, want %v", got, want)
	}
	if len(stamps) != 2 {
		t.Fatalf("expected two searches, got %d", len(stamps))
	}
	// The item without a catalog number made no request but still paces the next one.
	if gap := stamps[0].Sub(started); gap < delay {
		t.Fatalf("first search %v after start, want at least %v", gap, delay)
	}
	if gap := stamps[1].Sub(stamps[0]); gap < delay {
		t.Fatalf("searches %v apart, want at least %v", gap, delay)
	}

	updated, err := store.GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.Title != "Discovery" {
		t.Fatalf("expected match applied, got %q", updated.Title)
	}
}

func TestRunMultipleAndErrorsNeverMutate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ambiguous := testsupport.NewItem(t, store, "", "", "AMB-1")
	failing := testsupport.NewItem(t, store, "", "", "ERR-1")

	searcher := &scriptedSearcher{
		results: map[string][]catalog.Candidate{
			"AMB-1": {{Title: "One"}, {Title: "Two"}},
		},
		errs: map[string]error{
			"ERR-1": &services.UpstreamError{Operation: "search", StatusCode: 503},
		},
	}
	runner := batch.NewRunner(searcher, store, store)
	summary, err := runner.Run(context.Background(), []int64{ambiguous.ID, failing.ID, 999999}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []batch.Outcome{batch.OutcomeMultiple, batch.OutcomeError, batch.OutcomeError}
	if got := outcomes(summary.States); !equalOutcomes(got, want) {
		t.Fatalf("unexpected outcomes %v, want %v", got, want)
	}
	if summary.States[2].Error != "item not found" {
		t.Fatalf("unexpected error for unknown id: %q", summary.States[2].Error)
	}
	if summary.States[1].Error == "" {
		t.Fatal("expected resolver error message")
	}
	for _, id := range []int64{ambiguous.ID, failing.ID} {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item.Title != "" {
			t.Fatalf("expected item %d untouched, got title %q", id, item.Title)
		}
	}
}

func TestRunWithoutAutoApplyLeavesRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, store, "", "", "ONE-1")

	searcher := &scriptedSearcher{results: map[string][]catalog.Candidate{
		"ONE-1": {{Title: "Only", Artist: "Match"}},
	}}
	summary, err := batch.NewRunner(searcher, store, store, batch.WithAutoApply(false)).
		Run(context.Background(), []int64{item.ID}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.States[0].Outcome != batch.OutcomeFound || summary.States[0].Candidate == nil {
		t.Fatalf("expected found with candidate, got %+v", summary.States[0])
	}
	got, _ := store.GetByID(context.Background(), item.ID)
	if got.Title != "" {
		t.Fatalf("expected no update without auto apply, got %q", got.Title)
	}
}

type failingUpdater struct{}

func (failingUpdater) UpdateFields(context.Context, int64, inventory.Patch) (*inventory.Item, error) {
	return nil, errors.New("disk full")
}

func TestRunUpdateFailureIsItemError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, store, "", "", "ONE-1")

	searcher := &scriptedSearcher{results: map[string][]catalog.Candidate{
		"ONE-1": {{Title: "Only", Artist: "Match"}},
	}}
	summary, err := batch.NewRunner(searcher, store, failingUpdater{}).Run(context.Background(), []int64{item.ID}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.States[0].Outcome != batch.OutcomeError {
		t.Fatalf("expected error outcome, got %s", summary.States[0].Outcome)
	}
}

func TestRunCancellationLeavesRemainingPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	a := testsupport.NewItem(t, store, "", "", "A-1")
	b := testsupport.NewItem(t, store, "", "", "B-1")
	c := testsupport.NewItem(t, store, "", "", "C-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	searcher := &scriptedSearcher{onCall: func(string) { cancel() }}

	summary, err := batch.NewRunner(searcher, store, store).Run(ctx, []int64{a.ID, b.ID, c.ID}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	want := []batch.Outcome{batch.OutcomeNotFound, batch.OutcomePending, batch.OutcomePending}
	if got := outcomes(summary.States); !equalOutcomes(got, want) {
		t.Fatalf("unexpected outcomes %v, want %v", got, want)
	}
	if len(searcher.calls) != 1 {
		t.Fatalf("expected one search before cancellation, got %v", searcher.calls)
	}
}

func TestRunUsesBatchIDFromContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := services.WithBatchID(context.Background(), "batch-fixed")
	summary, err := batch.NewRunner(&scriptedSearcher{}, store, store).Run(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.BatchID != "batch-fixed" || summary.Total != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestStreamDeliversFinalSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, store, "", "", "ONE-1")
	searcher := &scriptedSearcher{results: map[string][]catalog.Candidate{
		"ONE-1": {{Title: "Only"}},
	}}

	var last batch.Update
	count := 0
	for update := range batch.Stream(context.Background(), batch.NewRunner(searcher, store, store), []int64{item.ID}) {
		last = update
		count++
	}
	if count < 3 {
		t.Fatalf("expected initial, searching, and final updates, got %d", count)
	}
	if last.Summary == nil || last.Summary.Found != 1 || last.Err != nil {
		t.Fatalf("unexpected final update %+v", last)
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	path := t.TempDir() + "/nested/batch.lock"
	first, err := batch.AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := batch.AcquireLock(path); !errors.Is(err, batch.ErrBusy) {
		t.Fatalf("expected ErrBusy while held, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	second, err := batch.AcquireLock(path)
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	_ = second.Release()
}

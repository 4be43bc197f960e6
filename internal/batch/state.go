package batch

import (
	"byebye/internal/catalog"
)

// Outcome is the per-item state of a batch run.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSearching Outcome = "searching"
	OutcomeFound     Outcome = "found"
	OutcomeMultiple  Outcome = "multiple"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeError     Outcome = "error"
)

// Terminal reports whether the outcome ends the item's run.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeFound, OutcomeMultiple, OutcomeNotFound, OutcomeError:
		return true
	default:
		return false
	}
}

// ItemState is one row of a batch run.
type ItemState struct {
	ItemID    int64              `json:"itemId" yaml:"item_id"`
	SKU       string             `json:"sku" yaml:"sku"`
	CatalogNo string             `json:"catalogNo,omitempty" yaml:"catalog_no,omitempty"`
	Outcome   Outcome            `json:"outcome" yaml:"outcome"`
	Candidate *catalog.Candidate `json:"candidate,omitempty" yaml:"candidate,omitempty"`
	Error     string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary totals a finished run.
type Summary struct {
	BatchID string          `json:"batchId" yaml:"batch_id"`
	Total   int             `json:"total" yaml:"total"`
	Found   int             `json:"found" yaml:"found"`
	Counts  map[Outcome]int `json:"counts" yaml:"counts"`
	States  []ItemState     `json:"items" yaml:"items"`
}

// Review is the number of items that need a manual decision.
func (s Summary) Review() int {
	return s.Counts[OutcomeMultiple] + s.Counts[OutcomeNotFound]
}

func summarize(batchID string, states []ItemState) Summary {
	summary := Summary{
		BatchID: batchID,
		Total:   len(states),
		Counts:  make(map[Outcome]int),
		States:  snapshot(states),
	}
	for _, state := range states {
		summary.Counts[state.Outcome]++
	}
	summary.Found = summary.Counts[OutcomeFound]
	return summary
}

func snapshot(states []ItemState) []ItemState {
	out := make([]ItemState, len(states))
	copy(out, states)
	return out
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"byebye/internal/batch"
	"byebye/internal/inventory"
	"byebye/internal/logging"
	"byebye/internal/services"
)

// batchRequest selects items by id, or by a saved view name when ids is empty.
type batchRequest struct {
	IDs  []int64 `json:"ids"`
	View string  `json:"view"`
}

type batchLine struct {
	BatchID string            `json:"batchId"`
	Items   []batch.ItemState `json:"items"`
	Summary *batch.Summary    `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// handleBatchIdentify streams one NDJSON line per state change. The final
// line carries the summary.
func (s *Server) handleBatchIdentify(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, r, services.Wrap(services.ErrConfiguration, "api", "batch", "batch identification is not configured", nil))
		return
	}
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := s.batchIDs(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lock, err := batch.AcquireLock(s.opts.BatchLockPath)
	if errors.Is(err, batch.ErrBusy) {
		s.writeMessage(w, r, http.StatusConflict, "busy", err.Error())
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.Warn("batch lock release failed",
				logging.String(logging.FieldEventType, "batch_lock_release_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+lock.Path()+" if no run is active"),
				logging.String(logging.FieldImpact, "later batch runs may report busy"),
			)
		}
	}()

	// A batch run outlives the server's write timeout.
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	// The run finishes even if the client disconnects; only the stream is lost.
	batchID := uuid.NewString()
	ctx := services.WithBatchID(context.WithoutCancel(r.Context()), batchID)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	for update := range batch.Stream(ctx, s.runner, ids) {
		line := batchLine{BatchID: batchID, Items: update.States, Summary: update.Summary}
		if update.Err != nil {
			line.Error = update.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			// Client went away; keep draining until the run completes.
			continue
		}
		_ = rc.Flush()
	}
}

func (s *Server) batchIDs(r *http.Request, req batchRequest) ([]int64, error) {
	if len(req.IDs) > 0 {
		return req.IDs, nil
	}
	name := strings.TrimSpace(req.View)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "batch", "ids or view is required", nil)
	}
	view, err := s.store.GetViewByName(r.Context(), name)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "batch", "view "+name+" not found", nil)
	}
	filter := view.Filter
	items, err := s.store.List(r.Context(), filter)
	if err != nil {
		return nil, err
	}
	return itemIDs(items), nil
}

func itemIDs(items []*inventory.Item) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

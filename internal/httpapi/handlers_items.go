package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"byebye/internal/inventory"
	"byebye/internal/services"
)

type captureRequest struct {
	Path string                `json:"path"`
	Kind inventory.CaptureKind `json:"kind"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	filter, err := s.filterFromQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []*inventory.Item{}
	}
	s.writeJSON(w, r, http.StatusOK, items)
}

// filterFromQuery builds a filter from ?view=, then applies explicit
// text/format/unidentified/limit parameters on top.
func (s *Server) filterFromQuery(r *http.Request) (inventory.Filter, error) {
	values := r.URL.Query()
	var filter inventory.Filter
	if name := strings.TrimSpace(values.Get("view")); name != "" {
		view, err := s.store.GetViewByName(r.Context(), name)
		if err != nil {
			return filter, err
		}
		if view == nil {
			return filter, services.Wrap(services.ErrNotFound, "api", "list items", "view "+strconv.Quote(name)+" not found", nil)
		}
		filter = view.Filter
	}
	if text := strings.TrimSpace(values.Get("text")); text != "" {
		filter.Text = text
	}
	if raw := strings.TrimSpace(values.Get("format")); raw != "" {
		format, err := inventory.ParseFormat(raw)
		if err != nil {
			return filter, services.Wrap(services.ErrValidation, "api", "list items", err.Error(), nil)
		}
		filter.Format = format
	}
	if raw := strings.TrimSpace(values.Get("unidentified")); raw != "" {
		unidentified, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, services.Wrap(services.ErrValidation, "api", "list items", "unidentified must be a boolean", nil)
		}
		filter.Unidentified = unidentified
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, services.Wrap(services.ErrValidation, "api", "list items", "limit must be a non-negative integer", nil)
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in inventory.NewItem
	if err := s.decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.CreateItem(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/items/"+strconv.FormatInt(item.ID, 10))
	s.writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item == nil {
		s.writeError(w, r, notFound("item", id))
		return
	}
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch inventory.Patch
	if err := s.decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.UpdateFields(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, notFound("item", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if item == nil {
		s.writeError(w, r, notFound("item", id))
		return
	}
	captures, err := s.store.ListCaptures(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if captures == nil {
		captures = []*inventory.Capture{}
	}
	s.writeJSON(w, r, http.StatusOK, captures)
}

func (s *Server) handleAddCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "itemID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req captureRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	capture, err := s.store.AddCapture(r.Context(), id, req.Path, req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, capture)
}

func (s *Server) handleDeleteCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "captureID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.store.DeleteCapture(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, notFound("capture", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

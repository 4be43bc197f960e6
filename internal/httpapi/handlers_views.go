package httpapi

import (
	"net/http"

	"byebye/internal/inventory"
)

type viewRequest struct {
	Name   string           `json:"name"`
	Filter inventory.Filter `json:"filter"`
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	views, err := s.store.ListViews(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if views == nil {
		views = []*inventory.View{}
	}
	s.writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.store.SaveView(r.Context(), req.Name, req.Filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "viewID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed, err := s.store.DeleteView(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, notFound("view", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

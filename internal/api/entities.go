package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atticlabs/attic/internal/entity"
)

// handleListEntities returns entity projections.
// Query parameters: type (export grouping label), domain.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	var (
		entities []entity.Entity
		err      error
	)

	switch {
	case r.URL.Query().Get("type") != "":
		entities, err = s.entities.ListByType(r.Context(), r.URL.Query().Get("type"))
	case r.URL.Query().Get("domain") != "":
		entities, err = s.entities.ListByDomain(r.Context(), r.URL.Query().Get("domain"))
	default:
		entities, err = s.entities.List(r.Context())
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if entities == nil {
		entities = []entity.Entity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleSearchEntities searches entity ids and friendly names.
// Query parameters: q (required).
func (s *Server) handleSearchEntities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeBadRequest(w, "query parameter q is required")
		return
	}

	entities, err := s.entities.Search(r.Context(), query)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if entities == nil {
		entities = []entity.Entity{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": entities,
		"count":    len(entities),
	})
}

// handleGetEntity returns one entity projection.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := s.entities.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrEntityNotFound) {
			writeNotFound(w, "entity not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, e)
}

// handleGetEntityState returns the most recent state row with attributes.
func (s *Server) handleGetEntityState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := s.history.GetCurrentState(r.Context(), id)
	if err != nil {
		if errors.Is(err, entity.ErrStateNotFound) {
			writeNotFound(w, "no recorded state for entity")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// handleGetEntityHistory returns state rows newest-first.
// Query parameters: since, until (RFC 3339), limit.
func (s *Server) handleGetEntityHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	filter, err := parseHistoryFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	history, err := s.history.GetHistory(r.Context(), id, filter)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if history == nil {
		history = []entity.State{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id": id,
		"states":    history,
		"count":     len(history),
	})
}

// parseHistoryFilter reads the since/until/limit query parameters.
func parseHistoryFilter(r *http.Request) (entity.HistoryFilter, error) {
	var filter entity.HistoryFilter

	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid since timestamp")
		}
		filter.Since = &t
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid until timestamp")
		}
		filter.Until = &t
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, errors.New("invalid limit")
		}
		filter.Limit = limit
	}

	return filter, nil
}

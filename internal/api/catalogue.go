package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atticlabs/attic/internal/services"
)

// handleListServices returns the service catalogue.
// Query parameters: domain.
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	var (
		catalogue []services.Service
		err       error
	)

	if domain := r.URL.Query().Get("domain"); domain != "" {
		catalogue, err = s.services.ListByDomain(r.Context(), domain)
	} else {
		catalogue, err = s.services.List(r.Context())
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if catalogue == nil {
		catalogue = []services.Service{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"services": catalogue,
		"count":    len(catalogue),
	})
}

// handleGetService returns one service by its "domain.service" full name.
func (s *Server) handleGetService(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	svc, err := s.services.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			writeNotFound(w, "service not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, svc)
}

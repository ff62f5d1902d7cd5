package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atticlabs/attic/internal/snapshot"
)

// defaultSnapshotLimit caps snapshot listings unless the caller asks for more.
const defaultSnapshotLimit = 50

// handleListSnapshots returns snapshots newest-first.
// Query parameters: limit (default 50, 0 for unlimited).
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := defaultSnapshotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	snapshots, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []snapshot.Snapshot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// handleGetSnapshot returns one snapshot by id.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, err := s.snapshots.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			writeNotFound(w, "snapshot not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

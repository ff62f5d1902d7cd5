package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/atticlabs/attic/internal/importer"
)

// handleImport accepts a full-state export document and runs the import
// pipeline on it.
//
// Responses:
//   - 201 with the finalised snapshot and run statistics on success
//   - 400 when the body is not a JSON object
//   - 409 when another import is already in flight
//   - 500 when the run fails; the failed snapshot remains queryable
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	doc, err := importer.ParseDocument(body)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.importer.Import(r.Context(), doc)
	if err != nil {
		if errors.Is(err, importer.ErrImportInProgress) {
			writeConflict(w, err.Error())
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

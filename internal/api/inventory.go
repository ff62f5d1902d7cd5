package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atticlabs/attic/internal/inventory"
)

// handleListAreas returns all areas.
func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := s.inventory.ListAreas(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if areas == nil {
		areas = []inventory.Area{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"areas": areas,
		"count": len(areas),
	})
}

// handleGetArea returns one area.
func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	area, err := s.inventory.GetArea(r.Context(), id)
	if err != nil {
		if errors.Is(err, inventory.ErrAreaNotFound) {
			writeNotFound(w, "area not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, area)
}

// handleListAreaDevices returns the devices assigned to an area.
func (s *Server) handleListAreaDevices(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	devices, err := s.inventory.ListDevicesByArea(r.Context(), id)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if devices == nil {
		devices = []inventory.Device{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleListDevices returns all devices.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.inventory.ListDevices(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if devices == nil {
		devices = []inventory.Device{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	device, err := s.inventory.GetDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, inventory.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, device)
}

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atticlabs/attic/internal/profiles"
)

// handleListPersons returns all persons.
func (s *Server) handleListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := s.profiles.ListPersons(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if persons == nil {
		persons = []profiles.Person{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"persons": persons,
		"count":   len(persons),
	})
}

// handleGetPerson returns one person.
func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	person, err := s.profiles.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, profiles.ErrPersonNotFound) {
			writeNotFound(w, "person not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, person)
}

// handleListZones returns all zones.
func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.profiles.ListZones(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if zones == nil {
		zones = []profiles.Zone{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"zones": zones,
		"count": len(zones),
	})
}

// handleGetZone returns one zone.
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	zone, err := s.profiles.GetZone(r.Context(), id)
	if err != nil {
		if errors.Is(err, profiles.ErrZoneNotFound) {
			writeNotFound(w, "zone not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, zone)
}

// handleListAutomations returns all automations.
func (s *Server) handleListAutomations(w http.ResponseWriter, r *http.Request) {
	automations, err := s.profiles.ListAutomations(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if automations == nil {
		automations = []profiles.Automation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"automations": automations,
		"count":       len(automations),
	})
}

// handleGetAutomation returns one automation.
func (s *Server) handleGetAutomation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	automation, err := s.profiles.GetAutomation(r.Context(), id)
	if err != nil {
		if errors.Is(err, profiles.ErrAutomationNotFound) {
			writeNotFound(w, "automation not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, automation)
}

// handleListMediaPlayers returns all media players.
func (s *Server) handleListMediaPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.profiles.ListMediaPlayers(r.Context())
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if players == nil {
		players = []profiles.MediaPlayer{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"media_players": players,
		"count":         len(players),
	})
}

// handleGetMediaPlayer returns one media player.
func (s *Server) handleGetMediaPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	player, err := s.profiles.GetMediaPlayer(r.Context(), id)
	if err != nil {
		if errors.Is(err, profiles.ErrMediaPlayerNotFound) {
			writeNotFound(w, "media player not found")
			return
		}
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, player)
}

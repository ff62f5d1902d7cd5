package importer

import (
	"context"
	"fmt"

	"github.com/atticlabs/attic/internal/profiles"
)

// project dispatches an entity record to the specialised projector for
// its grouping label. Unrecognised labels are skipped; the generic rows
// written by importEntity stand regardless.
func (s *Service) project(ctx context.Context, label, entityID, objectID string, friendlyName *string, attrs Record) error {
	switch label {
	case "person":
		return s.projectPerson(ctx, entityID, objectID, friendlyName, attrs)
	case "zone":
		return s.projectZone(ctx, entityID, objectID, friendlyName, attrs)
	case "automation":
		return s.projectAutomation(ctx, entityID, objectID, friendlyName, attrs)
	case "media_player":
		return s.projectMediaPlayer(ctx, entityID, attrs)
	default:
		return nil
	}
}

func (s *Service) projectPerson(ctx context.Context, entityID, objectID string, friendlyName *string, attrs Record) error {
	if attrs == nil {
		attrs = Record{}
	}

	// The object id stands in for the registry id when the export
	// omits it; either way the row is keyed on the entity id.
	personID := attrs.String("id")
	if personID == "" {
		personID = objectID
	}

	name := objectID
	if friendlyName != nil {
		name = *friendlyName
	}

	p := &profiles.Person{
		PersonID:       personID,
		EntityID:       entityID,
		Name:           name,
		UserID:         attrs.StringPtr("user_id"),
		DeviceTrackers: attrs.Strings("device_trackers"),
		Latitude:       attrs.FloatPtr("latitude"),
		Longitude:      attrs.FloatPtr("longitude"),
		GPSAccuracy:    attrs.FloatPtr("gps_accuracy"),
	}
	if err := s.profiles.UpsertPerson(ctx, p); err != nil {
		return fmt.Errorf("projecting person %q: %w", entityID, err)
	}
	return nil
}

func (s *Service) projectZone(ctx context.Context, entityID, objectID string, friendlyName *string, attrs Record) error {
	if attrs == nil {
		attrs = Record{}
	}

	name := objectID
	if friendlyName != nil {
		name = *friendlyName
	}

	z := &profiles.Zone{
		EntityID:  entityID,
		Name:      name,
		Latitude:  attrs.FloatPtr("latitude"),
		Longitude: attrs.FloatPtr("longitude"),
		Radius:    attrs.FloatPtr("radius"),
		Passive:   attrs.Bool("passive"),
		Persons:   attrs.Strings("persons"),
		Icon:      attrs.StringPtr("icon"),
	}
	if err := s.profiles.UpsertZone(ctx, z); err != nil {
		return fmt.Errorf("projecting zone %q: %w", entityID, err)
	}
	return nil
}

func (s *Service) projectAutomation(ctx context.Context, entityID, objectID string, friendlyName *string, attrs Record) error {
	if attrs == nil {
		attrs = Record{}
	}

	automationID := attrs.String("id")
	if automationID == "" {
		automationID = objectID
	}

	alias := attrs.String("alias")
	if alias == "" && friendlyName != nil {
		alias = *friendlyName
	}

	mode := attrs.String("mode")
	if mode == "" {
		mode = profiles.DefaultAutomationMode
	}

	a := &profiles.Automation{
		AutomationID: automationID,
		EntityID:     entityID,
		Alias:        alias,
		Description:  attrs.StringPtr("description"),
		Mode:         mode,
		CurrentRuns:  attrs.Int("current"),
		MaxRuns:      attrs.IntPtr("max"),
	}
	if err := s.profiles.UpsertAutomation(ctx, a); err != nil {
		return fmt.Errorf("projecting automation %q: %w", entityID, err)
	}
	return nil
}

func (s *Service) projectMediaPlayer(ctx context.Context, entityID string, attrs Record) error {
	if attrs == nil {
		attrs = Record{}
	}

	m := &profiles.MediaPlayer{
		EntityID:         entityID,
		VolumeLevel:      attrs.FloatPtr("volume_level"),
		IsMuted:          attrs.Bool("is_volume_muted"),
		MediaContentType: attrs.StringPtr("media_content_type"),
		MediaTitle:       attrs.StringPtr("media_title"),
		MediaArtist:      attrs.StringPtr("media_artist"),
		GroupMembers:     attrs.Strings("group_members"),
	}
	if err := s.profiles.UpsertMediaPlayer(ctx, m); err != nil {
		return fmt.Errorf("projecting media player %q: %w", entityID, err)
	}
	return nil
}

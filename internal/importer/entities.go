package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atticlabs/attic/internal/entity"
)

// importEntities walks the entity section: for every record it upserts
// the entity projection, appends one state row with its classified
// attribute rows, and dispatches to a specialised projector when the
// grouping label names one.
func (s *Service) importEntities(ctx context.Context, snapshotID string, groups map[string][]Record, stats *Stats) error {
	for _, label := range sortedKeys(groups) {
		for _, rec := range groups[label] {
			if err := s.importEntity(ctx, snapshotID, label, rec, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

// importEntity ingests a single entity record.
func (s *Service) importEntity(ctx context.Context, snapshotID, label string, rec Record, stats *Stats) error {
	entityID := rec.String("entity_id")
	domain, objectID, ok := splitEntityID(entityID)
	if !ok {
		s.logger.Debug("skipping entity without a well-formed id",
			"entity_id", entityID, "type", label)
		stats.Skipped++
		return nil
	}

	attrs := rec.Map("attributes")

	// Friendly name falls back from the top-level field to the attribute.
	friendlyName := rec.StringPtr("friendly_name")
	if friendlyName == nil && attrs != nil {
		friendlyName = attrs.StringPtr("friendly_name")
	}

	e := &entity.Entity{
		EntityID:     entityID,
		EntityType:   label,
		Domain:       domain,
		ObjectID:     objectID,
		FriendlyName: friendlyName,
		DeviceID:     rec.StringPtr("device_id"),
		AreaID:       rec.StringPtr("area_id"),
	}
	if err := s.entities.Upsert(ctx, e); err != nil {
		return fmt.Errorf("importing entity %q: %w", entityID, err)
	}
	stats.Entities++

	lastChanged, err := rec.TimePtr("last_changed")
	if err != nil {
		return fmt.Errorf("entity %q: parsing last_changed: %w", entityID, err)
	}
	lastUpdated, err := rec.TimePtr("last_updated")
	if err != nil {
		return fmt.Errorf("entity %q: parsing last_updated: %w", entityID, err)
	}

	var stateClass *string
	if attrs != nil {
		stateClass = attrs.StringPtr("state_class")
	}

	state := &entity.State{
		EntityID:    entityID,
		SnapshotID:  snapshotID,
		StateValue:  rec.StringPtr("state"),
		StateClass:  stateClass,
		LastChanged: lastChanged,
		LastUpdated: lastUpdated,
	}
	stateID, err := s.history.AppendState(ctx, state)
	if err != nil {
		return fmt.Errorf("appending state for %q: %w", entityID, err)
	}
	stats.States++

	if attrs != nil {
		rows, err := buildAttributeRows(attrs)
		if err != nil {
			return fmt.Errorf("entity %q: %w", entityID, err)
		}
		if err := s.history.AppendAttributes(ctx, stateID, rows); err != nil {
			return fmt.Errorf("appending attributes for %q: %w", entityID, err)
		}
		stats.Attributes += len(rows)
	}

	if s.mirror != nil {
		s.mirrorState(entityID, domain, rec, lastUpdated)
	}

	return s.project(ctx, label, entityID, objectID, friendlyName, attrs)
}

// splitEntityID splits "domain.object_id" on the first dot.
// Records without a well-formed identifier are not importable.
func splitEntityID(entityID string) (domain, objectID string, ok bool) {
	domain, objectID, found := strings.Cut(entityID, ".")
	if !found || domain == "" {
		return "", "", false
	}
	return domain, objectID, true
}

// buildAttributeRows classifies and serialises an attributes map.
// Keys are sorted so repeated imports write rows in a stable order.
func buildAttributeRows(attrs Record) ([]entity.Attribute, error) {
	rows := make([]entity.Attribute, 0, len(attrs))
	for _, key := range sortedKeys(attrs) {
		value := attrs[key]

		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshalling attribute %q: %w", key, err)
		}
		serialised := string(data)

		rows = append(rows, entity.Attribute{
			Key:   key,
			Value: &serialised,
			Type:  Classify(value),
		})
	}
	return rows, nil
}

// mirrorState forwards one state row to the time-series mirror.
// WriteEntityState never errors; a down mirror cannot fail an import.
func (s *Service) mirrorState(entityID, domain string, rec Record, lastUpdated *time.Time) {
	stateValue := rec.String("state")
	if stateValue == "" {
		return
	}

	ts := time.Now()
	if lastUpdated != nil {
		ts = *lastUpdated
	}
	s.mirror.WriteEntityState(entityID, domain, stateValue, ts)
}

// sortedKeys returns a map's keys in ascending order, for deterministic
// iteration over decoded JSON objects.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

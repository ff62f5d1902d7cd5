package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/atticlabs/attic/internal/entity"
	"github.com/atticlabs/attic/internal/infrastructure/influxdb"
	"github.com/atticlabs/attic/internal/infrastructure/logging"
	"github.com/atticlabs/attic/internal/infrastructure/mqtt"
	"github.com/atticlabs/attic/internal/inventory"
	"github.com/atticlabs/attic/internal/profiles"
	"github.com/atticlabs/attic/internal/services"
	"github.com/atticlabs/attic/internal/snapshot"
)

// Stats counts the rows written by one import run.
type Stats struct {
	Areas      int `json:"areas"`
	Devices    int `json:"devices"`
	Entities   int `json:"entities"`
	States     int `json:"states"`
	Attributes int `json:"attributes"`
	Services   int `json:"services"`
	Skipped    int `json:"skipped"`
}

// Result is the outcome of a successful import run.
type Result struct {
	Snapshot *snapshot.Snapshot `json:"snapshot"`
	Stats    Stats              `json:"stats"`
}

// Service orchestrates import runs.
//
// The zero value is not usable; construct with New. The optional MQTT and
// InfluxDB clients may be nil, in which case announcements and mirroring
// are skipped.
type Service struct {
	snapshots snapshot.Repository
	inventory inventory.Repository
	entities  entity.Repository
	history   entity.HistoryRepository
	profiles  profiles.Repository
	services  services.Repository
	logger    *logging.Logger

	announcer *mqtt.Client
	mirror    *influxdb.Client

	// slot is a single-slot semaphore serialising import runs.
	slot chan struct{}
}

// Deps bundles the collaborators an import Service needs.
type Deps struct {
	Snapshots snapshot.Repository
	Inventory inventory.Repository
	Entities  entity.Repository
	History   entity.HistoryRepository
	Profiles  profiles.Repository
	Services  services.Repository
	Logger    *logging.Logger

	// Announcer publishes snapshot lifecycle events. Optional.
	Announcer *mqtt.Client

	// Mirror receives a copy of every appended state. Optional.
	Mirror *influxdb.Client
}

// New creates an import Service.
func New(deps Deps) *Service {
	return &Service{
		snapshots: deps.Snapshots,
		inventory: deps.Inventory,
		entities:  deps.Entities,
		history:   deps.History,
		profiles:  deps.Profiles,
		services:  deps.Services,
		logger:    deps.Logger,
		announcer: deps.Announcer,
		mirror:    deps.Mirror,
		slot:      make(chan struct{}, 1),
	}
}

// Import runs the full pipeline for one export document.
//
// Sequence: begin snapshot, areas, devices, entities (states, attributes,
// specialised projections), services, complete snapshot. Any failure after
// the snapshot exists marks it failed with the error text and returns the
// error; rows written before the failure stay in place.
//
// Returns ErrImportInProgress without touching the store when another
// import holds the slot.
func (s *Service) Import(ctx context.Context, doc *Document) (*Result, error) {
	select {
	case s.slot <- struct{}{}:
		defer func() { <-s.slot }()
	default:
		return nil, ErrImportInProgress
	}

	snap, err := s.snapshots.Begin(ctx, doc.Timestamp, doc.HAVersion)
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot: %w", err)
	}

	s.logger.Info("import started",
		"snapshot_id", snap.ID,
		"areas", len(doc.Areas),
		"devices", len(doc.Devices),
		"entity_types", len(doc.Entities))

	stats := Stats{}
	if err := s.runSteps(ctx, snap.ID, doc, &stats); err != nil {
		if failErr := s.snapshots.Fail(ctx, snap.ID, err.Error()); failErr != nil {
			s.logger.Error("failed to mark snapshot failed",
				"snapshot_id", snap.ID, "error", failErr)
		}
		s.announce(snap.ID, string(snapshot.StatusFailed), stats)
		return nil, err
	}

	if err := s.snapshots.Complete(ctx, snap.ID); err != nil {
		// A snapshot must never stay in processing: try the failed
		// transition so the run still ends on a terminal status.
		err = fmt.Errorf("completing snapshot: %w", err)
		if failErr := s.snapshots.Fail(ctx, snap.ID, err.Error()); failErr != nil {
			s.logger.Error("snapshot stuck in processing after failed completion",
				"snapshot_id", snap.ID, "error", failErr)
		}
		s.announce(snap.ID, string(snapshot.StatusFailed), stats)
		return nil, err
	}

	finalised, err := s.snapshots.GetByID(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading snapshot: %w", err)
	}

	s.logger.Info("import completed",
		"snapshot_id", snap.ID,
		"entities", stats.Entities,
		"states", stats.States,
		"attributes", stats.Attributes,
		"skipped", stats.Skipped)

	s.announce(snap.ID, string(snapshot.StatusCompleted), stats)
	if s.mirror != nil {
		s.mirror.WriteImportStats(snap.ID, map[string]int{
			"areas":      stats.Areas,
			"devices":    stats.Devices,
			"entities":   stats.Entities,
			"states":     stats.States,
			"attributes": stats.Attributes,
			"services":   stats.Services,
			"skipped":    stats.Skipped,
		})
	}

	return &Result{Snapshot: finalised, Stats: stats}, nil
}

// ImportFile reads, parses and imports an export file.
func (s *Service) ImportFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}

	return s.Import(ctx, doc)
}

// runSteps executes the ordered import steps under an open snapshot.
func (s *Service) runSteps(ctx context.Context, snapshotID string, doc *Document, stats *Stats) error {
	if err := s.importAreas(ctx, doc.Areas, stats); err != nil {
		return err
	}
	if err := s.importDevices(ctx, doc.Devices, stats); err != nil {
		return err
	}
	if err := s.importEntities(ctx, snapshotID, doc.Entities, stats); err != nil {
		return err
	}
	if err := s.importServices(ctx, doc.Services, stats); err != nil {
		return err
	}
	return nil
}

// importAreas upserts the area projections.
// Records without an id are skipped, never fatal.
func (s *Service) importAreas(ctx context.Context, areas []Record, stats *Stats) error {
	for _, rec := range areas {
		areaID := rec.String("area_id")
		if areaID == "" {
			areaID = rec.String("id")
		}
		if areaID == "" {
			s.logger.Debug("skipping area without id")
			stats.Skipped++
			continue
		}

		area := &inventory.Area{
			AreaID:  areaID,
			Name:    rec.String("name"),
			Aliases: rec.Strings("aliases"),
			Floor:   rec.StringPtr("floor"),
			Icon:    rec.StringPtr("icon"),
		}
		if err := s.inventory.UpsertArea(ctx, area); err != nil {
			return fmt.Errorf("importing area %q: %w", areaID, err)
		}
		stats.Areas++
	}
	return nil
}

// importDevices upserts the device projections.
func (s *Service) importDevices(ctx context.Context, devices []Record, stats *Stats) error {
	for _, rec := range devices {
		deviceID := rec.String("id")
		if deviceID == "" {
			deviceID = rec.String("device_id")
		}
		if deviceID == "" {
			s.logger.Debug("skipping device without id")
			stats.Skipped++
			continue
		}

		device := &inventory.Device{
			DeviceID:         deviceID,
			Name:             rec.String("name"),
			Manufacturer:     rec.StringPtr("manufacturer"),
			Model:            rec.StringPtr("model"),
			SWVersion:        rec.StringPtr("sw_version"),
			ConfigurationURL: rec.StringPtr("configuration_url"),
			Connections:      rec.List("connections"),
			Identifiers:      rec.List("identifiers"),
			ViaDeviceID:      rec.StringPtr("via_device"),
			AreaID:           rec.StringPtr("area_id"),
		}
		if err := s.inventory.UpsertDevice(ctx, device); err != nil {
			return fmt.Errorf("importing device %q: %w", deviceID, err)
		}
		stats.Devices++
	}
	return nil
}

// importServices upserts the service catalogue.
func (s *Service) importServices(ctx context.Context, catalogue map[string]map[string]Record, stats *Stats) error {
	for _, domain := range sortedKeys(catalogue) {
		defs := catalogue[domain]
		for _, name := range sortedKeys(defs) {
			def := defs[name]

			var target *string
			if raw, ok := def["target"]; ok {
				data, err := json.Marshal(raw)
				if err != nil {
					return fmt.Errorf("marshalling target for %s.%s: %w", domain, name, err)
				}
				targetStr := string(data)
				target = &targetStr
			}

			responseOptional := false
			if resp := def.Map("response"); resp != nil {
				responseOptional = resp.Bool("optional")
			}

			svc := &services.Service{
				FullName:         domain + "." + name,
				Domain:           domain,
				ServiceName:      name,
				Description:      def.StringPtr("description"),
				Fields:           def.Map("fields"),
				Target:           target,
				ResponseOptional: responseOptional,
			}
			if err := s.services.Upsert(ctx, svc); err != nil {
				return fmt.Errorf("importing service %q: %w", svc.FullName, err)
			}
			stats.Services++
		}
	}
	return nil
}

// announce publishes the snapshot's status (retained, so late subscribers
// see the outcome) and a one-shot import event. Best effort: a broker
// failure is logged and never fails the run.
func (s *Service) announce(snapshotID, status string, stats Stats) {
	if s.announcer == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"snapshot_id": snapshotID,
		"status":      status,
		"stats":       stats,
	})
	if err != nil {
		return
	}

	topics := mqtt.Topics{}
	if err := s.announcer.PublishRetained(topics.SnapshotStatus(snapshotID), payload); err != nil {
		s.logger.Warn("snapshot announcement failed",
			"snapshot_id", snapshotID, "error", err)
	}
	if err := s.announcer.PublishEvent(topics.ImportEvent("import_"+status), payload); err != nil {
		s.logger.Warn("import event publish failed",
			"snapshot_id", snapshotID, "error", err)
	}
}

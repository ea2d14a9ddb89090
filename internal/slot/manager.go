package slot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/internal/integrity/migrate"
	"github.com/sawyersrpg/savecore/internal/integrity/recovery"
	"github.com/sawyersrpg/savecore/internal/integrity/schema"
	"github.com/sawyersrpg/savecore/pkg/canonical"
	"github.com/sawyersrpg/savecore/pkg/checksum"
)

// DefaultSlotCount is the number of save slots exposed to the game.
const DefaultSlotCount = 10

// ManagerOptions configures a slot manager.
type ManagerOptions struct {
	// Slots is the fixed slot count. Zero means DefaultSlotCount.
	Slots int

	// Clock supplies record timestamps. Nil falls back to time.Now.
	Clock func() time.Time

	// Logger receives pipeline events. Nil falls back to slog.Default.
	Logger *slog.Logger

	// Validation tunes the structural validator on load.
	Validation schema.Options
}

// LoadReport describes what the load pipeline had to do to produce a
// usable state.
type LoadReport struct {
	// Recovered is true when validation or checksum verification failed
	// and the payload went through recovery.
	Recovered bool

	// RepairedFields lists the fields recovery actually touched.
	RepairedFields []string

	// ChecksumOK is false when the stored checksum did not match the
	// payload. The load still succeeds if recovery does.
	ChecksumOK bool

	// MigratedFrom is the version the payload carried before migration,
	// empty when it was already current.
	MigratedFrom string

	// ClearedReferences lists equipment slots reset because they
	// pointed at inventory items that no longer exist.
	ClearedReferences []string
}

// Summary renders the report as human-readable lines, one per action
// the pipeline took. Empty for a clean load.
func (r *LoadReport) Summary() []string {
	var lines []string
	if !r.ChecksumOK {
		lines = append(lines, "checksum did not match the stored payload")
	}
	for _, f := range r.RepairedFields {
		lines = append(lines, fmt.Sprintf("repaired field %s", f))
	}
	if r.MigratedFrom != "" {
		lines = append(lines, fmt.Sprintf("migrated from equipment version %s", r.MigratedFrom))
	}
	for _, s := range r.ClearedReferences {
		lines = append(lines, fmt.Sprintf("cleared dangling equipment reference %s", s))
	}
	return lines
}

// Manager orchestrates the save/load pipeline over a fixed set of
// local slots. Saves are stored at full fidelity; sanitization happens
// only on the cloud path.
type Manager struct {
	store     Store
	slots     int
	desc      *schema.Descriptor
	valOpts   schema.Options
	recoverer *recovery.Engine
	migrator  *migrate.Engine
	now       func() time.Time
	logger    *slog.Logger

	metricSaves            prometheus.Counter
	metricLoads            prometheus.Counter
	metricRecoveries       prometheus.Counter
	metricChecksumFailures prometheus.Counter
	metricMigrations       prometheus.Counter
}

// NewManager creates a slot manager over the given store.
func NewManager(store Store, opts ManagerOptions) *Manager {
	if opts.Slots <= 0 {
		opts.Slots = DefaultSlotCount
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	desc := schema.CurrentDescriptor()
	return &Manager{
		store:     store,
		slots:     opts.Slots,
		desc:      desc,
		valOpts:   opts.Validation,
		recoverer: recovery.NewEngine(desc),
		migrator:  migrate.NewEngine(),
		now:       opts.Clock,
		logger:    opts.Logger,
	}
}

// Slots returns the fixed slot count.
func (m *Manager) Slots() int {
	return m.slots
}

// Save snapshots the state into a slot, fully replacing any previous
// record. The record is completely marshaled and checksummed before a
// single byte reaches storage, so a failure partway leaves the slot
// untouched.
func (m *Manager) Save(ctx context.Context, index int, name string, state *domain.GameState) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}

	snapshot, err := state.Clone()
	if err != nil {
		return err
	}
	snapshot.Timestamp = m.now().UnixMilli()
	snapshot.Metadata.EquipmentVersion = domain.CurrentEquipmentVersion

	doc, err := snapshot.ToDocument()
	if err != nil {
		return err
	}
	payload, err := canonical.Marshal(doc)
	if err != nil {
		return domain.ErrInternal.WithCause(fmt.Errorf("canonicalize payload: %w", err))
	}
	sum, err := checksum.Generate(doc)
	if err != nil {
		return domain.ErrInternal.WithCause(fmt.Errorf("checksum payload: %w", err))
	}

	record := domain.SaveRecord{
		Payload:  payload,
		Checksum: sum,
		Metadata: domain.RecordMetadata{
			Timestamp:        snapshot.Timestamp,
			TotalPlayTime:    snapshot.TotalPlayTime,
			EquipmentVersion: domain.CurrentEquipmentVersion,
			SlotIndex:        index,
			Name:             name,
		},
	}
	raw, err := json.Marshal(&record)
	if err != nil {
		return domain.ErrInternal.WithCause(fmt.Errorf("encode record: %w", err))
	}

	if err := m.store.Put(ctx, domain.SlotKey(index), raw); err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	if m.metricSaves != nil {
		m.metricSaves.Inc()
	}
	m.logger.Info("slot saved",
		"slot", index,
		"name", name,
		"play_time", snapshot.TotalPlayTime)

	return nil
}

// Load reads a slot and runs the full pipeline: validate, recover when
// invalid, migrate, verify the stored checksum against the
// pre-migration payload, and clean dangling references. A checksum
// mismatch alone degrades the load to a recovery-grade one; it never
// aborts by itself. Recovery or migration failure rejects the load and
// leaves any live state untouched.
func (m *Manager) Load(ctx context.Context, index int) (*domain.GameState, *LoadReport, error) {
	if err := m.checkIndex(index); err != nil {
		return nil, nil, err
	}

	raw, err := m.store.Get(ctx, domain.SlotKey(index))
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil, domain.ErrSlotEmpty.WithDetails(fmt.Sprintf("slot %d", index))
	}
	if err != nil {
		return nil, nil, domain.ErrStorage.WithCause(err)
	}

	var record domain.SaveRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, nil, domain.ErrPayloadMalformed.WithCause(err)
	}

	state, report, err := m.runPipeline(index, &record)
	if err != nil {
		return nil, nil, err
	}

	if m.metricLoads != nil {
		m.metricLoads.Inc()
	}
	m.logger.Info("slot loaded",
		"slot", index,
		"recovered", report.Recovered,
		"checksum_ok", report.ChecksumOK,
		"migrated_from", report.MigratedFrom)

	return state, report, nil
}

// Ingest runs the load pipeline over an externally sourced record, for
// example one restored from cloud storage, and only on success writes
// the resulting state into the slot. A record that cannot be validated,
// recovered, or migrated never touches local storage.
func (m *Manager) Ingest(ctx context.Context, index int, record *domain.SaveRecord) (*domain.GameState, *LoadReport, error) {
	if err := m.checkIndex(index); err != nil {
		return nil, nil, err
	}

	state, report, err := m.runPipeline(index, record)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Save(ctx, index, record.Metadata.Name, state); err != nil {
		return nil, nil, err
	}
	return state, report, nil
}

// runPipeline validates, recovers, migrates, and checksum-verifies one
// record, producing a decoded state. It never writes to storage.
func (m *Manager) runPipeline(index int, record *domain.SaveRecord) (*domain.GameState, *LoadReport, error) {
	doc, err := record.Document()
	if err != nil {
		return nil, nil, err
	}

	report := &LoadReport{ChecksumOK: checksum.Verify(doc, record.Checksum)}
	if !report.ChecksumOK {
		if m.metricChecksumFailures != nil {
			m.metricChecksumFailures.Inc()
		}
		m.logger.Warn("checksum mismatch, attempting recovery-grade load", "slot", index)
	}

	result := schema.Validate(doc, m.desc, m.valOpts)
	if !result.IsValid || !report.ChecksumOK {
		outcome := m.recoverer.Attempt(doc, result)
		if !outcome.Recovered {
			m.logger.Error("recovery failed",
				"slot", index,
				"corrupted_fields", result.CorruptedFields)
			return nil, nil, domain.ErrRecoveryFailed.WithDetails(fmt.Sprintf("slot %d", index))
		}
		doc = outcome.Data
		report.Recovered = true
		report.RepairedFields = outcome.Repaired
		if m.metricRecoveries != nil {
			m.metricRecoveries.Inc()
		}
	}

	from, err := m.migrator.Run(doc)
	if err != nil {
		m.logger.Error("migration failed", "slot", index, "from", from, "error", err)
		return nil, nil, err
	}
	if from != domain.CurrentEquipmentVersion {
		report.MigratedFrom = from
		if m.metricMigrations != nil {
			m.metricMigrations.Inc()
		}
		m.logger.Info("payload migrated", "slot", index, "from", from)
	}

	report.ClearedReferences = recovery.CleanReferences(doc)

	state, err := domain.StateFromDocument(doc)
	if err != nil {
		return nil, nil, err
	}

	return state, report, nil
}

// Delete removes a slot's record. Deleting an empty slot succeeds.
func (m *Manager) Delete(ctx context.Context, index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, domain.SlotKey(index)); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	m.logger.Info("slot deleted", "slot", index)
	return nil
}

// List returns the metadata of occupied slots ordered by slot index.
// Records whose envelope cannot be decoded are skipped with a warning
// rather than failing the whole listing.
func (m *Manager) List(ctx context.Context) ([]domain.RecordMetadata, error) {
	var out []domain.RecordMetadata

	err := m.store.Scan(ctx, domain.SlotKeyPrefix, func(key string, value []byte) bool {
		var record domain.SaveRecord
		if err := json.Unmarshal(value, &record); err != nil {
			m.logger.Warn("skipping undecodable record", "key", key, "error", err)
			return true
		}
		out = append(out, record.Metadata)
		return true
	})
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SlotIndex < out[j].SlotIndex })
	return out, nil
}

// Record returns a slot's raw stored record without running the load
// pipeline. Sync and inspection tooling use this to reason about the
// exact stored bytes.
func (m *Manager) Record(ctx context.Context, index int) (*domain.SaveRecord, error) {
	if err := m.checkIndex(index); err != nil {
		return nil, err
	}

	raw, err := m.store.Get(ctx, domain.SlotKey(index))
	if errors.Is(err, ErrRecordNotFound) {
		return nil, domain.ErrSlotEmpty.WithDetails(fmt.Sprintf("slot %d", index))
	}
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	var record domain.SaveRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, domain.ErrPayloadMalformed.WithCause(err)
	}
	return &record, nil
}

// RegisterMetrics registers pipeline metrics with Prometheus.
//
// This should be called once during initialization.
// Returns the manager for method chaining.
func (m *Manager) RegisterMetrics(registry *prometheus.Registry) *Manager {
	m.metricSaves = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "slots",
		Name:      "saves_total",
		Help:      "Total save records written",
	})
	m.metricLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "slots",
		Name:      "loads_total",
		Help:      "Total successful slot loads",
	})
	m.metricRecoveries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "slots",
		Name:      "recoveries_total",
		Help:      "Total loads that required recovery",
	})
	m.metricChecksumFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "slots",
		Name:      "checksum_failures_total",
		Help:      "Total checksum mismatches observed on load",
	})
	m.metricMigrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "slots",
		Name:      "migrations_total",
		Help:      "Total payload migrations applied on load",
	})

	registry.MustRegister(
		m.metricSaves,
		m.metricLoads,
		m.metricRecoveries,
		m.metricChecksumFailures,
		m.metricMigrations,
	)

	return m
}

func (m *Manager) checkIndex(index int) error {
	if index < 0 || index >= m.slots {
		return domain.ErrSlotIndex.WithDetails(
			fmt.Sprintf("index %d outside [0, %d)", index, m.slots))
	}
	return nil
}

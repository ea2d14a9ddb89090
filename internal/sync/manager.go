package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/internal/integrity/sanitize"
	"github.com/sawyersrpg/savecore/internal/slot"
	"github.com/sawyersrpg/savecore/pkg/canonical"
	"github.com/sawyersrpg/savecore/pkg/checksum"
)

// ManagerOptions configures a sync manager.
type ManagerOptions struct {
	// Clock supplies upload timestamps. Nil falls back to time.Now.
	Clock func() time.Time

	// Logger receives sync events. Nil falls back to slog.Default.
	Logger *slog.Logger

	// UploadsPerSecond paces outbound requests. Zero means 1 req/s.
	UploadsPerSecond rate.Limit

	// UploadBurst is the limiter burst size. Zero means 3.
	UploadBurst int
}

// BackupOutcome reports where a backup attempt landed. The local record
// is always intact regardless of the outcome.
type BackupOutcome struct {
	// SavedTo is "cloud" on a successful upload, "local" when the
	// upload could not happen and the save exists only on this device.
	SavedTo string `json:"savedTo"`

	// FallbackUsed is true when remote storage rejected the upload for
	// quota and the save deliberately stayed local.
	FallbackUsed bool `json:"fallbackUsed"`

	// Skipped is true when the snapshot matched the last uploaded one
	// and no request was sent.
	Skipped bool `json:"skipped"`

	// Queued is true when the upload was deferred because the network
	// was unavailable.
	Queued bool `json:"queued"`

	// Metadata is the uploaded record metadata when SavedTo is "cloud".
	Metadata domain.RecordMetadata `json:"metadata"`
}

// Manager mirrors local slots to a CloudStore. Every backup captures a
// sanitized, checksummed snapshot at call time; a later local save
// never changes an in-flight upload. All methods are safe for
// concurrent use, and callers are expected to run them off the
// gameplay path.
type Manager struct {
	slots     *slot.Manager
	cloud     CloudStore
	sanitizer *sanitize.Sanitizer
	pending   *queue
	limiter   *rate.Limiter
	now       func() time.Time
	logger    *slog.Logger

	mu           sync.Mutex
	fingerprints map[int]uint64 // last uploaded payload fingerprint
	lastSynced   map[int]int64  // record timestamp at last successful sync
	inFlight     map[int]bool
	lastError    map[int]error

	metricUploads        prometheus.Counter
	metricSkips          prometheus.Counter
	metricQuotaFallbacks prometheus.Counter
	metricDeferred       prometheus.Counter
	metricRestores       prometheus.Counter
	metricFailures       prometheus.Counter
}

// NewManager creates a sync manager. queueStore persists deferred
// uploads; it can share the backing store with the slot manager since
// queue keys use their own prefix.
func NewManager(slots *slot.Manager, cloud CloudStore, queueStore slot.Store, opts ManagerOptions) *Manager {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.UploadsPerSecond <= 0 {
		opts.UploadsPerSecond = 1
	}
	if opts.UploadBurst <= 0 {
		opts.UploadBurst = 3
	}

	return &Manager{
		slots:        slots,
		cloud:        cloud,
		sanitizer:    sanitize.New(opts.Clock),
		pending:      newQueue(queueStore, opts.Clock),
		limiter:      rate.NewLimiter(opts.UploadsPerSecond, opts.UploadBurst),
		now:          opts.Clock,
		logger:       opts.Logger,
		fingerprints: make(map[int]uint64),
		lastSynced:   make(map[int]int64),
		inFlight:     make(map[int]bool),
		lastError:    make(map[int]error),
	}
}

// BackupToCloud uploads a slot's sanitized snapshot. Quota exhaustion
// and network loss are not hard failures: the save stays local and the
// outcome says so. A successful upload also retries any deferred
// uploads waiting in the queue.
func (m *Manager) BackupToCloud(ctx context.Context, slotIndex int) (*BackupOutcome, error) {
	outcome, err := m.backup(ctx, slotIndex)
	if err != nil {
		return nil, err
	}
	if outcome.SavedTo == "cloud" && !outcome.Skipped {
		m.flushQueue(ctx)
	}
	return outcome, nil
}

// FlushQueue retries all deferred uploads. Entries whose upload reaches
// the cloud, or whose slot no longer exists, are removed; the rest stay
// queued for the next attempt.
func (m *Manager) FlushQueue(ctx context.Context) error {
	return m.flushQueue(ctx)
}

// PendingUploads returns the deferred uploads oldest first.
func (m *Manager) PendingUploads(ctx context.Context) ([]PendingUpload, error) {
	return m.pending.entries(ctx)
}

// RestoreFromCloud downloads a slot's remote record and runs it through
// the full load pipeline before anything local is written. A record
// that fails validation, recovery, or migration leaves the local slot
// untouched.
func (m *Manager) RestoreFromCloud(ctx context.Context, slotIndex int) (*domain.GameState, *slot.LoadReport, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	m.setInFlight(slotIndex, true)
	defer m.setInFlight(slotIndex, false)

	res, err := m.cloud.Restore(ctx, slotIndex)
	if err != nil {
		m.recordFailure(slotIndex, err)
		return nil, nil, err
	}

	state, report, err := m.slots.Ingest(ctx, slotIndex, res.Record)
	if err != nil {
		m.recordFailure(slotIndex, err)
		return nil, nil, err
	}

	m.mu.Lock()
	m.lastSynced[slotIndex] = res.Record.Metadata.Timestamp
	delete(m.lastError, slotIndex)
	m.mu.Unlock()

	if m.metricRestores != nil {
		m.metricRestores.Inc()
	}
	m.logger.Info("slot restored from cloud",
		"slot", slotIndex,
		"recovered", report.Recovered,
		"migrated_from", report.MigratedFrom)

	return state, report, nil
}

// Status derives how a slot's local and cloud copies relate. The
// comparison is surfaced, never auto-resolved.
func (m *Manager) Status(ctx context.Context, slotIndex int) (domain.SyncStatus, error) {
	m.mu.Lock()
	if m.inFlight[slotIndex] {
		m.mu.Unlock()
		return domain.SyncStatusSyncing, nil
	}
	if m.lastError[slotIndex] != nil {
		m.mu.Unlock()
		return domain.SyncStatusFailed, nil
	}
	synced := m.lastSynced[slotIndex]
	m.mu.Unlock()

	var localTS int64
	record, err := m.slots.Record(ctx, slotIndex)
	switch {
	case err == nil:
		localTS = record.Metadata.Timestamp
	case errors.Is(err, domain.ErrSlotEmpty):
		localTS = 0
	default:
		return "", err
	}

	var cloudTS int64
	meta, err := m.cloud.Stat(ctx, slotIndex)
	switch {
	case err == nil:
		cloudTS = meta.Timestamp
	case errors.Is(err, domain.ErrCloudNotFound):
		cloudTS = 0
	default:
		return "", err
	}

	// Both sides moved since the last known common point: neither copy
	// is safe to discard without asking.
	if synced > 0 && localTS > synced && cloudTS > synced && localTS != cloudTS {
		return domain.SyncStatusConflict, nil
	}

	return domain.CompareTimestamps(localTS, cloudTS), nil
}

// backup performs one upload attempt without touching the queue of
// other slots.
func (m *Manager) backup(ctx context.Context, slotIndex int) (*BackupOutcome, error) {
	record, err := m.slots.Record(ctx, slotIndex)
	if err != nil {
		return nil, err
	}
	doc, err := record.Document()
	if err != nil {
		return nil, err
	}

	// Fingerprint the stored payload, not the sanitized copy: the
	// sanitizer refreshes the timestamp on every call.
	fp, err := checksum.Fingerprint(doc)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	m.mu.Lock()
	unchanged := m.fingerprints[slotIndex] == fp && fp != 0
	m.mu.Unlock()
	if unchanged {
		if m.metricSkips != nil {
			m.metricSkips.Inc()
		}
		return &BackupOutcome{SavedTo: "cloud", Skipped: true}, nil
	}

	m.setInFlight(slotIndex, true)
	defer m.setInFlight(slotIndex, false)

	clean := m.sanitizer.ForCloud(doc)
	payload, err := canonical.Marshal(clean)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(fmt.Errorf("canonicalize snapshot: %w", err))
	}
	sum, err := checksum.Generate(clean)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(fmt.Errorf("checksum snapshot: %w", err))
	}

	uploadTS := record.Metadata.Timestamp
	if ts, ok := clean["timestamp"].(float64); ok {
		uploadTS = int64(ts)
	}
	upload := &domain.SaveRecord{
		Payload:  payload,
		Checksum: sum,
		Metadata: domain.RecordMetadata{
			Timestamp:        uploadTS,
			TotalPlayTime:    record.Metadata.TotalPlayTime,
			EquipmentVersion: record.Metadata.GetEquipmentVersion(),
			SlotIndex:        slotIndex,
			Name:             record.Metadata.Name,
		},
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := m.cloud.Backup(ctx, slotIndex, upload)
	switch {
	case err == nil:
		m.mu.Lock()
		m.fingerprints[slotIndex] = fp
		m.lastSynced[slotIndex] = uploadTS
		delete(m.lastError, slotIndex)
		m.mu.Unlock()
		if m.metricUploads != nil {
			m.metricUploads.Inc()
		}
		m.logger.Info("slot backed up", "slot", slotIndex, "timestamp", uploadTS)
		return &BackupOutcome{SavedTo: "cloud", Metadata: res.Metadata}, nil

	case errors.Is(err, domain.ErrQuotaExceeded):
		if m.metricQuotaFallbacks != nil {
			m.metricQuotaFallbacks.Inc()
		}
		m.logger.Warn("cloud quota exceeded, save kept local", "slot", slotIndex)
		return &BackupOutcome{SavedTo: "local", FallbackUsed: true}, nil

	case errors.Is(err, domain.ErrNetworkUnavailable):
		entry, qerr := m.pending.enqueue(ctx, slotIndex, uploadTS)
		if qerr != nil {
			m.logger.Error("failed to queue deferred upload", "slot", slotIndex, "error", qerr)
		}
		m.recordFailure(slotIndex, err)
		if m.metricDeferred != nil {
			m.metricDeferred.Inc()
		}
		m.logger.Warn("network unavailable, upload deferred",
			"slot", slotIndex,
			"queued", entry != nil)
		return &BackupOutcome{SavedTo: "local", Queued: true}, nil

	default:
		m.recordFailure(slotIndex, err)
		return nil, err
	}
}

func (m *Manager) flushQueue(ctx context.Context) error {
	entries, err := m.pending.entries(ctx)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		outcome, err := m.backup(ctx, entry.SlotIndex)
		if errors.Is(err, domain.ErrSlotEmpty) {
			// Slot deleted since it was queued; nothing left to upload.
			if rerr := m.pending.remove(ctx, entry.ID); rerr != nil {
				return rerr
			}
			continue
		}
		if err != nil {
			return err
		}
		if outcome.SavedTo != "cloud" {
			// Still offline or over quota; keep the entry for later.
			continue
		}
		if err := m.pending.remove(ctx, entry.ID); err != nil {
			return err
		}
		m.logger.Info("deferred upload completed", "slot", entry.SlotIndex, "id", entry.ID)
	}
	return nil
}

func (m *Manager) setInFlight(slotIndex int, v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v {
		m.inFlight[slotIndex] = true
	} else {
		delete(m.inFlight, slotIndex)
	}
}

func (m *Manager) recordFailure(slotIndex int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError[slotIndex] = err
	if m.metricFailures != nil {
		m.metricFailures.Inc()
	}
}

// RegisterMetrics registers sync metrics with Prometheus.
//
// This should be called once during initialization.
// Returns the manager for method chaining.
func (m *Manager) RegisterMetrics(registry *prometheus.Registry) *Manager {
	m.metricUploads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "uploads_total",
		Help:      "Total successful cloud uploads",
	})
	m.metricSkips = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "upload_skips_total",
		Help:      "Total uploads skipped because the snapshot was unchanged",
	})
	m.metricQuotaFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "quota_fallbacks_total",
		Help:      "Total uploads that fell back to local-only for quota",
	})
	m.metricDeferred = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "deferred_total",
		Help:      "Total uploads deferred to the offline queue",
	})
	m.metricRestores = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "restores_total",
		Help:      "Total successful cloud restores",
	})
	m.metricFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "savecore",
		Subsystem: "sync",
		Name:      "failures_total",
		Help:      "Total sync operations that failed outright",
	})

	registry.MustRegister(
		m.metricUploads,
		m.metricSkips,
		m.metricQuotaFallbacks,
		m.metricDeferred,
		m.metricRestores,
		m.metricFailures,
	)

	return m
}

// Package backup keeps the remote registry snapshot in sync with the
// local store.
//
// The manager owns the snapshot pointer for its whole lifecycle: it is
// constructed with the configured default and replaced, atomically and
// only on channel acknowledgment, by a successful push. A failed push
// or pull leaves both the pointer and the registry exactly as they
// were, and nothing is retried by the manager itself - the operator
// re-issues the command.
//
// Push flow is a two-state machine: idle, then pushing while the blob
// is in the channel's hands. The mutex embodies it; there is never
// more than one push in flight.
package backup

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/clickermsu/leaderboard-go/internal/channel"
	"github.com/clickermsu/leaderboard-go/internal/core/domain"
	"github.com/clickermsu/leaderboard-go/internal/storage/snapshot"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/logger"
	"github.com/clickermsu/leaderboard-go/internal/telemetry/metric"
)

// DefaultBlobName is the filename given to pushed snapshot documents.
const DefaultBlobName = "users.json"

// Registry is the slice of the store the manager needs.
type Registry interface {
	All(ctx context.Context) (domain.Snapshot, error)
	ReplaceAll(ctx context.Context, s domain.Snapshot) error
}

// Config configures the sync manager.
type Config struct {
	// Blob is the channel's document storage face.
	Blob channel.Blob

	// Registry is the local store.
	Registry Registry

	// Pointer is the initial snapshot pointer, usually from config.
	Pointer snapshot.Pointer

	// Sealer optionally encrypts blobs before they leave the process.
	Sealer *snapshot.Sealer

	// PushRate throttles outbound document writes, in pushes per
	// second; chat APIs rate-limit media edits aggressively. Zero
	// disables throttling.
	PushRate rate.Limit

	// BlobName is the filename for pushed documents.
	BlobName string

	// Logger is the structured logger.
	Logger logger.Logger

	// Metrics receives pull/push counters. Optional.
	Metrics *metric.Registry
}

// Manager orchestrates pulls and pushes of the registry snapshot.
type Manager struct {
	blob     channel.Blob
	registry Registry
	sealer   *snapshot.Sealer
	limiter  *rate.Limiter
	name     string
	log      logger.Logger
	metrics  *metric.Registry

	mu  sync.Mutex
	ptr snapshot.Pointer
}

// NewManager creates a sync manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Blob == nil {
		return nil, domain.ErrInternal.WithDetails("backup: blob channel is required")
	}
	if cfg.Registry == nil {
		return nil, domain.ErrInternal.WithDetails("backup: registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.BlobName == "" {
		cfg.BlobName = DefaultBlobName
	}

	var limiter *rate.Limiter
	if cfg.PushRate > 0 {
		limiter = rate.NewLimiter(cfg.PushRate, 1)
	}

	return &Manager{
		blob:     cfg.Blob,
		registry: cfg.Registry,
		sealer:   cfg.Sealer,
		limiter:  limiter,
		name:     cfg.BlobName,
		log:      cfg.Logger,
		metrics:  cfg.Metrics,
		ptr:      cfg.Pointer,
	}, nil
}

// Pointer returns the current snapshot pointer.
func (m *Manager) Pointer() snapshot.Pointer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ptr
}

// Pull fetches the blob named by the current pointer, decodes it and
// installs it into the registry. On any failure the registry is left
// untouched. ErrPointerUnset means no backup has ever been pushed;
// callers that pull opportunistically treat it as "nothing to restore".
func (m *Manager) Pull(ctx context.Context) error {
	ptr := m.Pointer()
	if !ptr.HasBlob() {
		m.countPull(metric.OutcomeNotFound)
		return domain.ErrPointerUnset
	}

	data, err := m.blob.FetchDocument(ctx, ptr.FileID)
	if err != nil {
		m.countPull(metric.OutcomeError)
		return domain.ErrChannelUnavailable.WithDetails("fetch snapshot").WithCause(err)
	}

	if snapshot.IsSealed(data) {
		if m.sealer == nil {
			m.countPull(metric.OutcomeError)
			return domain.ErrSnapshotMalformed.WithDetails("blob is sealed but no passphrase is configured")
		}
		data, err = m.sealer.Open(data)
		if err != nil {
			m.countPull(metric.OutcomeError)
			return domain.ErrSnapshotMalformed.WithCause(err)
		}
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		m.countPull(metric.OutcomeError)
		return err
	}

	if err := m.registry.ReplaceAll(ctx, snap); err != nil {
		m.countPull(metric.OutcomeError)
		return err
	}

	m.countPull(metric.OutcomeOK)
	m.log.Debug("snapshot pulled", "records", len(snap), "file_id", ptr.FileID)
	return nil
}

// Push encodes the registry and replaces the document at the current
// pointer's anchor message. The pointer is updated only after the
// channel acknowledges the edit; a failed push leaves it untouched.
func (m *Manager) Push(ctx context.Context) error {
	ptr := m.Pointer()
	if !ptr.HasAnchor() {
		m.countPush(metric.OutcomeNotFound)
		return domain.ErrPointerUnset.WithDetails("no anchor message; save a snapshot first")
	}

	blob, err := m.encode(ctx)
	if err != nil {
		m.countPush(metric.OutcomeError)
		return err
	}

	if err := m.wait(ctx); err != nil {
		m.countPush(metric.OutcomeError)
		return err
	}

	ref, err := m.blob.ReplaceDocument(ctx, ptr.ChatID, ptr.MessageID, m.name, blob)
	if err != nil {
		m.countPush(metric.OutcomeError)
		return domain.ErrChannelUnavailable.WithDetails("replace snapshot document").WithCause(err)
	}

	m.setPointer(snapshot.Pointer{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		FileID:    ref.FileID,
	})
	m.countPush(metric.OutcomeOK)
	m.log.Info("snapshot pushed", "bytes", len(blob), "pointer", m.Pointer().String())
	return nil
}

// Save encodes the registry and uploads it as a brand-new document to
// the given chat, re-anchoring the pointer there. This is how an
// operator bootstraps the backup for a fresh deployment.
func (m *Manager) Save(ctx context.Context, chatID int64) (snapshot.Pointer, error) {
	blob, err := m.encode(ctx)
	if err != nil {
		m.countPush(metric.OutcomeError)
		return snapshot.Pointer{}, err
	}

	if err := m.wait(ctx); err != nil {
		m.countPush(metric.OutcomeError)
		return snapshot.Pointer{}, err
	}

	ref, err := m.blob.UploadDocument(ctx, chatID, m.name, blob)
	if err != nil {
		m.countPush(metric.OutcomeError)
		return snapshot.Pointer{}, domain.ErrChannelUnavailable.WithDetails("upload snapshot document").WithCause(err)
	}

	ptr := snapshot.Pointer{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		FileID:    ref.FileID,
	}
	m.setPointer(ptr)
	m.countPush(metric.OutcomeOK)
	m.log.Info("snapshot saved", "bytes", len(blob), "pointer", ptr.String())
	return ptr, nil
}

func (m *Manager) encode(ctx context.Context) ([]byte, error) {
	snap, err := m.registry.All(ctx)
	if err != nil {
		return nil, err
	}

	blob, err := snapshot.Encode(snap)
	if err != nil {
		return nil, err
	}

	if m.sealer != nil {
		blob, err = m.sealer.Seal(blob)
		if err != nil {
			return nil, domain.ErrInternal.WithDetails("seal snapshot").WithCause(err)
		}
	}

	if m.metrics != nil {
		m.metrics.SnapshotBytes.Set(float64(len(blob)))
	}
	return blob, nil
}

func (m *Manager) wait(ctx context.Context) error {
	if m.limiter == nil {
		return nil
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return domain.ErrChannelUnavailable.WithDetails("push throttled").WithCause(err)
	}
	return nil
}

func (m *Manager) setPointer(ptr snapshot.Pointer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ptr = ptr
}

func (m *Manager) countPull(outcome string) {
	if m.metrics != nil {
		m.metrics.PullsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Manager) countPush(outcome string) {
	if m.metrics != nil {
		m.metrics.PushesTotal.WithLabelValues(outcome).Inc()
	}
}

// Package mirror keeps a spreadsheet snapshot of the store for readers that
// still open the workbook directly.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/export"
	"github.com/frahmantamala/request-routing/internal/metrics"
)

const (
	RequestsSheet = "الطلبات"
	ChatsSheet    = "المحادثات"
)

// Source reads the full contents to mirror.
type Source interface {
	RequestsCreatedBetween(ctx context.Context, from, to time.Time) ([]export.Row, error)
	ChatMessages(ctx context.Context) ([]export.ChatRow, error)
}

// Mirror rewrites the snapshot workbook after mutations. Bursts of events
// within the debounce window produce a single rewrite.
type Mirror struct {
	fs       afero.Fs
	path     string
	debounce time.Duration
	source   Source
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	writeMu sync.Mutex
}

func New(fs afero.Fs, path string, debounce time.Duration, source Source, logger *slog.Logger) *Mirror {
	return &Mirror{
		fs:       fs,
		path:     path,
		debounce: debounce,
		source:   source,
		logger:   logger,
	}
}

// Register subscribes the mirror to every mutation event.
func (m *Mirror) Register(bus *events.EventBus) {
	bus.SubscribeMany(events.MutationEvents, m.Handle)
}

func (m *Mirror) Handle(_ context.Context, event events.Event) error {
	m.logger.Debug("mirror scheduled", "event_type", event.EventType(), "event_id", event.EventID())
	m.schedule()
	return nil
}

func (m *Mirror) schedule() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = true
	if m.timer != nil {
		m.timer.Reset(m.debounce)
		return
	}
	m.timer = time.AfterFunc(m.debounce, m.fire)
}

func (m *Mirror) fire() {
	m.mu.Lock()
	if !m.pending {
		m.mu.Unlock()
		return
	}
	m.pending = false
	m.mu.Unlock()

	if err := m.Rebuild(context.Background()); err != nil {
		m.logger.Error("mirror rewrite failed", "path", m.path, "error", err)
	}
}

// Flush stops the debounce timer and writes any pending change. Called on
// shutdown.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	pending := m.pending
	m.pending = false
	m.mu.Unlock()

	if !pending {
		return nil
	}
	return m.Rebuild(ctx)
}

// Rebuild writes the snapshot now. The workbook is written to a temporary
// file first and renamed over the previous snapshot.
func (m *Mirror) Rebuild(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	requests, err := m.source.RequestsCreatedBetween(ctx, time.Time{}, time.Time{})
	if err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("read requests: %w", err)
	}
	chats, err := m.source.ChatMessages(ctx)
	if err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("read chats: %w", err)
	}

	wb := export.NewWorkbook()
	defer wb.Close()
	if err := wb.AddRequestSheet(RequestsSheet, requests); err != nil {
		return err
	}
	if err := wb.AddChatSheet(ChatsSheet, chats); err != nil {
		return err
	}

	if err := m.fs.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return err
	}
	if _, err := wb.File().WriteTo(f); err != nil {
		f.Close()
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := m.fs.Rename(tmp, m.path); err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.MirrorWritesTotal.WithLabelValues("ok").Inc()
	m.logger.Info("mirror rewritten", "path", m.path, "requests", len(requests), "chats", len(chats))
	return nil
}

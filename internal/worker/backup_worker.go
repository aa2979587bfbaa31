// Package worker contains the auto-backup worker. Data-changed events arrive
// over AMQP, get debounced, and result in a full-store JSON snapshot written
// into the backup directory. A cron schedule additionally forces a nightly
// snapshot even on quiet days.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"mpump/internal/amqp"
	"mpump/internal/core"
)

// SnapshotSource is the read side of the store the worker serializes.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
}

type BackupWorker struct {
	source   SnapshotSource
	dir      string
	debounce time.Duration
	cronSpec string
	trigger  chan struct{}
}

func NewBackupWorker(source SnapshotSource, dir string, debounce time.Duration, cronSpec string) *BackupWorker {
	return &BackupWorker{
		source:   source,
		dir:      dir,
		debounce: debounce,
		cronSpec: cronSpec,
		// Buffered so a burst of events during a write never blocks the consumer.
		trigger: make(chan struct{}, 1),
	}
}

// HandleDataChanged is the AMQP message handler. It only schedules work; the
// debounce loop decides when to actually write.
func (w *BackupWorker) HandleDataChanged(msg *amqp.DataChangedMessage) error {
	slog.Debug("Backup scheduled",
		"collection", msg.Collection, "op", msg.Op, "id", msg.ID)
	select {
	case w.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Run drives the debounce loop until ctx is cancelled. Each trigger restarts
// the debounce window, so a burst of edits produces a single backup.
func (w *BackupWorker) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	var c *cron.Cron
	if w.cronSpec != "" {
		c = cron.New()
		if _, err := c.AddFunc(w.cronSpec, func() {
			if _, err := w.WriteBackup(ctx); err != nil {
				slog.Error("Scheduled backup failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("add cron schedule: %w", err)
		}
		c.Start()
		defer c.Stop()
		slog.Info("Nightly backup scheduled", "cron", w.cronSpec)
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case <-w.trigger:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if path, err := w.WriteBackup(ctx); err != nil {
				slog.Error("Auto-backup failed", "error", err)
			} else {
				slog.Info("Auto-backup completed", "path", path)
			}
		}
	}
}

// WriteBackup serializes the store into mpump-backup-YYYY-MM-DD.json. The
// write goes through a temp file and rename so readers never see a partial
// backup.
func (w *BackupWorker) WriteBackup(ctx context.Context) (string, error) {
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot store: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	name := fmt.Sprintf("mpump-backup-%s.json", core.Today())
	path := filepath.Join(w.dir, name)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize backup file: %w", err)
	}

	return path, nil
}

// Package scanner watches the scan drop folder, routes container QR sheets
// and item images, and drives each item through the identification pipeline.
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dittoscan/ditto/internal/identify"
	"github.com/dittoscan/ditto/internal/inventory"
	"github.com/dittoscan/ditto/internal/model"
)

// supportedExtensions are the image types accepted from the scan folder.
var supportedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
	".gif": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// Processor identifies one scanned item. Satisfied by *identify.Orchestrator.
type Processor interface {
	Process(ctx context.Context, item identify.Item) model.InventoryRecord
}

// Config carries the scanner's runtime settings.
type Config struct {
	// ScanDir is the watched drop folder.
	ScanDir string

	// Graded switches the pipeline into the graded-collectible flow.
	Graded bool

	// SettleDelay is how long to wait after a create event before reading
	// the file, so the scanner software finishes writing it.
	SettleDelay time.Duration
}

// Scanner owns the watch loop and the per-session container state.
type Scanner struct {
	proc  Processor
	store *inventory.Store
	cfg   Config

	container string
	sequence  int
	stats     Stats
}

// New builds a Scanner.
func New(proc Processor, store *inventory.Store, cfg Config) *Scanner {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 2 * time.Second
	}
	return &Scanner{proc: proc, store: store, cfg: cfg}
}

// Run processes any files already sitting in the scan folder, then watches
// for new ones until ctx is cancelled. It returns the session statistics.
func (s *Scanner) Run(ctx context.Context) (Stats, error) {
	log := zap.L().With(zap.String("dir", s.cfg.ScanDir))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return s.stats, eris.Wrap(err, "scanner: create watcher")
	}
	defer watcher.Close() //nolint:errcheck

	if err := watcher.Add(s.cfg.ScanDir); err != nil {
		return s.stats, eris.Wrapf(err, "scanner: watch %s", s.cfg.ScanDir)
	}

	if err := s.processExisting(ctx); err != nil {
		return s.stats, err
	}

	log.Info("watching for scans", zap.Bool("graded", s.cfg.Graded))
	for {
		select {
		case <-ctx.Done():
			log.Info("scanning session finished")
			return s.stats, nil
		case event, ok := <-watcher.Events:
			if !ok {
				return s.stats, nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			s.handleFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return s.stats, nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

// processExisting drains files that were dropped before the session started,
// oldest names first so container QR sheets stay ahead of their items.
func (s *Scanner) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(s.cfg.ScanDir)
	if err != nil {
		return eris.Wrapf(err, "scanner: read %s", s.cfg.ScanDir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if ctx.Err() != nil {
			return nil
		}
		s.handleFile(ctx, filepath.Join(s.cfg.ScanDir, name))
	}
	return nil
}

func (s *Scanner) handleFile(ctx context.Context, path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return
	}
	log := zap.L().With(zap.String("file", filepath.Base(path)))

	s.waitSettled(ctx, path)

	containerID, err := ReadContainerQR(path)
	if err != nil {
		log.Warn("qr check failed, treating file as item scan", zap.Error(err))
	}
	if containerID != "" {
		s.switchContainer(containerID, path, log)
		return
	}

	if s.container == "" {
		log.Warn("no container selected, scan ignored; drop a container QR sheet first")
		s.stats.Skipped++
		return
	}

	s.sequence++
	rec := s.proc.Process(ctx, identify.Item{
		Path:        path,
		ContainerID: s.container,
		Sequence:    s.sequence,
		Graded:      s.cfg.Graded,
	})
	if err := s.store.Append(rec); err != nil {
		log.Error("inventory write failed", zap.Error(err))
	}
	s.stats.record(rec)
	narrate(rec, log)
}

// narrate surfaces per-item warnings and review flags as they happen, so the
// operator can intervene before scanning the next item.
func narrate(rec model.InventoryRecord, log *zap.Logger) {
	if rec.Analysis == nil {
		return
	}
	for _, w := range rec.Analysis.Warnings {
		log.Warn("item warning", zap.String("item", rec.ItemName), zap.String("warning", w))
	}
	if rec.Analysis.ManualReviewRecommended {
		log.Warn("manual review recommended",
			zap.String("item", rec.ItemName),
			zap.String("reason", rec.Analysis.ManualReviewReason))
	}
}

// switchContainer makes containerID current, seeding the sequence from what
// the inventory already holds for it, and removes the QR sheet scan.
func (s *Scanner) switchContainer(containerID, path string, log *zap.Logger) {
	records, err := s.store.Load()
	if err != nil {
		log.Error("inventory read failed, container unchanged", zap.Error(err))
		return
	}

	s.container = containerID
	s.sequence = inventory.MaxSequence(records, containerID)
	s.stats.Containers++

	if err := os.Remove(path); err != nil {
		log.Warn("could not remove container QR scan", zap.Error(err))
	}
	log.Info("container selected",
		zap.String("container", containerID),
		zap.Int("next_sequence", s.sequence+1))
}

// waitSettled waits out the settle delay and then for the file size to hold
// steady between two polls.
func (s *Scanner) waitSettled(ctx context.Context, path string) {
	sleep(ctx, s.cfg.SettleDelay)

	var last int64 = -1
	for i := 0; i < 10; i++ {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.Size() == last {
			return
		}
		last = info.Size()
		sleep(ctx, 200*time.Millisecond)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driving"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// DefaultScanInterval is how often the media source is re-scanned when the
// configuration does not say otherwise.
const DefaultScanInterval = 6 * time.Hour

// Scheduler triggers periodic media scans and rebuilds the index whenever a
// scan actually processed something. External triggers (a watcher event or
// a manual request) share the same path; overlapping triggers are dropped
// by the processor's single-flight guard, never queued.
type Scheduler struct {
	processor driving.MediaProcessor
	indexer   *Indexer
	interval  time.Duration
	triggerCh chan struct{}

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. If interval is zero,
// DefaultScanInterval applies. indexer may be nil to disable automatic
// rebuilds after scans.
func NewScheduler(processor driving.MediaProcessor, indexer *Indexer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Scheduler{
		processor: processor,
		indexer:   indexer,
		interval:  interval,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests a scan outside the regular interval. Requests while a
// trigger is already pending are coalesced.
func (s *Scheduler) Trigger() {
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

// Start runs the scheduler loop until Stop is called or ctx is cancelled.
// The first scan runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.scan(ctx)
		case <-s.triggerCh:
			s.scan(ctx)
		}
	}
}

// Stop shuts the scheduler down. An in-flight scan runs to completion so
// no partially persisted hash state is left behind.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// scan runs one scan pass and, when it processed anything, rebuilds the
// index.
func (s *Scheduler) scan(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	stats, err := s.processor.ProcessOnce(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrScanInProgress) {
			logger.Debug("Scan trigger dropped: already scanning")
			return
		}
		logger.Warn("Scan failed: %v", err)
		return
	}

	if s.indexer != nil && stats.ProcessedFiles > 0 {
		if err := s.indexer.Rebuild(ctx); err != nil {
			logger.Warn("Index rebuild failed: %v", err)
		}
	}
}

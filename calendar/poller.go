package calendar

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Snapshot holds the latest list of events. Lists are swapped as a whole and
// never modified after being stored, so readers may keep a list for as long
// as they like.
type Snapshot struct {
	events atomic.Pointer[[]Event]
}

// Load returns the latest list. It is nil until the first Store.
func (s *Snapshot) Load() []Event {
	if p := s.events.Load(); p != nil {
		return *p
	}
	return nil
}

// Store replaces the list. The caller must not modify events afterwards.
func (s *Snapshot) Store(events []Event) {
	s.events.Store(&events)
}

// Poller periodically refreshes a Snapshot from a Source.
type Poller struct {
	src      Source
	snap     *Snapshot
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller that refreshes snap from src every interval.
// Each poll is bounded by timeout; a zero timeout means the interval is used.
func NewPoller(src Source, snap *Snapshot, interval, timeout time.Duration, logger *slog.Logger) *Poller {
	if timeout <= 0 {
		timeout = interval
	}
	return &Poller{
		src:      src,
		snap:     snap,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run polls immediately and then every interval until ctx is canceled. It
// always returns ctx.Err(); poll failures are logged and leave the previous
// list in place.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.Poll(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll fetches the events once and stores them if the source returned any.
// It returns false if the previous list was kept, either because the source
// failed or because it returned no events.
func (p *Poller) Poll(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	events, err := p.src.ListEvents(ctx)
	if err != nil {
		p.logger.Warn(
			"failed to list calendar events, keeping previous list",
			"error", err)
		return false
	}

	if len(events) == 0 {
		p.logger.Debug("calendar returned no events, keeping previous list")
		return false
	}

	for _, ev := range events {
		p.logger.Debug(
			"calendar event",
			"start", ev.Start,
			"summary", ev.Summary)
	}

	p.snap.Store(events)
	return true
}

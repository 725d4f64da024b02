// Package bloclock drives an LED matrix clock that shows the time of day
// relative to a sleep schedule.
package bloclock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"libdb.so/bloclock/calendar"
	"libdb.so/bloclock/internal/clockface"
	"libdb.so/bloclock/internal/layout"
	"libdb.so/bloclock/internal/led"
	"libdb.so/bloclock/internal/sink"
)

// RenderState is the state carried from one frame to the next.
type RenderState struct {
	// Frame is incremented once per tick.
	Frame uint64
	// Grid is the logical frame, cleared on every tick.
	Grid *led.Grid
	// Buffer holds the serialized frame in wire order.
	Buffer []byte
	// Machine tracks the active mode.
	Machine *clockface.Machine
}

// Daemon is the main bloclock daemon.
type Daemon struct {
	cfg      *Config
	logger   *slog.Logger
	sink     sink.Sink
	source   calendar.Source
	events   calendar.Snapshot
	mapper   *layout.Mapper
	registry clockface.Registry

	mu    sync.Mutex
	state RenderState
}

// NewDaemon creates a new daemon sending frames to out. source may be nil,
// in which case no events are drawn.
func NewDaemon(cfg *Config, logger *slog.Logger, out sink.Sink, source calendar.Source) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	mapper, err := cfg.Mapper()
	if err != nil {
		return nil, errors.Wrap(err, "invalid panel")
	}

	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		sink:     out,
		source:   source,
		mapper:   mapper,
		registry: clockface.NewRegistry(),
		state: RenderState{
			Grid:    led.NewGrid(cfg.Panel.Width, cfg.Panel.Height),
			Buffer:  make([]byte, 0, mapper.BufferSize()),
			Machine: clockface.NewMachine(cfg.Mode),
		},
	}, nil
}

// Mode returns the active mode.
func (d *Daemon) Mode() clockface.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Machine.Mode()
}

// SetMode switches the clock to the given mode. It is safe to call while the
// daemon is running.
func (d *Daemon) SetMode(mode clockface.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.logger.Info("switching mode", "from", d.state.Machine.Mode(), "to", mode)
	d.state.Machine.Set(mode)
}

// Events returns the events drawn on the next frame.
func (d *Daemon) Events() []calendar.Event {
	return d.events.Load()
}

// Run starts the daemon. It blocks until the given context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		return d.renderLoop(ctx)
	})

	if d.source != nil {
		poller := calendar.NewPoller(
			d.source, &d.events,
			time.Duration(d.cfg.Calendar.Interval),
			time.Duration(d.cfg.Calendar.Timeout),
			d.logger.With("component", "calendar"))

		errg.Go(func() error {
			return poller.Run(ctx)
		})
	}

	return errg.Wait()
}

func (d *Daemon) renderLoop(ctx context.Context) error {
	frameTicker := time.NewTicker(time.Second / time.Duration(d.cfg.FPS))
	defer frameTicker.Stop()

	d.logger.Debug(
		"starting render loop",
		"fps", d.cfg.FPS,
		"mode", d.Mode())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-frameTicker.C:
			d.Tick(now)
		}
	}
}

// Tick renders and sends one frame for the given wall clock time. Every tick
// sends exactly one frame; a sink failure is logged and otherwise ignored.
func (d *Daemon) Tick(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	minute := clockface.MinuteOf(now)
	if d.cfg.FixedTime != nil {
		minute = d.cfg.FixedTime.Minutes()
	}

	sleep := clockface.NewSleepWindow(d.cfg.Bedtime.Minutes())

	prev := d.state.Machine.Mode()
	mode := d.state.Machine.Step(minute, sleep)
	if mode != prev {
		d.logger.Info(
			"mode changed",
			"from", prev,
			"to", mode,
			"minute", minute)
	}

	d.registry.Render(mode, d.state.Grid, clockface.Input{
		Minute:  minute,
		Sleep:   sleep,
		Frame:   d.state.Frame,
		Events:  d.events.Load(),
		Palette: &d.cfg.Palette,
		Options: &d.cfg.Render,
	})

	d.state.Buffer = d.mapper.Serialize(d.state.Buffer, d.state.Grid)
	if err := d.sink.Send(d.cfg.Output.Offset, d.state.Buffer); err != nil {
		d.logger.Warn(
			"failed to send frame",
			"frame", d.state.Frame,
			"error", err)
	}

	d.state.Frame++
}

package bloclock

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/bloclock/calendar"
	"libdb.so/bloclock/internal/clockface"
	"libdb.so/bloclock/internal/led"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentFrame struct {
	offset int
	pix    []byte
}

type recordingSink struct {
	mu     sync.Mutex
	frames []sentFrame
	err    error
}

func (r *recordingSink) Send(offset int, pix []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, sentFrame{offset, append([]byte(nil), pix...)})
	return r.err
}

func (r *recordingSink) Close() error { return nil }

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingSink) last() sentFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Output.Kind = DiscardOutput
	return &cfg
}

func at(h, m int) time.Time {
	return time.Date(2024, time.March, 14, h, m, 0, 0, time.Local)
}

func TestDaemonTickSendsOneFrame(t *testing.T) {
	cfg := testConfig()
	cfg.Output.Offset = 3

	out := &recordingSink{}
	d, err := NewDaemon(cfg, discardLogger(), out, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d.Tick(at(12, 0))
		require.Equal(t, i+1, out.count())
	}

	f := out.last()
	assert.Equal(t, 3, f.offset)
	assert.Len(t, f.pix, 405)
	assert.Equal(t, uint64(3), d.state.Frame)
}

func TestDaemonTickIgnoresSinkErrors(t *testing.T) {
	out := &recordingSink{err: errors.New("unreachable")}
	d, err := NewDaemon(testConfig(), discardLogger(), out, nil)
	require.NoError(t, err)

	d.Tick(at(12, 0))
	d.Tick(at(12, 0))
	assert.Equal(t, 2, out.count())
	assert.Equal(t, uint64(2), d.state.Frame)
}

func TestDaemonCountdownToNight(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = clockface.Countdown

	d, err := NewDaemon(cfg, discardLogger(), &recordingSink{}, nil)
	require.NoError(t, err)

	d.Tick(at(23, 4))
	assert.Equal(t, clockface.Countdown, d.Mode())

	d.Tick(at(23, 5))
	assert.Equal(t, clockface.Night, d.Mode())

	d.Tick(at(0, 10))
	assert.Equal(t, clockface.Night, d.Mode())

	d.Tick(at(12, 0))
	assert.Equal(t, clockface.Night, d.Mode())

	d.SetMode(clockface.Countdown)
	d.Tick(at(12, 0))
	assert.Equal(t, clockface.Countdown, d.Mode())
}

func TestDaemonFixedTimeOverview(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = clockface.Overview
	fixed := clockface.ClockTime(23*60 + 33)
	cfg.FixedTime = &fixed

	out := &recordingSink{}
	d, err := NewDaemon(cfg, discardLogger(), out, nil)
	require.NoError(t, err)

	// The wall clock is ignored.
	d.Tick(at(9, 0))
	pix := out.last().pix

	pixel := func(i int) []byte { return pix[i*3 : i*3+3] }

	now := cfg.Palette.NowNight.Bytes()
	marker := cfg.Palette.Marker.Bytes()

	assert.Equal(t, now[:], pixel(133), "current position")
	assert.Equal(t, marker[:], pixel(130), "bedtime")
	assert.Equal(t, marker[:], pixel(40), "waketime")
	assert.Equal(t, []byte{0, 0, 0}, pixel(100), "daytime")
}

func TestDaemonNightRowOnly(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = clockface.Night

	out := &recordingSink{}
	d, err := NewDaemon(cfg, discardLogger(), out, nil)
	require.NoError(t, err)

	d.Tick(at(2, 0))
	pix := out.last().pix

	m, err := cfg.Mapper()
	require.NoError(t, err)

	g, err := m.Deserialize(pix)
	require.NoError(t, err)

	for y := 0; y < g.Height; y++ {
		if y == cfg.Render.NightRow {
			continue
		}
		for x := 0; x < g.Width; x++ {
			assert.Equal(t, led.Off, g.At(x, y), "LED (%d, %d) is lit", x, y)
		}
	}
}

func TestDaemonRun(t *testing.T) {
	cfg := testConfig()
	cfg.FPS = 200
	cfg.Calendar.Interval = TOMLDuration(time.Hour)

	events := []calendar.Event{{Summary: "standup"}}
	var polls int
	var pollsMu sync.Mutex
	source := calendar.SourceFunc(func(ctx context.Context) ([]calendar.Event, error) {
		pollsMu.Lock()
		polls++
		pollsMu.Unlock()
		return events, nil
	})

	out := &recordingSink{}
	d, err := NewDaemon(cfg, discardLogger(), out, source)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		return out.count() >= 3 && len(d.Events()) == 1
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	pollsMu.Lock()
	assert.Equal(t, 1, polls)
	pollsMu.Unlock()
}

func TestNewDaemonRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FPS = 0

	_, err := NewDaemon(cfg, discardLogger(), &recordingSink{}, nil)
	assert.Error(t, err)
}

package clockface

import (
	"libdb.so/bloclock/calendar"
	"libdb.so/bloclock/internal/led"
)

// Input is everything a renderer needs to draw one frame.
type Input struct {
	// Minute is the time of day in minutes since midnight.
	Minute int
	// Sleep is the sleep window of the current day.
	Sleep SleepWindow
	// Frame is the frame counter, used as the animation phase.
	Frame uint64
	// Events are today's calendar events. The slice must not be modified.
	Events []calendar.Event
	// Palette holds the colors to draw with.
	Palette *Palette
	// Options tunes the renderers.
	Options *Options
}

// Options are load-time tunables of the renderers.
type Options struct {
	// NightRow is the row drawn in night mode.
	NightRow int `toml:"night_row"`
	// BreathePeriod is the length of one night mode breath in frames.
	BreathePeriod float64 `toml:"breathe_period"`
	// PulseRate slows down the countdown highlight pulse; the pulse repeats
	// every 2π*PulseRate frames.
	PulseRate float64 `toml:"pulse_rate"`
}

// DefaultOptions returns the options for the 15×9 panel at 40 FPS.
func DefaultOptions() Options {
	return Options{
		NightRow:      4,
		BreathePeriod: 200,
		PulseRate:     20,
	}
}

// RenderFunc draws a complete frame into g. It must overwrite every LED.
type RenderFunc func(g *led.Grid, in Input)

// Registry maps each mode to its renderer.
type Registry map[Mode]RenderFunc

// NewRegistry returns the registry with the built-in renderers.
func NewRegistry() Registry {
	return Registry{
		Overview:  RenderOverview,
		Countdown: RenderCountdown,
		Night:     RenderNight,
	}
}

// Render draws the frame of the given mode. Unknown modes render nothing.
func (r Registry) Render(mode Mode, g *led.Grid, in Input) {
	g.Clear()
	if f, ok := r[mode]; ok {
		f(g, in)
	}
}

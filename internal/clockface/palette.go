package clockface

import (
	"libdb.so/bloclock/calendar"
	"libdb.so/bloclock/internal/led"
)

// Palette holds every color the renderers draw with.
type Palette struct {
	// Now is the current position during the day.
	Now led.Color `toml:"now"`
	// NowNight is the current position inside the sleep window.
	NowNight led.Color `toml:"now_night"`
	// Marker marks bedtime and waketime on the dial.
	Marker led.Color `toml:"marker"`
	// Sleep is the part of the sleep window that is still ahead.
	Sleep led.Color `toml:"sleep"`

	// Elapsed is a waking block that is over.
	Elapsed led.Color `toml:"elapsed"`
	// Upcoming is a waking block that has not started.
	Upcoming led.Color `toml:"upcoming"`
	// Event is a waking block with a calendar event starting in it.
	Event led.Color `toml:"event"`
	// EventColors overrides Event for events with the given calendar color
	// ID.
	EventColors map[string]led.Color `toml:"event_colors"`

	// NightPulseLow and NightPulseHigh bound the breathing segment in night
	// mode.
	NightPulseLow  led.Color `toml:"night_pulse_low"`
	NightPulseHigh led.Color `toml:"night_pulse_high"`
	// NightPassed is a segment of the night that is over.
	NightPassed led.Color `toml:"night_passed"`
	// NightUpcoming is a segment of the night still ahead.
	NightUpcoming led.Color `toml:"night_upcoming"`
}

// DefaultPalette returns the colors the clock ships with.
func DefaultPalette() Palette {
	return Palette{
		Now:      led.RGB(255, 10, 150),
		NowNight: led.RGB(100, 1, 1),
		Marker:   led.RGB(0, 0, 2),
		Sleep:    led.RGB(0, 0, 2),

		Elapsed:  led.RGB(0, 3, 1),
		Upcoming: led.RGB(0, 30, 100),
		Event:    led.RGB(120, 40, 0),

		NightPulseLow:  led.RGB(4, 0, 2),
		NightPulseHigh: led.RGB(40, 0, 12),
		NightPassed:    led.RGB(0, 0, 4),
		NightUpcoming:  led.RGB(0, 0, 1),
	}
}

func (p *Palette) eventColor(ev calendar.Event) led.Color {
	if c, ok := p.EventColors[ev.ColorID]; ok {
		return c
	}
	return p.Event
}

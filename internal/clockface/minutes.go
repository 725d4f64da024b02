// Package clockface renders the time of day onto the LED grid. It holds the
// minute arithmetic, the renderers for every mode and the mode state machine.
package clockface

import (
	"fmt"
	"time"
)

const (
	// MinutesPerDay is the number of minutes in a day.
	MinutesPerDay = 24 * 60
	// SleepMinutes is the length of the sleep window.
	SleepMinutes = 8 * 60
	// AwakeMinutes is the part of the day outside of the sleep window.
	AwakeMinutes = MinutesPerDay - SleepMinutes
)

// Wrap normalizes m into [0, MinutesPerDay). Negative inputs wrap backwards
// past midnight.
func Wrap(m int) int {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// MinuteOf returns the minutes since midnight of t in t's location.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SleepWindow is the interval [Bedtime, Waketime) in minutes since midnight.
// Waketime may be numerically smaller than Bedtime when the window crosses
// midnight.
type SleepWindow struct {
	Bedtime  int
	Waketime int
}

// NewSleepWindow creates the sleep window starting at bedtime.
func NewSleepWindow(bedtime int) SleepWindow {
	bedtime = Wrap(bedtime)
	return SleepWindow{
		Bedtime:  bedtime,
		Waketime: Wrap(bedtime + SleepMinutes),
	}
}

// SinceBedtime returns how many minutes have passed since the most recent
// bedtime.
func (w SleepWindow) SinceBedtime(minute int) int {
	return Wrap(minute - w.Bedtime)
}

// SinceWaketime returns how many minutes have passed since the most recent
// waketime.
func (w SleepWindow) SinceWaketime(minute int) int {
	return Wrap(minute - w.Waketime)
}

// Contains returns true if minute lies inside the window.
func (w SleepWindow) Contains(minute int) bool {
	return w.SinceBedtime(minute) < Wrap(w.Waketime-w.Bedtime)
}

// ClockTime is a time of day in minutes. It is written as "HH:MM" in text.
type ClockTime int

// ParseClockTime parses a "HH:MM" time of day.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return ClockTime(MinuteOf(t)), nil
}

// Minutes returns the time of day in minutes since midnight.
func (c ClockTime) Minutes() int { return Wrap(int(c)) }

func (c ClockTime) String() string {
	m := c.Minutes()
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func (c *ClockTime) UnmarshalText(text []byte) error {
	t, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = t
	return nil
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

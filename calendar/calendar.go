// Package calendar provides today's calendar events to the clock. Sources are
// polled periodically and the latest list is published as an immutable
// snapshot for the renderer to read.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoTime is returned when an event time has neither a date nor a date-time.
var ErrNoTime = errors.New("event time has neither date nor date-time")

// Moment is the start or end of an event. All-day events only carry a date,
// in which case Time is midnight of that date.
type Moment struct {
	Time   time.Time
	AllDay bool
}

// ParseMoment parses the date-only or date-time form of an event time, as
// found in calendar APIs. dateTime takes precedence and is expected to be
// RFC 3339; date is expected to be YYYY-MM-DD. Times are converted into loc.
func ParseMoment(date, dateTime string, loc *time.Location) (Moment, error) {
	if loc == nil {
		loc = time.Local
	}

	switch {
	case dateTime != "":
		t, err := time.Parse(time.RFC3339, dateTime)
		if err != nil {
			return Moment{}, fmt.Errorf("invalid date-time %q: %w", dateTime, err)
		}
		return Moment{Time: t.In(loc)}, nil

	case date != "":
		t, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return Moment{}, fmt.Errorf("invalid date %q: %w", date, err)
		}
		return Moment{Time: t, AllDay: true}, nil

	default:
		return Moment{}, ErrNoTime
	}
}

// IsZero returns true if the moment is unknown.
func (m Moment) IsZero() bool { return m.Time.IsZero() }

// Minute returns the minutes since midnight of the moment. The date is
// discarded. ok is false if the moment is unknown.
func (m Moment) Minute() (minute int, ok bool) {
	if m.IsZero() {
		return 0, false
	}
	return m.Time.Hour()*60 + m.Time.Minute(), true
}

func (m Moment) String() string {
	switch {
	case m.IsZero():
		return "<unknown>"
	case m.AllDay:
		return m.Time.Format("2006-01-02")
	default:
		return m.Time.Format(time.RFC3339)
	}
}

// Event is a calendar event. Only its time range is used for drawing.
type Event struct {
	Summary string
	// ColorID is the calendar's color label of the event, if any.
	ColorID string
	Start   Moment
	End     Moment
}

// StartMinute returns the minutes since midnight at which the event starts.
// ok is false for events without a usable start.
func (e Event) StartMinute() (minute int, ok bool) {
	return e.Start.Minute()
}

// Source lists today's events.
type Source interface {
	// ListEvents returns today's events ordered by start time.
	ListEvents(ctx context.Context) ([]Event, error)
}

// SourceFunc is a function that implements Source.
type SourceFunc func(ctx context.Context) ([]Event, error)

// ListEvents implements Source.
func (f SourceFunc) ListEvents(ctx context.Context) ([]Event, error) {
	return f(ctx)
}

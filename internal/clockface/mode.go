package clockface

import "fmt"

// Mode is the face currently shown on the clock.
type Mode uint8

const (
	// Overview shows the whole day as a 24 hour dial.
	Overview Mode = iota
	// Countdown shows the waking hours left until bedtime.
	Countdown
	// Night shows the progress through the sleep window on a single row.
	Night
)

// Modes lists every mode in order.
var Modes = []Mode{Overview, Countdown, Night}

// ParseMode parses the text form of a mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case Overview:
		return "overview"
	case Countdown:
		return "countdown"
	case Night:
		return "night"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

package clockface

// NightDelay is how many minutes past bedtime Countdown hands over to Night.
const NightDelay = 5

// Machine tracks the active mode between frames.
//
// The only automatic transition is from Countdown to Night once bedtime has
// passed by NightDelay minutes. Night is never left automatically; the
// operator has to Set another mode.
type Machine struct {
	mode Mode
}

// NewMachine creates a machine starting in the given mode.
func NewMachine(initial Mode) *Machine {
	return &Machine{mode: initial}
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Set switches to the given mode.
func (m *Machine) Set(mode Mode) { m.mode = mode }

// Step evaluates the transitions for the current minute and returns the mode
// to render. It is called once per frame.
func (m *Machine) Step(minute int, sleep SleepWindow) Mode {
	if m.mode == Countdown {
		since := sleep.SinceBedtime(minute)
		if since >= NightDelay && since < SleepMinutes {
			m.mode = Night
		}
	}
	return m.mode
}

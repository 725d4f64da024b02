package clockface

import "libdb.so/bloclock/internal/led"

// RenderNight splits the sleep window over a single row. The segment of the
// current time breathes, segments before it are dimly marked as passed and
// segments after it are marked dimmer still. Every other row stays off.
func RenderNight(g *led.Grid, in Input) {
	g.Clear()

	row := in.Options.NightRow
	if row < 0 || row >= g.Height || g.Width == 0 {
		return
	}

	p := in.Palette
	w := g.Width
	current := in.Sleep.SinceBedtime(in.Minute) * w / SleepMinutes % w
	pulse := led.Lerp(p.NightPulseLow, p.NightPulseHigh, led.Breathe(in.Frame, in.Options.BreathePeriod))

	leds := g.Row(row)
	for x := range leds {
		switch {
		case x == current:
			leds[x] = pulse
		case x < current:
			leds[x] = p.NightPassed
		default:
			leds[x] = p.NightUpcoming
		}
	}
}

package clockface

import "libdb.so/bloclock/internal/led"

// RenderOverview draws the whole day as a dial over every LED of the grid.
// The current position is lit, bedtime and waketime are marked, and the part
// of the sleep window the current position has not passed yet is dimly lit.
func RenderOverview(g *led.Grid, in Input) {
	n := g.Len()
	p := in.Palette

	current := dialLED(in.Minute, n)
	bed := dialLED(in.Sleep.Bedtime, n)
	wake := dialLED(in.Sleep.Waketime, n)

	now := p.Now
	if in.Sleep.Contains(in.Minute) {
		now = p.NowNight
	}

	// The sleep arc runs forward from bed to wake and may wrap past LED 0.
	arc := forward(bed, wake, n)
	passed := 0
	if d := forward(bed, current, n); d <= arc {
		passed = d
	}

	for i := range g.Pix {
		switch d := forward(bed, i, n); {
		case i == current:
			g.Pix[i] = now
		case i == bed || i == wake:
			g.Pix[i] = p.Marker
		case d < passed:
			g.Pix[i] = led.Off
		case d < arc:
			g.Pix[i] = p.Sleep
		default:
			g.Pix[i] = led.Off
		}
	}
}

// dialLED maps a minute of the day onto one of n LEDs, rounding up.
func dialLED(minute, n int) int {
	return (Wrap(minute)*n + MinutesPerDay - 1) / MinutesPerDay % n
}

// forward returns the number of steps from a to b going forward around a ring
// of n LEDs.
func forward(a, b, n int) int {
	d := (b - a) % n
	if d < 0 {
		d += n
	}
	return d
}

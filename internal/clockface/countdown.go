package clockface

import "libdb.so/bloclock/internal/led"

// RenderCountdown spreads the waking hours over every LED of the grid, each
// LED covering an equal block of time starting at waketime. Blocks that are
// over, the block containing the current time and blocks still ahead each get
// their own color. Any block in which a calendar event starts is drawn in the
// event's color instead; when several events start in the same block, the last
// one in the list wins.
func RenderCountdown(g *led.Grid, in Input) {
	n := g.Len()
	p := in.Palette

	// Once the waking hours are over, every block has elapsed until the
	// next waketime.
	active := n
	if since := in.Sleep.SinceWaketime(in.Minute); since < AwakeMinutes {
		active = awakeBlock(since, n)
	}

	pulse := led.Fade(p.Now, led.Oscillate(in.Frame, in.Options.PulseRate))

	for i := range g.Pix {
		switch {
		case i < active:
			g.Pix[i] = p.Elapsed
		case i == active:
			g.Pix[i] = pulse
		default:
			g.Pix[i] = p.Upcoming
		}
	}

	for _, ev := range in.Events {
		start, ok := ev.StartMinute()
		if !ok {
			continue
		}
		since := in.Sleep.SinceWaketime(start)
		if since >= AwakeMinutes {
			continue
		}
		g.Pix[awakeBlock(since, n)] = p.eventColor(ev)
	}
}

// awakeBlock returns the block of n that holds the given minute after
// waketime.
func awakeBlock(sinceWaketime, n int) int {
	return sinceWaketime * n / AwakeMinutes
}

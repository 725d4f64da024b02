package led

import "math"

// breatheScale normalizes exp(sin(x)), which spans [1/e, e], into [0, 1].
var breatheScale = 1 / (math.E - 1/math.E)

// Fade dims c by amount, which is expected to be in [0, 1]. Every channel is
// scaled by amount*(channel/255), so dimming is quadratic in the channel value
// and bright channels keep their intensity longer than dim ones.
func Fade(c Color, amount float64) Color {
	return Color{
		R: c.R * amount * (c.R / MaxChannel),
		G: c.G * amount * (c.G / MaxChannel),
		B: c.B * amount * (c.B / MaxChannel),
	}
}

// Breathe returns the brightness in [0, 1] of a breathing LED at the given
// frame. The curve repeats every period frames.
func Breathe(frame uint64, period float64) float64 {
	if period <= 0 {
		return 0
	}
	phase := math.Mod(float64(frame), period) / period
	return (math.Exp(math.Sin(2*math.Pi*phase)) - 1/math.E) * breatheScale
}

// Oscillate returns a plain sine pulse in [0, 1]. A larger rate gives a slower
// pulse; the period is 2π*rate frames.
func Oscillate(frame uint64, rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return (math.Sin(float64(frame)/rate) + 1) / 2
}

// Lerp linearly interpolates every channel between a and b.
func Lerp(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

package led

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColors = []Color{
	RGB(255, 10, 150),
	RGB(100, 1, 1),
	RGB(0, 0, 2),
	RGB(0, 30, 100),
	RGB(255, 255, 255),
}

func TestFadeEndpoints(t *testing.T) {
	for _, c := range testColors {
		t.Run(c.String(), func(t *testing.T) {
			assert.Equal(t, Off, Fade(c, 0))

			full := Fade(c, 1)
			assert.InDelta(t, c.R*c.R/MaxChannel, full.R, 1e-9)
			assert.InDelta(t, c.G*c.G/MaxChannel, full.G, 1e-9)
			assert.InDelta(t, c.B*c.B/MaxChannel, full.B, 1e-9)
		})
	}
}

func TestFadeIsQuadratic(t *testing.T) {
	c := RGB(255, 128, 0)

	full := Fade(c, 1)
	assert.Equal(t, 255.0, full.R)
	assert.InDelta(t, 128*128/255.0, full.G, 1e-9)
	assert.Equal(t, 0.0, full.B)

	half := Fade(c, 0.5)
	assert.InDelta(t, 127.5, half.R, 1e-9)
	assert.InDelta(t, 0.5*128*128/255.0, half.G, 1e-9)
}

func TestFadeFullBrightnessKeepsSaturatedChannels(t *testing.T) {
	c := RGB(255, 0, 255)
	assert.Equal(t, c.Bytes(), Fade(c, 1).Bytes())
}

func TestBreatheBounded(t *testing.T) {
	const period = 200
	for frame := uint64(0); frame < 3*period; frame++ {
		v := Breathe(frame, period)
		require.GreaterOrEqual(t, v, -1e-12, "frame %d", frame)
		require.LessOrEqual(t, v, 1+1e-12, "frame %d", frame)
	}
}

func TestBreathePeriodic(t *testing.T) {
	for _, period := range []float64{7, 40, 200} {
		for frame := uint64(0); frame < 500; frame += 3 {
			assert.InDelta(t,
				Breathe(frame, period),
				Breathe(frame+uint64(period), period),
				1e-9, "period %v frame %d", period, frame)
		}
	}
}

func TestBreatheShape(t *testing.T) {
	const period = 100
	// sin = 0 gives exp(0) = 1.
	assert.InDelta(t, (1-1/math.E)/(math.E-1/math.E), Breathe(0, period), 1e-12)
	// Peak and trough of the sine map onto the ends of the range.
	assert.InDelta(t, 1, Breathe(25, period), 1e-12)
	assert.InDelta(t, 0, Breathe(75, period), 1e-12)
}

func TestOscillate(t *testing.T) {
	assert.InDelta(t, 0.5, Oscillate(0, 20), 1e-12)
	for frame := uint64(0); frame < 1000; frame++ {
		v := Oscillate(frame, 20)
		require.True(t, v >= 0 && v <= 1, "frame %d: %v", frame, v)
	}
}

func TestLerp(t *testing.T) {
	a := RGB(0, 0, 2)
	b := RGB(60, 0, 12)
	assert.Equal(t, a, Lerp(a, b, 0))
	assert.Equal(t, b, Lerp(a, b, 1))
	assert.Equal(t, RGB(30, 0, 7), Lerp(a, b, 0.5))
}

func TestColorBytes(t *testing.T) {
	tests := []struct {
		name string
		in   Color
		want [3]uint8
	}{
		{"integral", RGB(1, 2, 3), [3]uint8{1, 2, 3}},
		{"half rounds away from zero", RGB(0.5, 1.5, 2.5), [3]uint8{1, 2, 3}},
		{"below half rounds down", RGB(0.49, 1.2, 254.4), [3]uint8{0, 1, 254}},
		{"clamps negative", RGB(-3, -0.6, 0), [3]uint8{0, 0, 0}},
		{"clamps overflow", RGB(255.4, 300, 1e9), [3]uint8{255, 255, 255}},
		{"nan is off", RGB(math.NaN(), 0, 0), [3]uint8{0, 0, 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.in.Bytes())
		})
	}
}

func TestColorText(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#ff0a96")))
	assert.Equal(t, RGB(255, 10, 150), c)

	text, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#ff0a96", string(text))

	assert.Error(t, c.UnmarshalText([]byte("magenta")))
}

func TestGrid(t *testing.T) {
	g := NewGrid(3, 2)
	require.Equal(t, 6, g.Len())

	g.Set(2, 1, RGB(1, 2, 3))
	assert.Equal(t, RGB(1, 2, 3), g.Pix[5])
	assert.Equal(t, RGB(1, 2, 3), g.At(2, 1))
	assert.Equal(t, LEDs{Off, Off, RGB(1, 2, 3)}, g.Row(1))

	g.Clear()
	for _, c := range g.Pix {
		assert.Equal(t, Off, c)
	}
}

// Package led contains the color type, LED buffers and the animation curves
// used to compose frames.
package led

import (
	"encoding"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MaxChannel is the largest value a channel can take on the wire.
const MaxChannel = 255

// Color is an RGB color with one float per channel. Channels are nominally in
// [0, 255], but composition may push them outside of that range. Values are
// only clamped and rounded when the color is serialized using Bytes.
type Color struct {
	R, G, B float64
}

// Off is the color of an unlit LED.
var Off = Color{}

var (
	_ encoding.TextUnmarshaler = (*Color)(nil)
	_ encoding.TextMarshaler   = Color{}
)

// RGB creates a new Color from the given channels.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Bytes clamps each channel into [0, 255] and rounds it half away from zero.
func (c Color) Bytes() [3]uint8 {
	return [3]uint8{channelByte(c.R), channelByte(c.G), channelByte(c.B)}
}

// String formats the color as a hex triplet of its serialized bytes.
func (c Color) String() string {
	b := c.Bytes()
	return fmt.Sprintf("#%02x%02x%02x", b[0], b[1], b[2])
}

// UnmarshalText parses a hex color such as "#ff0a96".
func (c *Color) UnmarshalText(text []byte) error {
	hex, err := colorful.Hex(string(text))
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	r, g, b := hex.RGB255()
	*c = RGB(float64(r), float64(g), float64(b))
	return nil
}

// MarshalText formats the color the same way String does.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func channelByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= MaxChannel:
		return MaxChannel
	default:
		return uint8(math.Round(v))
	}
}

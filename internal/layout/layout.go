// Package layout translates logical grid positions into the order in which
// LEDs are chained on the wire.
package layout

import (
	"fmt"

	"libdb.so/bloclock/internal/led"
)

// Table maps a logical row-major index to a physical wire index.
type Table []int

// Serpentine builds the table for a panel whose strip runs left to right on
// even rows and right to left on odd rows.
func Serpentine(width, height int) Table {
	t := make(Table, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			xx := x
			if y%2 == 1 {
				xx = width - 1 - x
			}
			t[y*width+x] = y*width + xx
		}
	}
	return t
}

// Panel15x9 is the wiring of the 15×9 clock panel, as produced by the FastLED
// XY map generator for a serpentine layout.
var Panel15x9 = Table{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14,
	29, 28, 27, 26, 25, 24, 23, 22, 21, 20, 19, 18, 17, 16, 15,
	30, 31, 32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44,
	59, 58, 57, 56, 55, 54, 53, 52, 51, 50, 49, 48, 47, 46, 45,
	60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74,
	89, 88, 87, 86, 85, 84, 83, 82, 81, 80, 79, 78, 77, 76, 75,
	90, 91, 92, 93, 94, 95, 96, 97, 98, 99, 100, 101, 102, 103, 104,
	119, 118, 117, 116, 115, 114, 113, 112, 111, 110, 109, 108, 107, 106, 105,
	120, 121, 122, 123, 124, 125, 126, 127, 128, 129, 130, 131, 132, 133, 134,
}

// Validate checks that t is a permutation of [0, len(t)).
func (t Table) Validate() error {
	seen := make([]bool, len(t))
	for i, p := range t {
		if p < 0 || p >= len(t) {
			return fmt.Errorf("index %d maps to %d, outside of [0, %d)", i, p, len(t))
		}
		if seen[p] {
			return fmt.Errorf("index %d maps to %d, which is already taken", i, p)
		}
		seen[p] = true
	}
	return nil
}

// Inverse returns the table mapping physical indices back to logical ones.
func (t Table) Inverse() Table {
	inv := make(Table, len(t))
	for i, p := range t {
		inv[p] = i
	}
	return inv
}

// Mapper serializes logical grids into physical byte buffers.
type Mapper struct {
	width   int
	height  int
	table   Table
	inverse Table
}

// NewMapper creates a mapper for a width×height panel. The table must be a
// permutation of the panel's indices.
func NewMapper(width, height int, table Table) (*Mapper, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid panel size %dx%d", width, height)
	}
	if len(table) != width*height {
		return nil, fmt.Errorf("table has %d entries, panel has %d LEDs", len(table), width*height)
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table: %w", err)
	}
	return &Mapper{
		width:   width,
		height:  height,
		table:   table,
		inverse: table.Inverse(),
	}, nil
}

// Width returns the panel width.
func (m *Mapper) Width() int { return m.width }

// Height returns the panel height.
func (m *Mapper) Height() int { return m.height }

// Len returns the number of LEDs on the panel.
func (m *Mapper) Len() int { return len(m.table) }

// BufferSize returns the number of bytes Serialize produces.
func (m *Mapper) BufferSize() int { return 3 * len(m.table) }

// Index returns the physical index of the logical position (x, y).
func (m *Mapper) Index(x, y int) int {
	return m.table[y*m.width+x]
}

// Serialize writes the grid's colors into dst in physical wire order, three
// bytes per LED. dst is grown if it is too small and the filled buffer is
// returned.
func (m *Mapper) Serialize(dst []byte, g *led.Grid) []byte {
	if cap(dst) < m.BufferSize() {
		dst = make([]byte, m.BufferSize())
	}
	dst = dst[:m.BufferSize()]

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			b := g.At(x, y).Bytes()
			copy(dst[m.Index(x, y)*3:], b[:])
		}
	}
	return dst
}

// Deserialize reads a physical byte buffer back into a logical grid.
func (m *Mapper) Deserialize(buf []byte) (*led.Grid, error) {
	if len(buf) != m.BufferSize() {
		return nil, fmt.Errorf("buffer has %d bytes, expected %d", len(buf), m.BufferSize())
	}

	g := led.NewGrid(m.width, m.height)
	for p, i := range m.inverse {
		g.Pix[i] = led.RGB(float64(buf[p*3]), float64(buf[p*3+1]), float64(buf[p*3+2]))
	}
	return g, nil
}

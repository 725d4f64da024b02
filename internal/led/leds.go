package led

// LEDs describes a strip of LEDs. It is a preallocated slice of Color.
type LEDs []Color

// NewLEDs creates a new strip of LEDs. Colors are initialized to Off.
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c Color) {
	l[i] = c
}

// SetRange sets the color of the LEDs in the given range.
func (l LEDs) SetRange(start, end int, c Color) {
	for i := start; i < end; i++ {
		l[i] = c
	}
}

// Fill sets every LED to c.
func (l LEDs) Fill(c Color) {
	l.SetRange(0, len(l), c)
}

// Grid is a rectangular panel of LEDs stored in row-major logical order.
type Grid struct {
	Width  int
	Height int
	Pix    LEDs
}

// NewGrid creates a width×height grid with every LED off.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    NewLEDs(width * height),
	}
}

// Len returns the number of LEDs in the grid.
func (g *Grid) Len() int { return len(g.Pix) }

// Index returns the logical index of (x, y).
func (g *Grid) Index(x, y int) int { return y*g.Width + x }

// At returns the color at (x, y).
func (g *Grid) At(x, y int) Color { return g.Pix[g.Index(x, y)] }

// Set sets the color at (x, y).
func (g *Grid) Set(x, y int, c Color) { g.Pix[g.Index(x, y)] = c }

// Row returns the LEDs of row y. The returned slice aliases the grid.
func (g *Grid) Row(y int) LEDs {
	return g.Pix[y*g.Width : (y+1)*g.Width]
}

// Clear turns every LED off.
func (g *Grid) Clear() { g.Pix.Fill(Off) }

// Package display holds the 64×32 monochrome CHIP-8 framebuffer.
package display

import "gochip8/pkg/grid"

const (
	Width  = 64
	Height = 32
)

// Frame is a row-major copy of the screen. Renderers only ever see frames,
// never the live framebuffer.
type Frame [Width * Height]bool

// At reports whether the cell at (x, y) is lit. Coordinates wrap.
func (f *Frame) At(x, y int) bool {
	x, y = grid.Wrap(x, y, Width, Height)
	return f[grid.Index(x, y, Width)]
}

// Lit counts the cells that are on.
func (f *Frame) Lit() int {
	n := 0
	for _, on := range f {
		if on {
			n++
		}
	}
	return n
}

// Framebuffer is the XOR-drawn screen. A cell is on iff it has been toggled
// an odd number of times since the last Clear. It has a single owner and is
// not safe for concurrent use.
type Framebuffer struct {
	cells Frame
}

// New returns a cleared framebuffer.
func New() *Framebuffer {
	return &Framebuffer{}
}

// SetPixel XORs on into the cell at (x mod 64, y mod 32) and returns true
// iff the cell was already lit and on is true.
func (fb *Framebuffer) SetPixel(x, y int, on bool) bool {
	x, y = grid.Wrap(x, y, Width, Height)
	idx := grid.Index(x, y, Width)
	collision := fb.cells[idx] && on
	fb.cells[idx] = fb.cells[idx] != on
	return collision
}

// Clear turns every cell off.
func (fb *Framebuffer) Clear() {
	fb.cells = Frame{}
}

// Snapshot returns a copy of the current cells.
func (fb *Framebuffer) Snapshot() Frame {
	return fb.cells
}

// Restore replaces the cells with f.
func (fb *Framebuffer) Restore(f Frame) {
	fb.cells = f
}

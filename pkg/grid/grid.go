// Package grid converts between linear row-major indices and (x, y) cell
// coordinates.
package grid

// GetGridCoords returns the column and row of index in a row-major grid that
// is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Index is the inverse of GetGridCoords.
func Index(x, y, cols int) int {
	return y*cols + x
}

// Wrap folds (x, y) onto a cols×rows torus. Negative coordinates wrap from
// the opposite edge.
func Wrap(x, y, cols, rows int) (int, int) {
	x %= cols
	if x < 0 {
		x += cols
	}
	y %= rows
	if y < 0 {
		y += rows
	}
	return x, y
}

package main

import (
	"bufio"
	"io"
	"strings"

	"gochip8/pkg/display"
)

const (
	screenCols = display.Width
	screenRows = display.Height / 2

	helpLine = "Ctrl-P pause  Ctrl-R reset  Ctrl-C quit"
)

// renderFrame draws two framebuffer rows per terminal line with half blocks.
// Lines end in CRLF since the terminal is in raw mode.
func renderFrame(frame display.Frame) string {
	var sb strings.Builder
	sb.Grow(screenRows * (screenCols*3 + 2))
	for row := 0; row < screenRows; row++ {
		for x := 0; x < screenCols; x++ {
			top, bottom := frame.At(x, row*2), frame.At(x, row*2+1)
			switch {
			case top && bottom:
				sb.WriteString("█")
			case top:
				sb.WriteString("▀")
			case bottom:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// terminalDisplay implements cpu.Display on an ANSI terminal.
type terminalDisplay struct {
	w *bufio.Writer
}

func newTerminalDisplay(w io.Writer) *terminalDisplay {
	return &terminalDisplay{w: bufio.NewWriter(w)}
}

// Open clears the screen and hides the cursor.
func (d *terminalDisplay) Open() {
	d.w.WriteString("\x1b[2J\x1b[?25l")
	d.w.Flush()
}

func (d *terminalDisplay) Present(frame display.Frame) {
	d.w.WriteString("\x1b[H")
	d.w.WriteString(renderFrame(frame))
	d.w.WriteString(helpLine)
	d.w.Flush()
}

// Close shows the cursor again and moves below the picture.
func (d *terminalDisplay) Close() {
	d.w.WriteString("\x1b[?25h\r\n")
	d.w.Flush()
}

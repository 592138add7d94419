package cpu

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"gochip8/pkg/display"
)

// FrameRGBA expands frame into a display.Width×display.Height RGBA8888 byte
// slice, painting lit cells fg and the rest bg.
func FrameRGBA(frame display.Frame, fg, bg color.RGBA) []byte {
	pixels := make([]byte, len(frame)*4)
	for i, on := range frame {
		c := bg
		if on {
			c = fg
		}
		pixels[i*4+0] = c.R
		pixels[i*4+1] = c.G
		pixels[i*4+2] = c.B
		pixels[i*4+3] = c.A
	}
	return pixels
}

// GetFramebufferRGBA returns the current screen as RGBA bytes.
func (c *CPU) GetFramebufferRGBA(fg, bg color.RGBA) []byte {
	return FrameRGBA(c.Snapshot(), fg, bg)
}

// GetFramebufferImage returns the current screen as an *image.RGBA, upscaled
// by scale with nearest-neighbour sampling.
func (c *CPU) GetFramebufferImage(fg, bg color.RGBA, scale int) *image.RGBA {
	src := &image.RGBA{
		Pix:    c.GetFramebufferRGBA(fg, bg),
		Stride: display.Width * 4,
		Rect:   image.Rect(0, 0, display.Width, display.Height),
	}
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, display.Width*scale, display.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ScreenshotPNG encodes the current screen as PNG.
func (c *CPU) ScreenshotPNG(fg, bg color.RGBA, scale int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.GetFramebufferImage(fg, bg, scale)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveScreenshot encodes the current screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string, fg, bg color.RGBA, scale int) error {
	img := c.GetFramebufferImage(fg, bg, scale)
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

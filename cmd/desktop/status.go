package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
)

const statusBarHeight = 18

// statusLine summarises the machine for the status bar.
func statusLine(vm *cpu.CPU, paused bool) string {
	next := "----"
	if in, err := vm.Peek(); err == nil {
		next = asm.Disassemble(in.Word)
	}
	s := fmt.Sprintf("PC=%03X I=%03X DT=%02X ST=%02X SP=%d  %s", vm.PC, vm.I, vm.Delay, vm.Sound, vm.SP, next)
	if paused {
		s += "  [PAUSED]"
	}
	return s
}

func drawStatusBar(screen *ebiten.Image, y, width int, line, notice string) {
	face := basicfont.Face7x13
	ebitenutil.DrawRect(screen, 0, float64(y), float64(width), statusBarHeight, color.RGBA{0, 0, 0, 200})
	text.Draw(screen, line, face, 4, y+13, color.RGBA{190, 190, 190, 255})
	if notice != "" {
		w := text.BoundString(face, notice).Dx()
		text.Draw(screen, notice, face, width-w-4, y+13, color.RGBA{0, 220, 90, 255})
	}
}

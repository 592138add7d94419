package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/rom"
)

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

// run opens the emulator window and returns the process exit status: 2 for
// bad usage, 1 when the ROM cannot be started or the machine faults, 0 when
// the window is closed.
func run(args []string, stderr io.Writer) int {
	if len(args) != 2 {
		name := "chip8-desktop"
		if len(args) > 0 {
			name = filepath.Base(args[0])
		}
		fmt.Fprintf(stderr, "usage: %s <rom>\n", name)
		return 2
	}
	romPath := args[1]
	logger := log.New(stderr, "", log.LstdFlags)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return 1
	}

	image, err := rom.Load(romPath)
	if err != nil {
		logger.Printf("Failed to load ROM: %v", err)
		return 1
	}

	vm, err := cpu.New(image)
	if err != nil {
		logger.Printf("Failed to initialise machine: %v", err)
		return 1
	}

	game, err := newGame(vm, cfg, romPath)
	if err != nil {
		logger.Printf("Invalid keymap: %v", err)
		return 1
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("CHIP-8 - " + filepath.Base(romPath))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Printf("Emulation stopped: %v", err)
		return 1
	}
	return 0
}

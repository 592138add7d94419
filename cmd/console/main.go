package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gochip8/pkg/clock"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/rom"
)

func main() {
	os.Exit(run(os.Args, os.Stderr))
}

// run starts a session and returns the process exit status: 2 for bad usage,
// 1 when the ROM cannot be started or the machine faults, 0 on a clean quit.
func run(args []string, stderr io.Writer) int {
	if len(args) != 2 {
		name := "chip8-console"
		if len(args) > 0 {
			name = filepath.Base(args[0])
		}
		fmt.Fprintf(stderr, "usage: %s <rom>\n", name)
		return 2
	}
	logger := log.New(stderr, "", log.LstdFlags)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Printf("Invalid configuration: %v", err)
		return 1
	}

	image, err := rom.Load(args[1])
	if err != nil {
		logger.Printf("Failed to load ROM: %v", err)
		return 1
	}

	vm, err := cpu.New(image)
	if err != nil {
		logger.Printf("Failed to initialise machine: %v", err)
		return 1
	}

	if ok, w, h := terminalFits(int(os.Stdout.Fd())); !ok {
		logger.Printf("Terminal is %dx%d, the screen needs %dx%d", w, h, screenCols, screenRows+1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keypad := clock.NewKeypad()
	r := &router{keys: cfg.Keys, keypad: keypad, quit: cancel}
	host := NewTerminalHost(r.route)
	if err := host.Start(); err != nil {
		logger.Printf("Failed to open terminal: %v", err)
		return 1
	}

	out := newTerminalDisplay(os.Stdout)
	out.Open()
	runErr := clock.Run(ctx, vm, cfg, keypad, out)
	out.Close()
	host.Stop()

	if runErr != nil {
		logger.Printf("Emulation stopped: %v", runErr)
		return 1
	}
	return 0
}

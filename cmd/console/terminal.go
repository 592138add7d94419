package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalHost owns the console's stdin while the emulator runs: it switches
// the terminal to raw mode and feeds every byte read to route on its own
// goroutine. route must be safe to call from that goroutine.
type TerminalHost struct {
	route        func(b byte)
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewTerminalHost returns a host that is idle until Start.
func NewTerminalHost(route func(b byte)) *TerminalHost {
	return &TerminalHost{
		route:  route,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts stdin into raw, non-blocking mode and starts the reader. On error
// the terminal is left as it was and Stop is a no-op.
func (h *TerminalHost) Start() error {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		close(h.done)
		return fmt.Errorf("set raw mode: %w", err)
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return fmt.Errorf("set nonblocking stdin: %w", err)
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 16)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			for i := 0; i < n; i++ {
				h.route(buf[i])
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	return nil
}

// Stop waits for the reader to exit, then returns stdin to blocking mode and
// the terminal to the state saved by Start. It is safe to call more than once.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

// terminalFits reports whether the terminal on fd can show the whole screen
// plus the help line.
func terminalFits(fd int) (bool, int, int) {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return true, 0, 0
	}
	return w >= screenCols && h >= screenRows+1, w, h
}

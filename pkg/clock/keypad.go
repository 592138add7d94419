package clock

import (
	"sync"
	"time"

	"gochip8/pkg/cpu"
)

// Keypad is a mutex-guarded keypad for front-ends that read input on a
// background goroutine. Terminals only report key presses, so a key stays
// down until its hold deadline passes or it is released.
type Keypad struct {
	mu     sync.Mutex
	until  [cpu.NumKeys]time.Time
	paused bool
	reset  bool

	now func() time.Time
}

func NewKeypad() *Keypad {
	return &Keypad{now: time.Now}
}

// Hold marks key as down for d.
func (k *Keypad) Hold(key byte, d time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.until[key&0x0F] = k.now().Add(d)
}

func (k *Keypad) Release(key byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.until[key&0x0F] = time.Time{}
}

// Keys implements cpu.Input.
func (k *Keypad) Keys() [cpu.NumKeys]bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	var keys [cpu.NumKeys]bool
	for i, t := range k.until {
		keys[i] = now.Before(t)
	}
	return keys
}

func (k *Keypad) TogglePause() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.paused = !k.paused
}

func (k *Keypad) Paused() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.paused
}

// RequestReset asks the run loop for a hard reset before its next step.
func (k *Keypad) RequestReset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.reset = true
}

// TakeReset reports and clears a pending reset request.
func (k *Keypad) TakeReset() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	r := k.reset
	k.reset = false
	return r
}

package cpu

import "fmt"

const (
	NumRegisters = 16
	NumKeys      = 16
	StackDepth   = 16
	RegF         = 0xF
)

// Registers is the CHIP-8 register file. VF doubles as the carry, borrow
// and collision flag.
type Registers struct {
	V  [NumRegisters]byte
	I  uint16
	PC uint16

	Stack [StackDepth]uint16
	SP    uint8

	Delay byte
	Sound byte

	Keys [NumKeys]bool
}

func (r *Registers) reset() {
	*r = Registers{PC: ProgramStart}
}

// reg returns a pointer to VX. Indices come from 4-bit fields, so anything
// larger is a decoder bug.
func (r *Registers) reg(idx uint8) *byte {
	if int(idx) >= NumRegisters {
		panic(fmt.Sprintf("cpu: register index %d out of range", idx))
	}
	return &r.V[idx]
}

func (r *Registers) push(addr uint16) error {
	if int(r.SP) >= StackDepth {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, r.SP)
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

func (r *Registers) pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}

// TickTimers decrements the delay and sound timers toward zero. Call it at
// 60 Hz of wall-clock time, independent of the instruction rate.
func (r *Registers) TickTimers() {
	if r.Delay > 0 {
		r.Delay--
	}
	if r.Sound > 0 {
		r.Sound--
	}
}

// SetKeys replaces the keypad state.
func (r *Registers) SetKeys(keys [NumKeys]bool) {
	r.Keys = keys
}

// pressedKey returns the lowest pressed key.
func (r *Registers) pressedKey() (byte, bool) {
	for k, down := range r.Keys {
		if down {
			return byte(k), true
		}
	}
	return 0, false
}

package cpu

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress = errors.New("address out of range")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrROMTooLarge    = errors.New("program too large for memory")
)

// Fault is a fatal execution error. The machine state is left as it was
// before the faulting instruction.
type Fault struct {
	PC   uint16
	Word uint16
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at PC=0x%03X (opcode %04X): %v", f.PC, f.Word, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

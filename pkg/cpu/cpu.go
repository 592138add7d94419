// Package cpu implements the CHIP-8 machine: memory, register file,
// instruction decoder and executor.
package cpu

import (
	"math/rand/v2"
	"time"

	"gochip8/pkg/display"
)

// Point is a framebuffer cell.
type Point struct {
	X, Y int
}

// Effect describes what a single Step did to the screen.
type Effect struct {
	Cleared   bool
	Toggled   []Point
	Collision bool
}

// Changed reports whether the screen needs redrawing.
func (e Effect) Changed() bool {
	return e.Cleared || len(e.Toggled) > 0
}

// CPU owns all machine state for one emulation session. It is not safe for
// concurrent use; front-ends read the screen through Snapshot between steps.
type CPU struct {
	Registers

	Memory Memory
	Screen *display.Framebuffer

	// Steps counts successfully executed instructions.
	Steps uint64

	rom []byte
	rng *rand.Rand
}

// Option configures a CPU.
type Option func(*CPU)

// WithSeed makes CXNN deterministic.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// New creates a machine with rom loaded at ProgramStart.
func New(rom []byte, opts ...Option) (*CPU, error) {
	c := &CPU{
		Screen: display.New(),
		rom:    append([]byte(nil), rom...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		WithSeed(uint64(time.Now().UnixNano()))(c)
	}
	if err := c.Memory.load(c.rom); err != nil {
		return nil, err
	}
	c.Registers.reset()
	return c, nil
}

// Reset performs a hard reset: memory is re-zeroed, the ROM reloaded and all
// registers, timers and the screen cleared.
func (c *CPU) Reset() {
	// the ROM already fit when New accepted it
	_ = c.Memory.load(c.rom)
	c.Registers.reset()
	c.Screen.Clear()
	c.Steps = 0
}

// ROM returns a copy of the loaded program image.
func (c *CPU) ROM() []byte {
	return append([]byte(nil), c.rom...)
}

// Snapshot returns a copy of the screen.
func (c *CPU) Snapshot() display.Frame {
	return c.Screen.Snapshot()
}

// Peek decodes the instruction at PC without executing it.
func (c *CPU) Peek() (Instruction, error) {
	word, err := c.Memory.Word(c.PC)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(word), nil
}

// Step fetches, decodes and executes one instruction.
func (c *CPU) Step() (Effect, error) {
	pc := c.PC
	word, err := c.Memory.Word(pc)
	if err != nil {
		return Effect{}, &Fault{PC: pc, Err: err}
	}

	in := Decode(word)
	c.PC = pc + 2

	var fx Effect
	if err := handlers[in.Kind](c, in, &fx); err != nil {
		c.PC = pc
		return Effect{}, &Fault{PC: pc, Word: word, Err: err}
	}
	c.Steps++
	return fx, nil
}

// Run executes up to n instructions and returns how many completed.
func (c *CPU) Run(n int) (int, error) {
	for i := 0; i < n; i++ {
		if _, err := c.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}

type handler func(c *CPU, in Instruction, fx *Effect) error

// handlers is indexed by Kind; TestHandlerTableIsComplete keeps it exhaustive.
var handlers = [numKinds]handler{
	KindUnknown: opUnknown,
	KindSYS:     opSYS,
	KindCLS:     opCLS,
	KindRET:     opRET,
	KindJP:      opJP,
	KindCALL:    opCALL,
	KindSEImm:   opSEImm,
	KindSNEImm:  opSNEImm,
	KindSEReg:   opSEReg,
	KindLDImm:   opLDImm,
	KindADDImm:  opADDImm,
	KindLDReg:   opLDReg,
	KindOR:      opOR,
	KindAND:     opAND,
	KindXOR:     opXOR,
	KindADDReg:  opADDReg,
	KindSUB:     opSUB,
	KindSHR:     opSHR,
	KindSUBN:    opSUBN,
	KindSHL:     opSHL,
	KindSNEReg:  opSNEReg,
	KindLDI:     opLDI,
	KindJPV0:    opJPV0,
	KindRND:     opRND,
	KindDRW:     opDRW,
	KindSKP:     opSKP,
	KindSKNP:    opSKNP,
	KindLDVxDT:  opLDVxDT,
	KindLDVxK:   opLDVxK,
	KindLDDTVx:  opLDDTVx,
	KindLDSTVx:  opLDSTVx,
	KindADDI:    opADDI,
	KindLDF:     opLDF,
	KindLDB:     opLDB,
	KindLDIVx:   opLDIVx,
	KindLDVxI:   opLDVxI,
}

func (c *CPU) skipIf(cond bool) {
	if cond {
		c.PC += 2
	}
}

func opUnknown(_ *CPU, _ Instruction, _ *Effect) error {
	return ErrUnknownOpcode
}

// opSYS ignores calls into host machine code.
func opSYS(_ *CPU, _ Instruction, _ *Effect) error {
	return nil
}

func opCLS(c *CPU, _ Instruction, fx *Effect) error {
	c.Screen.Clear()
	fx.Cleared = true
	return nil
}

func opRET(c *CPU, _ Instruction, _ *Effect) error {
	addr, err := c.pop()
	if err != nil {
		return err
	}
	c.PC = addr
	return nil
}

func opJP(c *CPU, in Instruction, _ *Effect) error {
	c.PC = in.NNN
	return nil
}

func opCALL(c *CPU, in Instruction, _ *Effect) error {
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = in.NNN
	return nil
}

func opSEImm(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(*c.reg(in.X) == in.NN)
	return nil
}

func opSNEImm(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(*c.reg(in.X) != in.NN)
	return nil
}

func opSEReg(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(*c.reg(in.X) == *c.reg(in.Y))
	return nil
}

func opSNEReg(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(*c.reg(in.X) != *c.reg(in.Y))
	return nil
}

func opLDImm(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) = in.NN
	return nil
}

func opADDImm(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) += in.NN
	return nil
}

func opLDReg(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) = *c.reg(in.Y)
	return nil
}

func opOR(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) |= *c.reg(in.Y)
	return nil
}

func opAND(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) &= *c.reg(in.Y)
	return nil
}

func opXOR(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) ^= *c.reg(in.Y)
	return nil
}

// Flags are computed from the operands before the write. VF is written last,
// so it wins when X is F.
func opADDReg(c *CPU, in Instruction, _ *Effect) error {
	vx, vy := *c.reg(in.X), *c.reg(in.Y)
	sum := uint16(vx) + uint16(vy)
	*c.reg(in.X) = byte(sum)
	c.V[RegF] = boolByte(sum > 0xFF)
	return nil
}

func opSUB(c *CPU, in Instruction, _ *Effect) error {
	vx, vy := *c.reg(in.X), *c.reg(in.Y)
	*c.reg(in.X) = vx - vy
	c.V[RegF] = boolByte(vx >= vy)
	return nil
}

func opSUBN(c *CPU, in Instruction, _ *Effect) error {
	vx, vy := *c.reg(in.X), *c.reg(in.Y)
	*c.reg(in.X) = vy - vx
	c.V[RegF] = boolByte(vy >= vx)
	return nil
}

// Shifts write VF first, then VX.
func opSHR(c *CPU, in Instruction, _ *Effect) error {
	vx := *c.reg(in.X)
	c.V[RegF] = vx & 0x01
	*c.reg(in.X) = vx >> 1
	return nil
}

func opSHL(c *CPU, in Instruction, _ *Effect) error {
	vx := *c.reg(in.X)
	c.V[RegF] = (vx >> 7) & 0x01
	*c.reg(in.X) = vx << 1
	return nil
}

func opLDI(c *CPU, in Instruction, _ *Effect) error {
	c.I = in.NNN
	return nil
}

func opJPV0(c *CPU, in Instruction, _ *Effect) error {
	c.PC = uint16(c.V[0]) + in.NNN
	return nil
}

func opRND(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) = byte(c.rng.UintN(256)) & in.NN
	return nil
}

func opDRW(c *CPU, in Instruction, fx *Effect) error {
	sprite, err := c.Memory.span(c.I, int(in.N))
	if err != nil {
		return err
	}
	x0, y0 := int(*c.reg(in.X)), int(*c.reg(in.Y))

	collision := false
	for row, bits := range sprite {
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if c.Screen.SetPixel(x0+col, y0+row, true) {
				collision = true
			}
			fx.Toggled = append(fx.Toggled, Point{
				X: (x0 + col) % display.Width,
				Y: (y0 + row) % display.Height,
			})
		}
	}
	c.V[RegF] = boolByte(collision)
	fx.Collision = collision
	return nil
}

func opSKP(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(c.Keys[*c.reg(in.X)&0x0F])
	return nil
}

func opSKNP(c *CPU, in Instruction, _ *Effect) error {
	c.skipIf(!c.Keys[*c.reg(in.X)&0x0F])
	return nil
}

func opLDVxDT(c *CPU, in Instruction, _ *Effect) error {
	*c.reg(in.X) = c.Delay
	return nil
}

// opLDVxK blocks by re-executing itself until a key is down.
func opLDVxK(c *CPU, in Instruction, _ *Effect) error {
	key, ok := c.pressedKey()
	if !ok {
		c.PC -= 2
		return nil
	}
	*c.reg(in.X) = key
	return nil
}

func opLDDTVx(c *CPU, in Instruction, _ *Effect) error {
	c.Delay = *c.reg(in.X)
	return nil
}

func opLDSTVx(c *CPU, in Instruction, _ *Effect) error {
	c.Sound = *c.reg(in.X)
	return nil
}

func opADDI(c *CPU, in Instruction, _ *Effect) error {
	c.I += uint16(*c.reg(in.X))
	return nil
}

func opLDF(c *CPU, in Instruction, _ *Effect) error {
	c.I = FontAddress(*c.reg(in.X))
	return nil
}

func opLDB(c *CPU, in Instruction, _ *Effect) error {
	dst, err := c.Memory.span(c.I, 3)
	if err != nil {
		return err
	}
	vx := *c.reg(in.X)
	dst[0] = vx / 100
	dst[1] = vx / 10 % 10
	dst[2] = vx % 10
	return nil
}

func opLDIVx(c *CPU, in Instruction, _ *Effect) error {
	dst, err := c.Memory.span(c.I, int(in.X)+1)
	if err != nil {
		return err
	}
	copy(dst, c.V[:in.X+1])
	return nil
}

func opLDVxI(c *CPU, in Instruction, _ *Effect) error {
	src, err := c.Memory.span(c.I, int(in.X)+1)
	if err != nil {
		return err
	}
	copy(c.V[:in.X+1], src)
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

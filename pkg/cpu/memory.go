package cpu

import "fmt"

// Memory map:
//
//	0x000-0x1FF  reserved for the interpreter (font glyphs at 0x050-0x09F)
//	0x200-0xFFF  program and work RAM
const (
	MemorySize    = 0x1000
	ProgramStart  = 0x200
	FontStart     = 0x050
	FontGlyphSize = 5
	MaxROMSize    = MemorySize - ProgramStart
)

// fontSet holds the 4x5 hex digit glyphs 0-F.
var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat 4 KiB address space. Accessors never wrap: any access
// that would reach 0x1000 fails with ErrInvalidAddress.
type Memory [MemorySize]byte

// load zero-fills memory, installs the font and copies rom to ProgramStart.
func (m *Memory) load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes > %d bytes", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	*m = Memory{}
	copy(m[FontStart:], fontSet[:])
	copy(m[ProgramStart:], rom)
	return nil
}

// span returns the n bytes starting at addr.
func (m *Memory) span(addr uint16, n int) ([]byte, error) {
	if n < 0 || int(addr)+n > MemorySize {
		return nil, fmt.Errorf("%w: 0x%04X+%d", ErrInvalidAddress, addr, n)
	}
	return m[int(addr) : int(addr)+n], nil
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (byte, error) {
	b, err := m.span(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Write stores val at addr.
func (m *Memory) Write(addr uint16, val byte) error {
	b, err := m.span(addr, 1)
	if err != nil {
		return err
	}
	b[0] = val
	return nil
}

// Word reads the big-endian instruction word at [addr, addr+1].
func (m *Memory) Word(addr uint16) (uint16, error) {
	b, err := m.span(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// FontAddress returns the address of the glyph for the low nibble of digit.
func FontAddress(digit byte) uint16 {
	return FontStart + uint16(digit&0x0F)*FontGlyphSize
}

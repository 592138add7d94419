package asm

import (
	"fmt"

	"gochip8/pkg/cpu"
)

// Line is one disassembled program word.
type Line struct {
	Addr uint16
	Word uint16
	Text string
}

func (l Line) String() string {
	return fmt.Sprintf("0x%03X: %04X  %s", l.Addr, l.Word, l.Text)
}

// Disassemble renders word in the syntax Assemble accepts. Unassigned
// words come out as .WORD so the listing still reassembles.
func Disassemble(word uint16) string {
	in := cpu.Decode(word)
	name := in.Kind.String()

	switch in.Kind {
	case cpu.KindCLS, cpu.KindRET:
		return name
	case cpu.KindSYS, cpu.KindJP, cpu.KindCALL:
		return fmt.Sprintf("%s 0x%03X", name, in.NNN)
	case cpu.KindJPV0:
		return fmt.Sprintf("JP V0, 0x%03X", in.NNN)
	case cpu.KindSEImm, cpu.KindSNEImm, cpu.KindLDImm, cpu.KindADDImm, cpu.KindRND:
		return fmt.Sprintf("%s V%X, 0x%02X", name, in.X, in.NN)
	case cpu.KindSEReg, cpu.KindSNEReg, cpu.KindLDReg, cpu.KindOR, cpu.KindAND, cpu.KindXOR,
		cpu.KindADDReg, cpu.KindSUB, cpu.KindSHR, cpu.KindSUBN, cpu.KindSHL:
		return fmt.Sprintf("%s V%X, V%X", name, in.X, in.Y)
	case cpu.KindLDI:
		return fmt.Sprintf("LD I, 0x%03X", in.NNN)
	case cpu.KindDRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", in.X, in.Y, in.N)
	case cpu.KindSKP, cpu.KindSKNP:
		return fmt.Sprintf("%s V%X", name, in.X)
	case cpu.KindLDVxDT:
		return fmt.Sprintf("LD V%X, DT", in.X)
	case cpu.KindLDVxK:
		return fmt.Sprintf("LD V%X, K", in.X)
	case cpu.KindLDDTVx:
		return fmt.Sprintf("LD DT, V%X", in.X)
	case cpu.KindLDSTVx:
		return fmt.Sprintf("LD ST, V%X", in.X)
	case cpu.KindADDI:
		return fmt.Sprintf("ADD I, V%X", in.X)
	case cpu.KindLDF:
		return fmt.Sprintf("LD F, V%X", in.X)
	case cpu.KindLDB:
		return fmt.Sprintf("LD B, V%X", in.X)
	case cpu.KindLDIVx:
		return fmt.Sprintf("LD [I], V%X", in.X)
	case cpu.KindLDVxI:
		return fmt.Sprintf("LD V%X, [I]", in.X)
	}
	return fmt.Sprintf(".WORD 0x%04X", word)
}

// DisassembleProgram walks image two bytes at a time from 0x200. Sprite data
// is indistinguishable from code, so it is listed as whatever it decodes to.
// A trailing odd byte is listed as .BYTE.
func DisassembleProgram(image []byte) []Line {
	lines := make([]Line, 0, (len(image)+1)/2)
	for off := 0; off < len(image); off += 2 {
		addr := uint16(cpu.ProgramStart + off)
		if off+1 == len(image) {
			lines = append(lines, Line{
				Addr: addr,
				Word: uint16(image[off]),
				Text: fmt.Sprintf(".BYTE 0x%02X", image[off]),
			})
			break
		}
		word := uint16(image[off])<<8 | uint16(image[off+1])
		lines = append(lines, Line{Addr: addr, Word: word, Text: Disassemble(word)})
	}
	return lines
}

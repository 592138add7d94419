// Package asm assembles and disassembles CHIP-8 programs written with the
// conventional Cowgod mnemonics (CLS, LD V1, 0x2A, DRW V0, V1, 5, ...).
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/cpu"
)

// operand describes what an instruction expects in one operand position.
type operand int

const (
	argReg    operand = iota // VX, encoded at X
	argRegY                  // VY, encoded at Y
	argV0                    // literally V0, not encoded
	argByte                  // 8-bit value at NN
	argAddr                  // 12-bit value at NNN
	argNibble                // 4-bit value at N
	argI                     // I
	argIndI                  // [I]
	argDT                    // DT
	argST                    // ST
	argK                     // K
	argF                     // F
	argB                     // B
)

// form is one accepted operand shape of a mnemonic.
type form struct {
	base uint16
	args []operand
}

var forms = map[string][]form{
	"CLS":  {{0x00E0, nil}},
	"RET":  {{0x00EE, nil}},
	"SYS":  {{0x0000, []operand{argAddr}}},
	"JP":   {{0x1000, []operand{argAddr}}, {0xB000, []operand{argV0, argAddr}}},
	"CALL": {{0x2000, []operand{argAddr}}},
	"SE":   {{0x3000, []operand{argReg, argByte}}, {0x5000, []operand{argReg, argRegY}}},
	"SNE":  {{0x4000, []operand{argReg, argByte}}, {0x9000, []operand{argReg, argRegY}}},
	"LD": {
		{0x6000, []operand{argReg, argByte}},
		{0x8000, []operand{argReg, argRegY}},
		{0xA000, []operand{argI, argAddr}},
		{0xF007, []operand{argReg, argDT}},
		{0xF00A, []operand{argReg, argK}},
		{0xF015, []operand{argDT, argReg}},
		{0xF018, []operand{argST, argReg}},
		{0xF029, []operand{argF, argReg}},
		{0xF033, []operand{argB, argReg}},
		{0xF055, []operand{argIndI, argReg}},
		{0xF065, []operand{argReg, argIndI}},
	},
	"ADD": {
		{0x7000, []operand{argReg, argByte}},
		{0x8004, []operand{argReg, argRegY}},
		{0xF01E, []operand{argI, argReg}},
	},
	"OR":   {{0x8001, []operand{argReg, argRegY}}},
	"AND":  {{0x8002, []operand{argReg, argRegY}}},
	"XOR":  {{0x8003, []operand{argReg, argRegY}}},
	"SUB":  {{0x8005, []operand{argReg, argRegY}}},
	"SHR":  {{0x8006, []operand{argReg}}, {0x8006, []operand{argReg, argRegY}}},
	"SUBN": {{0x8007, []operand{argReg, argRegY}}},
	"SHL":  {{0x800E, []operand{argReg}}, {0x800E, []operand{argReg, argRegY}}},
	"RND":  {{0xC000, []operand{argReg, argByte}}},
	"DRW":  {{0xD000, []operand{argReg, argRegY, argNibble}}},
	"SKP":  {{0xE09E, []operand{argReg}}},
	"SKNP": {{0xE0A1, []operand{argReg}}},
}

// keywords are operand tokens that are never labels.
var keywords = map[string]operand{
	"I":   argI,
	"[I]": argIndI,
	"DT":  argDT,
	"ST":  argST,
	"K":   argK,
	"F":   argF,
	"B":   argB,
}

type Assembler struct {
	labels map[string]uint16
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]uint16),
	}
}

// Assemble translates source into a program image meant to be loaded at
// 0x200. The returned map gives the source line for each emitted address.
func Assemble(code string) ([]byte, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]byte, map[uint16]int, error) {
	a.labels = make(map[string]uint16)
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

// Labels returns the addresses resolved by the last Assemble, keyed by the
// upper-cased label name.
func (a *Assembler) Labels() map[string]uint16 {
	out := make(map[string]uint16, len(a.labels))
	for k, v := range a.labels {
		out[k] = v
	}
	return out
}

func (a *Assembler) pass1(lines []string) error {
	address := uint32(cpu.ProgramStart)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		for _, lbl := range p.labels {
			key := normalizeLabel(lbl)
			if isReserved(key) {
				return fmt.Errorf("label '%s' on line %d is a reserved word", lbl, lineNo)
			}
			if _, exists := a.labels[key]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			a.labels[key] = uint16(address)
		}

		if p.mnemonic == "" {
			continue
		}

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p, address)
			if err != nil {
				return err
			}
			address = target
			continue
		}

		length, err := lineLength(p)
		if err != nil {
			return err
		}
		if address+length > cpu.MemorySize {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address += length
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]byte, map[uint16]int, error) {
	program := make([]byte, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.mnemonic == "" {
			continue
		}

		address := uint32(cpu.ProgramStart + len(program))
		ops := p.operands

		if p.mnemonic == ".ORG" {
			target, err := parseOrigin(p, address)
			if err != nil {
				return nil, nil, err
			}
			program = append(program, make([]byte, target-address)...)
			continue
		}

		sourceMap[uint16(address)] = lineNo

		switch p.mnemonic {
		case ".BYTE":
			for _, op := range ops {
				val, err := a.parseImmediate(op, 0xFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val))
			}
			continue
		case ".WORD":
			for _, op := range ops {
				val, err := a.parseImmediate(op, 0xFFFF, lineNo)
				if err != nil {
					return nil, nil, err
				}
				program = append(program, byte(val>>8), byte(val))
			}
			continue
		}

		word, err := a.encode(p)
		if err != nil {
			return nil, nil, err
		}
		program = append(program, byte(word>>8), byte(word))
	}

	return program, sourceMap, nil
}

// encode picks the first form of the mnemonic whose operand shape matches
// and packs the operands into it.
func (a *Assembler) encode(p parsedLine) (uint16, error) {
	candidates, ok := forms[p.mnemonic]
	if !ok {
		return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}

	for _, f := range candidates {
		if !shapeMatches(f.args, p.operands) {
			continue
		}
		word := f.base
		for i, arg := range f.args {
			tok := p.operands[i]
			switch arg {
			case argReg:
				r, _ := parseRegister(tok)
				word |= uint16(r) << 8
			case argRegY:
				r, _ := parseRegister(tok)
				word |= uint16(r) << 4
			case argByte:
				v, err := a.parseImmediate(tok, 0xFF, p.lineNo)
				if err != nil {
					return 0, err
				}
				word |= v
			case argAddr:
				v, err := a.parseImmediate(tok, 0xFFF, p.lineNo)
				if err != nil {
					return 0, err
				}
				word |= v
			case argNibble:
				v, err := a.parseImmediate(tok, 0xF, p.lineNo)
				if err != nil {
					return 0, err
				}
				word |= v
			}
		}
		return word, nil
	}

	return 0, fmt.Errorf("invalid operands for %s on line %d: %s", p.mnemonic, p.lineNo, strings.Join(p.operands, ", "))
}

func shapeMatches(args []operand, tokens []string) bool {
	if len(args) != len(tokens) {
		return false
	}
	for i, arg := range args {
		tok := strings.ToUpper(tokens[i])
		r, isReg := parseRegister(tok)
		kw, isKeyword := keywords[tok]
		switch arg {
		case argReg, argRegY:
			if !isReg {
				return false
			}
		case argV0:
			if !isReg || r != 0 {
				return false
			}
		case argByte, argAddr, argNibble:
			if isReg || isKeyword {
				return false
			}
		default:
			if !isKeyword || kw != arg {
				return false
			}
		}
	}
	return true
}

func lineLength(p parsedLine) (uint32, error) {
	switch p.mnemonic {
	case ".BYTE":
		if len(p.operands) == 0 {
			return 0, fmt.Errorf(".BYTE expects at least one operand on line %d", p.lineNo)
		}
		return uint32(len(p.operands)), nil
	case ".WORD":
		if len(p.operands) == 0 {
			return 0, fmt.Errorf(".WORD expects at least one operand on line %d", p.lineNo)
		}
		return uint32(2 * len(p.operands)), nil
	}
	length, ok := instructionLength(p.mnemonic)
	if !ok {
		return 0, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}
	return uint32(length), nil
}

// parseOrigin validates a .ORG line. Origins are absolute addresses and
// may only move forward.
func parseOrigin(p parsedLine, address uint32) (uint32, error) {
	target, err := strconv.ParseUint(p.operands[0], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid .ORG value on line %d: %s", p.lineNo, p.operands[0])
	}
	if target < cpu.ProgramStart || target > cpu.MemorySize {
		return 0, fmt.Errorf(".ORG out of range on line %d: %s", p.lineNo, p.operands[0])
	}
	if uint32(target) < address {
		return 0, fmt.Errorf("cannot move origin backward on line %d", p.lineNo)
	}
	return uint32(target), nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}

		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	line = normalizeInstructionText(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	if p.mnemonic == ".ORG" && len(p.operands) != 1 {
		return p, fmt.Errorf(".ORG expects exactly one operand on line %d", lineNo)
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

// normalizeInstructionText turns commas into spaces and collapses "[ I ]"
// into the single token "[I]".
func normalizeInstructionText(line string) string {
	replacer := strings.NewReplacer(",", " ", "[", " [", "]", "] ")
	line = replacer.Replace(line)
	fields := strings.Fields(line)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		if fields[i] == "[" && i+2 < len(fields) && fields[i+2] == "]" {
			out = append(out, "["+fields[i+1]+"]")
			i += 2
			continue
		}
		out = append(out, fields[i])
	}
	return strings.Join(out, " ")
}

// parseRegister accepts V0..VF in either case.
func parseRegister(token string) (uint8, bool) {
	if len(token) != 2 || (token[0] != 'V' && token[0] != 'v') {
		return 0, false
	}
	v, err := strconv.ParseUint(token[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func (a *Assembler) parseImmediate(token string, limit uint16, lineNo int) (uint16, error) {
	if value, err := strconv.ParseUint(token, 0, 32); err == nil {
		if value > uint64(limit) {
			return 0, fmt.Errorf("immediate out of range on line %d: %s (max 0x%X)", lineNo, token, limit)
		}
		return uint16(value), nil
	}

	label := normalizeLabel(token)
	if addr, ok := a.labels[label]; ok {
		if addr > limit {
			return 0, fmt.Errorf("label '%s' (0x%03X) out of range on line %d", token, addr, lineNo)
		}
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

// instructionLength returns the byte length of an instruction. Every
// CHIP-8 instruction is one 2-byte word.
func instructionLength(mnemonic string) (uint16, bool) {
	if _, ok := forms[strings.ToUpper(mnemonic)]; ok {
		return 2, true
	}
	return 0, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

// isReserved reports whether an upper-cased name would read as an operand
// keyword or a register.
func isReserved(name string) bool {
	if _, ok := keywords[name]; ok {
		return true
	}
	_, ok := parseRegister(name)
	return ok
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}

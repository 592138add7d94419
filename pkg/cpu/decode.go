package cpu

// Kind identifies the operation an instruction word resolves to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSYS          // 0NNN
	KindCLS          // 00E0
	KindRET          // 00EE
	KindJP           // 1NNN
	KindCALL         // 2NNN
	KindSEImm        // 3XNN
	KindSNEImm       // 4XNN
	KindSEReg        // 5XY0
	KindLDImm        // 6XNN
	KindADDImm       // 7XNN
	KindLDReg        // 8XY0
	KindOR           // 8XY1
	KindAND          // 8XY2
	KindXOR          // 8XY3
	KindADDReg       // 8XY4
	KindSUB          // 8XY5
	KindSHR          // 8XY6
	KindSUBN         // 8XY7
	KindSHL          // 8XYE
	KindSNEReg       // 9XY0
	KindLDI          // ANNN
	KindJPV0         // BNNN
	KindRND          // CXNN
	KindDRW          // DXYN
	KindSKP          // EX9E
	KindSKNP         // EXA1
	KindLDVxDT       // FX07
	KindLDVxK        // FX0A
	KindLDDTVx       // FX15
	KindLDSTVx       // FX18
	KindADDI         // FX1E
	KindLDF          // FX29
	KindLDB          // FX33
	KindLDIVx        // FX55
	KindLDVxI        // FX65

	numKinds
)

var kindNames = [numKinds]string{
	KindUnknown: "???",
	KindSYS:     "SYS",
	KindCLS:     "CLS",
	KindRET:     "RET",
	KindJP:      "JP",
	KindCALL:    "CALL",
	KindSEImm:   "SE",
	KindSNEImm:  "SNE",
	KindSEReg:   "SE",
	KindLDImm:   "LD",
	KindADDImm:  "ADD",
	KindLDReg:   "LD",
	KindOR:      "OR",
	KindAND:     "AND",
	KindXOR:     "XOR",
	KindADDReg:  "ADD",
	KindSUB:     "SUB",
	KindSHR:     "SHR",
	KindSUBN:    "SUBN",
	KindSHL:     "SHL",
	KindSNEReg:  "SNE",
	KindLDI:     "LD",
	KindJPV0:    "JP",
	KindRND:     "RND",
	KindDRW:     "DRW",
	KindSKP:     "SKP",
	KindSKNP:    "SKNP",
	KindLDVxDT:  "LD",
	KindLDVxK:   "LD",
	KindLDDTVx:  "LD",
	KindLDSTVx:  "LD",
	KindADDI:    "ADD",
	KindLDF:     "LD",
	KindLDB:     "LD",
	KindLDIVx:   "LD",
	KindLDVxI:   "LD",
}

// String returns the mnemonic of k.
func (k Kind) String() string {
	if k >= numKinds {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Word uint16
	Kind Kind

	Op  uint8  // bits 12-15
	X   uint8  // bits 8-11
	Y   uint8  // bits 4-7
	N   uint8  // bits 0-3
	NN  uint8  // bits 0-7
	NNN uint16 // bits 0-11
}

// Decode splits word into its operand fields and resolves its Kind. Every
// word decodes; unassigned patterns get KindUnknown.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		Op:   uint8(word >> 12),
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}
	in.Kind = resolveKind(in)
	return in
}

func resolveKind(in Instruction) Kind {
	switch in.Op {
	case 0x0:
		switch in.Word {
		case 0x00E0:
			return KindCLS
		case 0x00EE:
			return KindRET
		}
		return KindSYS
	case 0x1:
		return KindJP
	case 0x2:
		return KindCALL
	case 0x3:
		return KindSEImm
	case 0x4:
		return KindSNEImm
	case 0x5:
		if in.N == 0 {
			return KindSEReg
		}
	case 0x6:
		return KindLDImm
	case 0x7:
		return KindADDImm
	case 0x8:
		switch in.N {
		case 0x0:
			return KindLDReg
		case 0x1:
			return KindOR
		case 0x2:
			return KindAND
		case 0x3:
			return KindXOR
		case 0x4:
			return KindADDReg
		case 0x5:
			return KindSUB
		case 0x6:
			return KindSHR
		case 0x7:
			return KindSUBN
		case 0xE:
			return KindSHL
		}
	case 0x9:
		if in.N == 0 {
			return KindSNEReg
		}
	case 0xA:
		return KindLDI
	case 0xB:
		return KindJPV0
	case 0xC:
		return KindRND
	case 0xD:
		return KindDRW
	case 0xE:
		switch in.NN {
		case 0x9E:
			return KindSKP
		case 0xA1:
			return KindSKNP
		}
	case 0xF:
		switch in.NN {
		case 0x07:
			return KindLDVxDT
		case 0x0A:
			return KindLDVxK
		case 0x15:
			return KindLDDTVx
		case 0x18:
			return KindLDSTVx
		case 0x1E:
			return KindADDI
		case 0x29:
			return KindLDF
		case 0x33:
			return KindLDB
		case 0x55:
			return KindLDIVx
		case 0x65:
			return KindLDVxI
		}
	}
	return KindUnknown
}

package cpu

import (
	"errors"
	"testing"
)

// romFromWords encodes instruction words big-endian, as they sit in a ROM.
func romFromWords(words ...uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte(w >> 8)
		out[i*2+1] = byte(w & 0xFF)
	}
	return out
}

// newTestCPU loads words at ProgramStart with a fixed random seed.
func newTestCPU(t *testing.T, words ...uint16) *CPU {
	t.Helper()
	c, err := New(romFromWords(words...), WithSeed(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// mustStep executes n instructions and fails the test on any fault.
func mustStep(t *testing.T, c *CPU, n int) Effect {
	t.Helper()
	var fx Effect
	for i := 0; i < n; i++ {
		var err error
		fx, err = c.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	return fx
}

func TestNewInitialState(t *testing.T) {
	c := newTestCPU(t, 0x00E0)

	if c.PC != ProgramStart {
		t.Errorf("PC: expected 0x%03X, got 0x%03X", ProgramStart, c.PC)
	}
	if c.Memory[ProgramStart] != 0x00 || c.Memory[ProgramStart+1] != 0xE0 {
		t.Errorf("ROM not placed at 0x200: got %02X %02X", c.Memory[ProgramStart], c.Memory[ProgramStart+1])
	}
	for i, b := range fontSet {
		if c.Memory[FontStart+i] != b {
			t.Fatalf("font byte %d: expected 0x%02X, got 0x%02X", i, b, c.Memory[FontStart+i])
		}
	}
	if c.Memory[0] != 0 || c.Memory[MemorySize-1] != 0 {
		t.Errorf("memory outside font and ROM should be zero")
	}
}

func TestNewRejectsOversizeROM(t *testing.T) {
	if _, err := New(make([]byte, MaxROMSize)); err != nil {
		t.Fatalf("ROM of exactly %d bytes should load: %v", MaxROMSize, err)
	}
	_, err := New(make([]byte, MaxROMSize+1))
	if !errors.Is(err, ErrROMTooLarge) {
		t.Errorf("expected ErrROMTooLarge, got %v", err)
	}
}

func TestAddImmediateScenario(t *testing.T) {
	c, err := New([]byte{0x60, 0x05, 0x70, 0x03})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mustStep(t, c, 2)

	if c.V[0] != 8 {
		t.Errorf("V0: expected 8, got %d", c.V[0])
	}
	if c.PC != 0x204 {
		t.Errorf("PC: expected 0x204, got 0x%03X", c.PC)
	}
	if c.Steps != 2 {
		t.Errorf("Steps: expected 2, got %d", c.Steps)
	}
}

func TestClearScreen(t *testing.T) {
	c := newTestCPU(t, 0x00E0)
	for x := 0; x < 64; x++ {
		c.Screen.SetPixel(x, x%32, true)
	}

	fx := mustStep(t, c, 1)

	snap := c.Snapshot()
	if snap.Lit() != 0 {
		t.Errorf("00E0: expected empty screen, %d cells lit", snap.Lit())
	}
	if !fx.Cleared || !fx.Changed() {
		t.Errorf("00E0: expected Cleared effect")
	}
	if c.PC != 0x202 {
		t.Errorf("00E0: expected PC 0x202, got 0x%03X", c.PC)
	}
}

func TestJumps(t *testing.T) {
	c := newTestCPU(t, 0x1345)
	mustStep(t, c, 1)
	if c.PC != 0x345 {
		t.Errorf("1NNN: expected PC 0x345, got 0x%03X", c.PC)
	}

	c = newTestCPU(t, 0x6010, 0xB300)
	mustStep(t, c, 2)
	if c.PC != 0x310 {
		t.Errorf("BNNN: expected PC 0x310, got 0x%03X", c.PC)
	}
}

func TestCallAndReturn(t *testing.T) {
	// 0x200: CALL 0x206
	// 0x202: LD V1, 0x22
	// 0x204: JP 0x204
	// 0x206: LD V0, 0x11
	// 0x208: RET
	c := newTestCPU(t, 0x2206, 0x6122, 0x1204, 0x6011, 0x00EE)

	mustStep(t, c, 1)
	if c.PC != 0x206 || c.SP != 1 || c.Stack[0] != 0x202 {
		t.Fatalf("CALL: PC=0x%03X SP=%d Stack[0]=0x%03X", c.PC, c.SP, c.Stack[0])
	}
	mustStep(t, c, 2)
	if c.PC != 0x202 || c.SP != 0 {
		t.Fatalf("RET: PC=0x%03X SP=%d", c.PC, c.SP)
	}
	mustStep(t, c, 1)
	if c.V[0] != 0x11 || c.V[1] != 0x22 {
		t.Errorf("V0/V1: expected 0x11/0x22, got 0x%02X/0x%02X", c.V[0], c.V[1])
	}
}

func TestNestedCallsRestorePC(t *testing.T) {
	// Frame k sits at 0x300+4k as CALL <frame k+1>; RET. The innermost
	// frame is a bare RET, so sixteen calls unwind back to 0x202.
	c := newTestCPU(t, 0x2300, 0x1202)
	for k := 0; k < StackDepth-1; k++ {
		addr := 0x300 + k*4
		call := uint16(0x2000 | (addr + 4))
		c.Memory[addr] = byte(call >> 8)
		c.Memory[addr+1] = byte(call)
		c.Memory[addr+2] = 0x00
		c.Memory[addr+3] = 0xEE
	}
	innermost := 0x300 + (StackDepth-1)*4
	c.Memory[innermost] = 0x00
	c.Memory[innermost+1] = 0xEE

	mustStep(t, c, StackDepth)
	if c.SP != StackDepth {
		t.Fatalf("expected SP %d after %d calls, got %d", StackDepth, StackDepth, c.SP)
	}
	if c.PC != uint16(innermost) {
		t.Fatalf("expected PC 0x%03X, got 0x%03X", innermost, c.PC)
	}

	mustStep(t, c, StackDepth)
	if c.SP != 0 {
		t.Errorf("expected empty stack after unwinding, SP=%d", c.SP)
	}
	if c.PC != 0x202 {
		t.Errorf("expected PC 0x202 after unwinding, got 0x%03X", c.PC)
	}
}

func TestStackOverflowIsFatal(t *testing.T) {
	// CALL 0x200 forever: every step pushes.
	c := newTestCPU(t, 0x2200)
	mustStep(t, c, StackDepth)

	before := c.Registers
	_, err := c.Step()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("17th call: expected ErrStackOverflow, got %v", err)
	}
	var fault *Fault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *Fault, got %T", err)
	}
	if fault.PC != 0x200 || fault.Word != 0x2200 {
		t.Errorf("fault: expected PC 0x200 word 2200, got PC 0x%03X word %04X", fault.PC, fault.Word)
	}
	if c.Registers != before {
		t.Errorf("registers changed by a faulting instruction")
	}
}

func TestStackUnderflowIsFatal(t *testing.T) {
	c := newTestCPU(t, 0x00EE)
	_, err := c.Step()
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("RET on empty stack: expected ErrStackUnderflow, got %v", err)
	}
	if c.PC != 0x200 {
		t.Errorf("PC should stay on the faulting instruction, got 0x%03X", c.PC)
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(c *CPU)
		word   uint16
		wantPC uint16
	}{
		{"SE imm taken", func(c *CPU) { c.V[3] = 0x42 }, 0x3342, 0x204},
		{"SE imm not taken", func(c *CPU) { c.V[3] = 0x41 }, 0x3342, 0x202},
		{"SNE imm taken", func(c *CPU) { c.V[3] = 0x41 }, 0x4342, 0x204},
		{"SNE imm not taken", func(c *CPU) { c.V[3] = 0x42 }, 0x4342, 0x202},
		{"SE reg taken", func(c *CPU) { c.V[1], c.V[2] = 7, 7 }, 0x5120, 0x204},
		{"SE reg not taken", func(c *CPU) { c.V[1], c.V[2] = 7, 8 }, 0x5120, 0x202},
		{"SNE reg taken", func(c *CPU) { c.V[1], c.V[2] = 7, 8 }, 0x9120, 0x204},
		{"SNE reg not taken", func(c *CPU) { c.V[1], c.V[2] = 7, 7 }, 0x9120, 0x202},
		{"SKP taken", func(c *CPU) { c.V[4] = 0xA; c.Keys[0xA] = true }, 0xE49E, 0x204},
		{"SKP not taken", func(c *CPU) { c.V[4] = 0xA }, 0xE49E, 0x202},
		{"SKP uses low nibble", func(c *CPU) { c.V[4] = 0x1A; c.Keys[0xA] = true }, 0xE49E, 0x204},
		{"SKNP taken", func(c *CPU) { c.V[4] = 0xA }, 0xE4A1, 0x204},
		{"SKNP not taken", func(c *CPU) { c.V[4] = 0xA; c.Keys[0xA] = true }, 0xE4A1, 0x202},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCPU(t, tc.word)
			tc.setup(c)
			mustStep(t, c, 1)
			if c.PC != tc.wantPC {
				t.Errorf("expected PC 0x%03X, got 0x%03X", tc.wantPC, c.PC)
			}
		})
	}
}

func TestRegisterOps(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy byte
		word   uint16 // X=1, Y=2
		wantVX byte
		wantVF byte
		flag   bool // whether VF is defined by the op
	}{
		{"LD imm", 0, 0, 0x61AB, 0xAB, 0, false},
		{"ADD imm wraps", 0xFF, 0, 0x7102, 0x01, 0, false},
		{"LD reg", 1, 9, 0x8120, 9, 0, false},
		{"OR", 0xF0, 0x0F, 0x8121, 0xFF, 0, false},
		{"AND", 0xF0, 0x3C, 0x8122, 0x30, 0, false},
		{"XOR", 0xFF, 0x0F, 0x8123, 0xF0, 0, false},
		{"ADD no carry", 10, 20, 0x8124, 30, 0, true},
		{"ADD carry", 200, 100, 0x8124, 44, 1, true},
		{"ADD exactly 256", 128, 128, 0x8124, 0, 1, true},
		{"SUB no borrow", 20, 5, 0x8125, 15, 1, true},
		{"SUB equal", 5, 5, 0x8125, 0, 1, true},
		{"SUB borrow", 5, 20, 0x8125, 241, 0, true},
		{"SHR odd", 0x05, 0, 0x8126, 0x02, 1, true},
		{"SHR even", 0x04, 0, 0x8126, 0x02, 0, true},
		{"SUBN no borrow", 5, 20, 0x8127, 15, 1, true},
		{"SUBN borrow", 20, 5, 0x8127, 241, 0, true},
		{"SHL high bit", 0x81, 0, 0x812E, 0x02, 1, true},
		{"SHL no high bit", 0x41, 0, 0x812E, 0x82, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestCPU(t, tc.word)
			c.V[1], c.V[2] = tc.vx, tc.vy
			c.V[RegF] = 0x77
			mustStep(t, c, 1)

			if c.V[1] != tc.wantVX {
				t.Errorf("VX: expected 0x%02X, got 0x%02X", tc.wantVX, c.V[1])
			}
			if tc.flag && c.V[RegF] != tc.wantVF {
				t.Errorf("VF: expected %d, got %d", tc.wantVF, c.V[RegF])
			}
			if !tc.flag && c.V[RegF] != 0x77 {
				t.Errorf("VF: expected untouched 0x77, got 0x%02X", c.V[RegF])
			}
			if c.PC != 0x202 {
				t.Errorf("PC: expected 0x202, got 0x%03X", c.PC)
			}
		})
	}
}

func TestAddRegisterProperty(t *testing.T) {
	for vx := 0; vx < 256; vx += 7 {
		for vy := 0; vy < 256; vy += 5 {
			c := newTestCPU(t, 0x8344)
			c.V[3], c.V[4] = byte(vx), byte(vy)
			mustStep(t, c, 1)

			if c.V[3] != byte((vx+vy)%256) {
				t.Fatalf("8XY4 %d+%d: expected VX %d, got %d", vx, vy, (vx+vy)%256, c.V[3])
			}
			want := byte(0)
			if vx+vy >= 256 {
				want = 1
			}
			if c.V[RegF] != want {
				t.Fatalf("8XY4 %d+%d: expected VF %d, got %d", vx, vy, want, c.V[RegF])
			}
		}
	}
}

func TestSubRegisterProperty(t *testing.T) {
	for vx := 0; vx < 256; vx += 3 {
		for vy := 0; vy < 256; vy += 11 {
			c := newTestCPU(t, 0x8345)
			c.V[3], c.V[4] = byte(vx), byte(vy)
			mustStep(t, c, 1)

			want := byte(0)
			if vx >= vy {
				want = 1
			}
			if c.V[RegF] != want {
				t.Fatalf("8XY5 %d-%d: expected VF %d, got %d", vx, vy, want, c.V[RegF])
			}
			if c.V[3] != byte(vx-vy) {
				t.Fatalf("8XY5 %d-%d: expected VX %d, got %d", vx, vy, byte(vx-vy), c.V[3])
			}
		}
	}
}

func TestFlagRegisterAsOperand(t *testing.T) {
	// 8FF4 with VF=0x80: sum is 0x100, the carry flag overwrites the sum.
	c := newTestCPU(t, 0x8FF4)
	c.V[RegF] = 0x80
	mustStep(t, c, 1)
	if c.V[RegF] != 1 {
		t.Errorf("8FF4: expected VF=1 (flag written last), got %d", c.V[RegF])
	}

	// 8F06 with VF=0x06: VF gets the shifted-out bit, then VX (VF) the result.
	c = newTestCPU(t, 0x8F06)
	c.V[RegF] = 0x06
	mustStep(t, c, 1)
	if c.V[RegF] != 0x03 {
		t.Errorf("8F06: expected VF=0x03 (result written last), got 0x%02X", c.V[RegF])
	}
}

func TestIndexOps(t *testing.T) {
	c := newTestCPU(t, 0xA123, 0x6505, 0xF51E, 0x650B, 0xF529)
	mustStep(t, c, 1)
	if c.I != 0x123 {
		t.Errorf("ANNN: expected I 0x123, got 0x%03X", c.I)
	}
	mustStep(t, c, 2)
	if c.I != 0x128 {
		t.Errorf("FX1E: expected I 0x128, got 0x%03X", c.I)
	}
	mustStep(t, c, 2)
	if c.I != FontStart+0xB*FontGlyphSize {
		t.Errorf("FX29: expected I 0x%03X, got 0x%03X", FontStart+0xB*FontGlyphSize, c.I)
	}
}

func TestRandomIsMasked(t *testing.T) {
	c := newTestCPU(t, 0xC10F, 0xC100)
	mustStep(t, c, 1)
	if c.V[1]&0xF0 != 0 {
		t.Errorf("CXNN: expected high nibble masked off, got 0x%02X", c.V[1])
	}
	mustStep(t, c, 1)
	if c.V[1] != 0 {
		t.Errorf("CX00: expected 0, got 0x%02X", c.V[1])
	}

	a := newTestCPU(t, 0xC1FF)
	b := newTestCPU(t, 0xC1FF)
	mustStep(t, a, 1)
	mustStep(t, b, 1)
	if a.V[1] != b.V[1] {
		t.Errorf("same seed should give the same byte: 0x%02X vs 0x%02X", a.V[1], b.V[1])
	}
}

func TestDrawSprite(t *testing.T) {
	// LD I, 0x300; DRW V0, V1, 1; DRW V0, V1, 1
	c := newTestCPU(t, 0xA300, 0xD011, 0xD011)
	c.Memory[0x300] = 0xFF

	mustStep(t, c, 1)
	fx := mustStep(t, c, 1)
	snap := c.Snapshot()
	for x := 0; x < 8; x++ {
		if !snap.At(x, 0) {
			t.Errorf("first draw: expected (%d,0) lit", x)
		}
	}
	if snap.Lit() != 8 {
		t.Errorf("first draw: expected 8 lit cells, got %d", snap.Lit())
	}
	if c.V[RegF] != 0 || fx.Collision {
		t.Errorf("first draw: expected no collision, VF=%d", c.V[RegF])
	}
	if len(fx.Toggled) != 8 {
		t.Errorf("first draw: expected 8 toggled cells, got %d", len(fx.Toggled))
	}

	fx = mustStep(t, c, 1)
	snap = c.Snapshot()
	if snap.Lit() != 0 {
		t.Errorf("second draw: expected cleared cells, %d lit", snap.Lit())
	}
	if c.V[RegF] != 1 || !fx.Collision {
		t.Errorf("second draw: expected collision, VF=%d", c.V[RegF])
	}
}

func TestDrawSpriteWraps(t *testing.T) {
	// V0=62, V1=31, two rows of 0xC0 → cells (62,31) (63,31) (62,0) (63,0)
	c := newTestCPU(t, 0x603E, 0x611F, 0xA300, 0xD012)
	c.Memory[0x300] = 0xC0
	c.Memory[0x301] = 0xC0
	fx := mustStep(t, c, 4)

	snap := c.Snapshot()
	for _, p := range []Point{{62, 31}, {63, 31}, {62, 0}, {63, 0}} {
		if !snap.At(p.X, p.Y) {
			t.Errorf("expected (%d,%d) lit", p.X, p.Y)
		}
	}
	if snap.Lit() != 4 {
		t.Errorf("expected 4 lit cells, got %d", snap.Lit())
	}
	for _, p := range fx.Toggled {
		if p.X >= 64 || p.Y >= 32 {
			t.Errorf("toggled point out of screen: %+v", p)
		}
	}
}

func TestDrawOutOfRangeFaults(t *testing.T) {
	c := newTestCPU(t, 0xAFFE, 0xD003)
	mustStep(t, c, 1)
	_, err := c.Step()
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("DRW past 0xFFF: expected ErrInvalidAddress, got %v", err)
	}
	snap := c.Snapshot()
	if snap.Lit() != 0 {
		t.Errorf("faulting draw must not touch the screen")
	}
}

func TestTimerOps(t *testing.T) {
	c := newTestCPU(t, 0x6A3C, 0xFA15, 0xFA18, 0xFB07)
	mustStep(t, c, 3)
	if c.Delay != 0x3C || c.Sound != 0x3C {
		t.Fatalf("FX15/FX18: expected 0x3C, got delay=0x%02X sound=0x%02X", c.Delay, c.Sound)
	}
	c.TickTimers()
	mustStep(t, c, 1)
	if c.V[0xB] != 0x3B {
		t.Errorf("FX07: expected 0x3B, got 0x%02X", c.V[0xB])
	}
}

func TestTickTimersStopsAtZero(t *testing.T) {
	c := newTestCPU(t)
	c.Delay, c.Sound = 2, 1
	for i := 0; i < 5; i++ {
		c.TickTimers()
	}
	if c.Delay != 0 || c.Sound != 0 {
		t.Errorf("timers: expected 0/0, got %d/%d", c.Delay, c.Sound)
	}
}

func TestWaitForKey(t *testing.T) {
	c := newTestCPU(t, 0xF30A)
	mustStep(t, c, 3)
	if c.PC != 0x200 {
		t.Fatalf("FX0A without key: expected PC to stay 0x200, got 0x%03X", c.PC)
	}

	var keys [NumKeys]bool
	keys[0x9] = true
	keys[0xC] = true
	c.SetKeys(keys)
	mustStep(t, c, 1)
	if c.V[3] != 0x9 {
		t.Errorf("FX0A: expected lowest pressed key 9, got %d", c.V[3])
	}
	if c.PC != 0x202 {
		t.Errorf("FX0A: expected PC 0x202, got 0x%03X", c.PC)
	}
}

func TestBCD(t *testing.T) {
	c := newTestCPU(t, 0x62FE, 0xA400, 0xF233)
	mustStep(t, c, 3)
	got := c.Memory[0x400:0x403]
	if got[0] != 2 || got[1] != 5 || got[2] != 4 {
		t.Errorf("FX33 of 254: expected [2 5 4], got %v", got)
	}
}

func TestRegisterDumpAndFill(t *testing.T) {
	c := newTestCPU(t, 0xA400, 0xF355, 0xA500, 0xF265)
	for i := range c.V {
		c.V[i] = byte(0x10 + i)
	}
	copy(c.Memory[0x500:], []byte{0xAA, 0xBB, 0xCC, 0xDD})

	mustStep(t, c, 2)
	for i := 0; i <= 3; i++ {
		if c.Memory[0x400+i] != byte(0x10+i) {
			t.Errorf("FX55: mem[0x%03X] expected 0x%02X, got 0x%02X", 0x400+i, 0x10+i, c.Memory[0x400+i])
		}
	}
	if c.Memory[0x404] != 0 {
		t.Errorf("FX55 wrote past VX")
	}

	mustStep(t, c, 2)
	if c.V[0] != 0xAA || c.V[1] != 0xBB || c.V[2] != 0xCC {
		t.Errorf("FX65: expected AA BB CC, got %02X %02X %02X", c.V[0], c.V[1], c.V[2])
	}
	if c.V[3] != 0x13 {
		t.Errorf("FX65 read past VX: V3=0x%02X", c.V[3])
	}
	if c.I != 0x500 {
		t.Errorf("FX65 should leave I unchanged, got 0x%03X", c.I)
	}
}

func TestRegisterDumpOutOfRange(t *testing.T) {
	c := newTestCPU(t, 0xAFFE, 0xF555)
	mustStep(t, c, 1)
	_, err := c.Step()
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("FX55 past 0xFFF: expected ErrInvalidAddress, got %v", err)
	}
	if c.Memory[0xFFE] != 0 || c.Memory[0xFFF] != 0 {
		t.Errorf("faulting FX55 must not write partially")
	}
}

func TestUnknownOpcode(t *testing.T) {
	for _, word := range []uint16{0x5121, 0x8128, 0x912F, 0xE100, 0xF1FF} {
		c := newTestCPU(t, word)
		_, err := c.Step()
		if !errors.Is(err, ErrUnknownOpcode) {
			t.Errorf("%04X: expected ErrUnknownOpcode, got %v", word, err)
		}
		if c.PC != 0x200 {
			t.Errorf("%04X: PC should stay on the faulting instruction, got 0x%03X", word, c.PC)
		}
	}
}

func TestFetchPastEndOfMemory(t *testing.T) {
	c := newTestCPU(t, 0x1FFE)
	mustStep(t, c, 1)
	// 0xFFE holds a SYS no-op; the next fetch would start at 0x1000.
	mustStep(t, c, 1)
	_, err := c.Step()
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("fetch at 0x1000: expected ErrInvalidAddress, got %v", err)
	}
}

func TestResetReloads(t *testing.T) {
	c := newTestCPU(t, 0x6005, 0xA300, 0xF055, 0xD001)
	mustStep(t, c, 3)
	c.Memory[0x200] = 0xFF
	c.Delay = 9

	c.Reset()
	if c.PC != ProgramStart || c.V[0] != 0 || c.I != 0 || c.Delay != 0 || c.Steps != 0 {
		t.Errorf("Reset: registers not cleared: PC=0x%03X V0=%d I=0x%03X delay=%d", c.PC, c.V[0], c.I, c.Delay)
	}
	if c.Memory[0x200] != 0x60 || c.Memory[0x300] != 0 {
		t.Errorf("Reset: memory not reloaded")
	}
	snap := c.Snapshot()
	if snap.Lit() != 0 {
		t.Errorf("Reset: screen not cleared")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newTestCPU(t, 0x6001)
	b := newTestCPU(t, 0x6002)
	mustStep(t, a, 1)
	mustStep(t, b, 1)
	if a.V[0] != 1 || b.V[0] != 2 {
		t.Errorf("expected V0 1 and 2, got %d and %d", a.V[0], b.V[0])
	}
}

func TestRun(t *testing.T) {
	c := newTestCPU(t, 0x7001, 0x1200)
	n, err := c.Run(10)
	if err != nil || n != 10 {
		t.Fatalf("Run: n=%d err=%v", n, err)
	}
	if c.V[0] != 5 {
		t.Errorf("V0: expected 5, got %d", c.V[0])
	}

	c = newTestCPU(t, 0x6001, 0x00EE)
	n, err = c.Run(10)
	if !errors.Is(err, ErrStackUnderflow) || n != 1 {
		t.Errorf("Run: expected underflow after 1 step, got n=%d err=%v", n, err)
	}
}

func TestPeekDoesNotExecute(t *testing.T) {
	c := newTestCPU(t, 0x6042)
	in, err := c.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if in.Kind != KindLDImm || c.V[0] != 0 || c.PC != 0x200 {
		t.Errorf("Peek: kind=%v V0=%d PC=0x%03X", in.Kind, c.V[0], c.PC)
	}
}

package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gochip8/pkg/display"
)

// maxStateJSON bounds cpu_state.json, which is a few hundred bytes in practice.
const maxStateJSON = 64 << 10

// humanReadableState is the JSON-serializable snapshot of the register file.
type humanReadableState struct {
	V     [NumRegisters]byte `json:"v"`
	I     uint16             `json:"i"`
	PC    uint16             `json:"pc"`
	Stack [StackDepth]uint16 `json:"stack"`
	SP    uint8              `json:"sp"`
	Delay byte               `json:"delay"`
	Sound byte               `json:"sound"`
	Steps uint64             `json:"steps"`
}

// HibernateToBytes serialises the complete machine state into an in-memory
// ZIP archive and returns the raw bytes. Keypad state is not saved.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := humanReadableState{
		V:     c.V,
		I:     c.I,
		PC:    c.PC,
		Stack: c.Stack,
		SP:    c.SP,
		Delay: c.Delay,
		Sound: c.Sound,
		Steps: c.Steps,
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}

	if err := writeZipEntry(zw, "memory.bin", c.Memory[:]); err != nil {
		return nil, err
	}

	// one byte per cell, row-major
	frame := c.Snapshot()
	cells := make([]byte, len(frame))
	for i, on := range frame {
		cells[i] = boolByte(on)
	}
	if err := writeZipEntry(zw, "framebuffer.bin", cells); err != nil {
		return nil, err
	}

	if err := writeZipEntry(zw, "rom.bin", c.rom); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes deserialises a ZIP archive produced by HibernateToBytes and
// applies the saved state to the CPU. Nothing is modified unless every entry
// decodes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json", maxStateJSON)
	if err != nil {
		return err
	}
	if len(jsonData) > maxStateJSON {
		return fmt.Errorf("restore: cpu_state.json exceeds %d bytes", maxStateJSON)
	}
	var state humanReadableState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if int(state.SP) > StackDepth {
		return fmt.Errorf("restore: %w: stack pointer %d", ErrStackOverflow, state.SP)
	}

	memData, err := readZipEntry(fileMap, "memory.bin", MemorySize)
	if err != nil {
		return err
	}
	if len(memData) != MemorySize {
		return fmt.Errorf("restore: memory.bin is %d bytes, want %d", len(memData), MemorySize)
	}

	cells, err := readZipEntry(fileMap, "framebuffer.bin", display.Width*display.Height)
	if err != nil {
		return err
	}
	if len(cells) != display.Width*display.Height {
		return fmt.Errorf("restore: framebuffer.bin is %d bytes, want %d", len(cells), display.Width*display.Height)
	}

	rom, err := readZipEntry(fileMap, "rom.bin", MaxROMSize)
	if err != nil {
		return err
	}
	if len(rom) > MaxROMSize {
		return fmt.Errorf("restore: %w: %d bytes", ErrROMTooLarge, len(rom))
	}

	keys := c.Keys
	c.Registers = Registers{
		V:     state.V,
		I:     state.I,
		PC:    state.PC,
		Stack: state.Stack,
		SP:    state.SP,
		Delay: state.Delay,
		Sound: state.Sound,
		Keys:  keys,
	}
	c.Steps = state.Steps
	copy(c.Memory[:], memData)

	var frame display.Frame
	for i, b := range cells {
		frame[i] = b != 0
	}
	c.Screen.Restore(frame)
	c.rom = rom
	return nil
}

// HibernateToFile writes the hibernation archive to the given file path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a hibernation archive from the given file path and
// restores the machine state.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

// readZipEntry reads at most limit+1 bytes of the entry, so an oversized entry
// fails the caller's length check without being fully inflated.
func readZipEntry(fileMap map[string]*zip.File, name string, limit int) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, int64(limit)+1))
}

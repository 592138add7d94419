// Package config holds the emulator settings shared by the front-ends.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gochip8/pkg/cpu"
)

const (
	DefaultInstructionHz = 700
	DefaultTimerHz       = 60
	DefaultScale         = 10

	// MaxInstructionHz bounds CHIP8_HZ; anything faster is a typo.
	MaxInstructionHz = 100000
	MaxScale         = 40
)

// Environment variables read by FromEnv.
const (
	EnvHz    = "CHIP8_HZ"
	EnvScale = "CHIP8_SCALE"
	EnvFG    = "CHIP8_FG"
	EnvBG    = "CHIP8_BG"
	EnvKeys  = "CHIP8_KEYS"
)

// DefaultKeys maps hex keys 0-F onto the left block of a QWERTY keyboard:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var DefaultKeys = Keymap{'X', '1', '2', '3', 'Q', 'W', 'E', 'A', 'S', 'D', 'Z', 'C', '4', 'R', 'F', 'V'}

var ErrInvalid = errors.New("invalid configuration")

// Keymap holds the host key for each hex key, indexed by hex value.
type Keymap [cpu.NumKeys]rune

// Lookup returns the hex key bound to the host key r. Letters match either case.
func (k Keymap) Lookup(r rune) (byte, bool) {
	r = unicode.ToUpper(r)
	for hex, key := range k {
		if unicode.ToUpper(key) == r {
			return byte(hex), true
		}
	}
	return 0, false
}

type Config struct {
	InstructionHz int
	TimerHz       int
	Scale         int
	Foreground    color.RGBA
	Background    color.RGBA
	Keys          Keymap
}

func Default() Config {
	return Config{
		InstructionHz: DefaultInstructionHz,
		TimerHz:       DefaultTimerHz,
		Scale:         DefaultScale,
		Foreground:    color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Background:    color.RGBA{A: 0xFF},
		Keys:          DefaultKeys,
	}
}

// FromEnv returns Default overlaid with any CHIP8_* variables that are set.
func FromEnv() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv(EnvHz); ok {
		hz, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w: %v", EnvHz, ErrInvalid, err)
		}
		cfg.InstructionHz = hz
	}
	if v, ok := os.LookupEnv(EnvScale); ok {
		scale, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w: %v", EnvScale, ErrInvalid, err)
		}
		cfg.Scale = scale
	}
	if v, ok := os.LookupEnv(EnvFG); ok {
		c, err := ParseColor(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvFG, err)
		}
		cfg.Foreground = c
	}
	if v, ok := os.LookupEnv(EnvBG); ok {
		c, err := ParseColor(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvBG, err)
		}
		cfg.Background = c
	}
	if v, ok := os.LookupEnv(EnvKeys); ok {
		keys, err := ParseKeymap(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvKeys, err)
		}
		cfg.Keys = keys
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks rates and scale are in range and no host key is bound twice.
func (c Config) Validate() error {
	if c.InstructionHz <= 0 || c.InstructionHz > MaxInstructionHz {
		return fmt.Errorf("%w: instruction rate %d Hz outside 1..%d", ErrInvalid, c.InstructionHz, MaxInstructionHz)
	}
	if c.TimerHz <= 0 {
		return fmt.Errorf("%w: timer rate %d Hz", ErrInvalid, c.TimerHz)
	}
	if c.Scale < 1 || c.Scale > MaxScale {
		return fmt.Errorf("%w: scale %d outside 1..%d", ErrInvalid, c.Scale, MaxScale)
	}
	seen := make(map[rune]int, len(c.Keys))
	for hex, key := range c.Keys {
		key = unicode.ToUpper(key)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q bound to both %X and %X", ErrInvalid, key, prev, hex)
		}
		seen[key] = hex
	}
	return nil
}

// ParseColor accepts RRGGBB with an optional leading '#'.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: colour %q is not RRGGBB", ErrInvalid, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: colour %q: %v", ErrInvalid, s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// ParseKeymap reads sixteen host keys listed in hex-key order 0..F.
func ParseKeymap(s string) (Keymap, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) != cpu.NumKeys {
		return Keymap{}, fmt.Errorf("%w: keymap needs %d keys, got %d", ErrInvalid, cpu.NumKeys, len(runes))
	}
	var k Keymap
	for i, r := range runes {
		k[i] = unicode.ToUpper(r)
	}
	return k, nil
}

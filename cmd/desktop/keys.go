package main

import (
	"fmt"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
)

var letterKeys = [26]ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ,
}

var digitKeys = [10]ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
}

// keyForRune maps a keymap character to the physical ebiten key.
func keyForRune(r rune) (ebiten.Key, bool) {
	r = unicode.ToUpper(r)
	switch {
	case r >= 'A' && r <= 'Z':
		return letterKeys[r-'A'], true
	case r >= '0' && r <= '9':
		return digitKeys[r-'0'], true
	}
	return 0, false
}

// reservedKeys drive the emulator itself and cannot be bound to the keypad.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyP: true,
}

// keyTable resolves a keymap into ebiten keys indexed by hex key.
func keyTable(km config.Keymap) ([cpu.NumKeys]ebiten.Key, error) {
	var table [cpu.NumKeys]ebiten.Key
	for hex, r := range km {
		k, ok := keyForRune(r)
		if !ok {
			return table, fmt.Errorf("key %X: %q has no desktop key", hex, r)
		}
		if reservedKeys[k] {
			return table, fmt.Errorf("key %X: %q is reserved for pause", hex, r)
		}
		table[hex] = k
	}
	return table, nil
}

// pollKeys reads the keypad from ebiten's current input state.
func pollKeys(table [cpu.NumKeys]ebiten.Key) [cpu.NumKeys]bool {
	var keys [cpu.NumKeys]bool
	for hex, k := range table {
		keys[hex] = ebiten.IsKeyPressed(k)
	}
	return keys
}

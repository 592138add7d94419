// Package rom loads CHIP-8 program images from disk.
package rom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/cpu"
)

var (
	ErrEmpty    = errors.New("program image is empty")
	ErrTooLarge = errors.New("program image too large")
)

// GetPathInfo resolves relPath to an absolute path and the directory that
// contains it.
func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}
	parentDir = filepath.Dir(fullPath)
	return fullPath, parentDir, nil
}

// Load reads the image at path. It fails on a missing or unreadable file,
// an empty image and an image that does not fit above 0x200.
func Load(path string) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("load rom %s: %w", fullPath, ErrEmpty)
	}
	if len(data) > cpu.MaxROMSize {
		return nil, fmt.Errorf("load rom %s: %w: %d bytes, limit %d", fullPath, ErrTooLarge, len(data), cpu.MaxROMSize)
	}
	return data, nil
}

// SiblingPath returns a path next to romPath with its extension replaced by
// suffix, e.g. "games/pong.ch8" + ".state" gives "games/pong.state".
func SiblingPath(romPath, suffix string) string {
	return strings.TrimSuffix(romPath, filepath.Ext(romPath)) + suffix
}

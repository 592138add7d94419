package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"gochip8/pkg/clock"
	"gochip8/pkg/config"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/rom"
)

const noticeDuration = 2 * time.Second

type Game struct {
	vm      *cpu.CPU
	cfg     config.Config
	romPath string
	keys    [cpu.NumKeys]ebiten.Key
	pacer   *clock.Pacer

	paused     bool
	showStatus bool
	fault      error

	canvas *ebiten.Image
	frame  display.Frame
	dirty  bool

	notice      string
	noticeUntil time.Time

	clipboardOnce sync.Once
	clipboardOK   bool
}

func newGame(vm *cpu.CPU, cfg config.Config, romPath string) (*Game, error) {
	table, err := keyTable(cfg.Keys)
	if err != nil {
		return nil, err
	}
	return &Game{
		vm:         vm,
		cfg:        cfg,
		romPath:    romPath,
		keys:       table,
		pacer:      clock.NewPacer(cfg.InstructionHz, cfg.TimerHz),
		showStatus: true,
		frame:      vm.Snapshot(),
		dirty:      true,
	}, nil
}

// Present implements cpu.Display; Draw uploads the frame on its next call.
func (g *Game) Present(frame display.Frame) {
	g.frame = frame
	g.dirty = true
}

func (g *Game) Update() error {
	if g.fault != nil {
		return g.fault
	}
	g.handleHotkeys()
	if g.paused {
		return nil
	}

	steps, ticks := g.pacer.Advance(time.Second / time.Duration(ebiten.TPS()))
	changed, err := clock.Frame(g.vm, pollKeys(g.keys), steps, ticks)
	if changed || err != nil {
		g.Present(g.vm.Snapshot())
	}
	if err != nil {
		g.fault = err
		return err
	}
	return nil
}

func (g *Game) handleHotkeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		g.pacer.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showStatus = !g.showStatus
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		g.vm.Reset()
		g.pacer.Reset()
		g.Present(g.vm.Snapshot())
		g.setNotice("reset")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.saveState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF8) {
		g.loadState()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		g.copyScreenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.saveScreenshot()
	}
}

func (g *Game) statePath() string {
	return rom.SiblingPath(g.romPath, ".state")
}

func (g *Game) saveState() {
	path := g.statePath()
	if err := g.vm.HibernateToFile(path); err != nil {
		log.Printf("Failed to save state: %v", err)
		g.setNotice("save failed")
		return
	}
	log.Printf("State saved to %s", path)
	g.setNotice("saved " + filepath.Base(path))
}

func (g *Game) loadState() {
	path := g.statePath()
	if err := g.vm.RestoreFromFile(path); err != nil {
		log.Printf("Failed to load state: %v", err)
		g.setNotice("load failed")
		return
	}
	g.pacer.Reset()
	g.Present(g.vm.Snapshot())
	log.Printf("State loaded from %s", path)
	g.setNotice("loaded " + filepath.Base(path))
}

func (g *Game) saveScreenshot() {
	path := nextScreenshotPath(g.romPath)
	if err := g.vm.SaveScreenshot(path, g.cfg.Foreground, g.cfg.Background, g.cfg.Scale); err != nil {
		log.Printf("Failed to save screenshot: %v", err)
		g.setNotice("screenshot failed")
		return
	}
	log.Printf("Screenshot saved to %s", path)
	g.setNotice(filepath.Base(path))
}

func (g *Game) copyScreenshot() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		g.setNotice("no clipboard")
		return
	}
	data, err := g.vm.ScreenshotPNG(g.cfg.Foreground, g.cfg.Background, g.cfg.Scale)
	if err != nil {
		log.Printf("Failed to encode screenshot: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtImage, data)
	g.setNotice("copied")
}

func (g *Game) setNotice(s string) {
	g.notice = s
	g.noticeUntil = time.Now().Add(noticeDuration)
}

// nextScreenshotPath returns the first <rom>-<n>.png that does not exist yet.
func nextScreenshotPath(romPath string) string {
	for n := 1; ; n++ {
		path := rom.SiblingPath(romPath, fmt.Sprintf("-%d.png", n))
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(display.Width, display.Height)
	}
	if g.dirty {
		g.canvas.WritePixels(cpu.FrameRGBA(g.frame, g.cfg.Foreground, g.cfg.Background))
		g.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.canvas, op)

	if g.showStatus {
		notice := ""
		if time.Now().Before(g.noticeUntil) {
			notice = g.notice
		}
		drawStatusBar(screen, display.Height*g.cfg.Scale, display.Width*g.cfg.Scale, statusLine(g.vm, g.paused), notice)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := display.Width*g.cfg.Scale, display.Height*g.cfg.Scale
	if g.showStatus {
		h += statusBarHeight
	}
	return w, h
}

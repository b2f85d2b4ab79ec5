// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Example of asset registration: loads HTML/CSS/JS from embed.FS (no files on disk).
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/ebitenview"
	"github.com/YindSoft/offscreen/ultralight"
	"github.com/YindSoft/offscreen/webview"
)

//go:embed ui
var uiFiles embed.FS

const (
	screenWidth  = 800
	screenHeight = 600
)

type Game struct {
	host    *ebitenview.Host
	ui      *ebitenview.View
	counter int
	loaded  string
}

func findBaseDir() string {
	for _, name := range []string{"ul_bridge.dll", "libul_bridge.so", "libul_bridge.dylib"} {
		if _, err := os.Stat(name); err == nil {
			return ""
		}
		if _, err := os.Stat(filepath.Join("..", name)); err == nil {
			return ".."
		}
	}
	return ""
}

func newGame(b *webview.Bridge, tk *ultralight.Toolkit) *Game {
	host := ebitenview.NewHost(b)
	g := &Game{host: host}
	host.OnEnvelope = g.handleEnvelope

	g.ui = host.Open(tk.Factory(ultralight.Options{Width: screenWidth, Height: screenHeight, Assets: uiFiles}), screenWidth, screenHeight)
	g.ui.OnMessage = g.handleMessage
	g.ui.Navigate(ultralight.FileURL("ui/index.html"))
	g.ui.SetBounds(0, 0, screenWidth, screenHeight)
	g.ui.SetFocus()
	return g
}

func (g *Game) Update() error {
	g.counter++
	if err := g.host.Update(); err != nil {
		return err
	}
	if g.counter%60 == 0 {
		g.ui.EvalScript(fmt.Sprintf("if(typeof updateCounter==='function')updateCounter(%d)", g.counter/60))
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.ui.GetTexture(), nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  %s", ebiten.ActualFPS(), g.loaded))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) handleEnvelope(_ *ebitenview.View, e offscreen.Envelope) {
	switch e.Kind {
	case webview.KindPageFinished:
		g.loaded = e.Payload.(webview.PageEvent).URL
	case offscreen.KindCreateFailed:
		log.Printf("[embed UI] create failed: %v", e.Payload)
	}
}

func (g *Game) handleMessage(msg string) {
	log.Printf("[embed UI] message: %s", msg)
	switch msg {
	case "greet":
		g.ui.EvalScript("showMessage('Hello from embedded Go!')")
	default:
		g.ui.EvalScript(fmt.Sprintf("showMessage('Go received: %s')", msg))
	}
}

func main() {
	logFile, err := os.Create("logs.log")
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg := offscreen.DefaultConfig()
	cfg.Ultralight.BaseDir = findBaseDir()
	cfg.Ultralight.Debug = true

	tk := ultralight.NewToolkit(cfg.Ultralight)
	b := webview.NewBridge(cfg, tk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	game := newGame(b, tk)

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("offscreen - embed.FS example")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	runErr := ebiten.RunGame(game)
	game.host.Close()
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("bridge: %v", err)
	}
	if runErr != nil {
		log.Fatalf("run: %v", runErr)
	}
}

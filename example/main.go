// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/ebitenview"
	"github.com/YindSoft/offscreen/simview"
	"github.com/YindSoft/offscreen/ultralight"
	"github.com/YindSoft/offscreen/webview"
)

const (
	screenWidth  = 800
	screenHeight = 600
	mainUIWidth  = 600
	sidebarWidth = 200
)

type Game struct {
	host    *ebitenview.Host
	mainUI  *ebitenview.View
	sidebar *ebitenview.View
	counter int
	status  string
}

func findBaseDir() string {
	// Look for the bridge library in current dir, then parent (for running from example/).
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

func loadConfig(path string) (offscreen.Config, error) {
	cfg, err := offscreen.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = offscreen.DefaultConfig()
	} else if err != nil {
		return cfg, err
	}
	if cfg.Ultralight.BaseDir == "" {
		cfg.Ultralight.BaseDir = findBaseDir()
	}
	return cfg, nil
}

func newGame(b *webview.Bridge, factory func(w, h int) webview.Factory) (*Game, error) {
	index, err := os.ReadFile("ui/index.html")
	if err != nil {
		return nil, fmt.Errorf("main UI: %w", err)
	}
	side, err := os.ReadFile("ui/sidebar.html")
	if err != nil {
		return nil, fmt.Errorf("sidebar UI: %w", err)
	}

	host := ebitenview.NewHost(b)
	g := &Game{host: host}
	host.OnEnvelope = g.handleEnvelope

	g.mainUI = host.Open(factory(mainUIWidth, screenHeight), mainUIWidth, screenHeight)
	g.sidebar = host.Open(factory(sidebarWidth, screenHeight), sidebarWidth, screenHeight)
	g.mainUI.OnMessage = g.handleMainMessage
	g.sidebar.OnMessage = g.handleSidebarMessage

	g.mainUI.LoadInlineWithBase("file:///ui/", string(index), "text/html", "utf-8", "file:///ui/index.html")
	g.sidebar.LoadInlineWithBase("file:///ui/", string(side), "text/html", "utf-8", "file:///ui/sidebar.html")

	g.mainUI.SetBounds(0, 0, mainUIWidth, screenHeight)
	g.sidebar.SetBounds(mainUIWidth, 0, sidebarWidth, screenHeight)
	g.mainUI.SetFocus()

	return g, nil
}

func (g *Game) Update() error {
	g.counter++

	if err := g.host.Update(); err != nil {
		return err
	}

	// Send a counter update every second
	if g.counter%60 == 0 {
		g.mainUI.EvalScript(fmt.Sprintf("if(typeof updateCounter==='function')updateCounter(%d)", g.counter/60))
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})

	// Animated shapes behind the HTML (visible through transparent areas)
	t := float64(g.counter) / 60.0
	bx := float32(100 + 80*math.Sin(t*0.5))
	by := float32(200 + 60*math.Cos(t*0.7))
	vector.DrawFilledRect(screen, bx, by, 120, 120, color.RGBA{0, 200, 80, 255}, true)
	vector.DrawFilledRect(screen, bx+140, by+30, 80, 80, color.RGBA{200, 180, 0, 255}, true)

	// Main UI (left, semi-transparent so background shapes show through)
	optsMain := &ebiten.DrawImageOptions{}
	optsMain.ColorScale.Scale(1, 1, 1, 0.5)
	screen.DrawImage(g.mainUI.GetTexture(), optsMain)

	// Sidebar (right)
	optsSidebar := &ebiten.DrawImageOptions{}
	optsSidebar.ColorScale.Scale(1, 1, 1, 0.5)
	optsSidebar.GeoM.Translate(mainUIWidth, 0)
	screen.DrawImage(g.sidebar.GetTexture(), optsSidebar)

	// Animated shape on top of everything
	fx := float32(500 + 50*math.Sin(t*0.8))
	fy := float32(50 + 30*math.Cos(t*0.6))
	vector.DrawFilledRect(screen, fx, fy, 100, 100, color.RGBA{255, 50, 50, 128}, true)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  TPS: %.1f  %s", ebiten.ActualFPS(), ebiten.ActualTPS(), g.status))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

// handleEnvelope logs page events and answers the decisions the demo
// cares about. The host answers the rest with their defaults.
func (g *Game) handleEnvelope(v *ebitenview.View, e offscreen.Envelope) {
	switch e.Kind {
	case webview.KindPageFinished:
		p := e.Payload.(webview.PageEvent)
		g.status = "loaded " + p.URL
		log.Printf("[%s] page finished: %s", e.Instance, p.URL)
	case webview.KindLoadError:
		le := e.Payload.(webview.LoadError)
		g.status = fmt.Sprintf("error %d", le.Code)
		log.Printf("[%s] load error %d %s: %s", e.Instance, le.Code, le.Description, le.URL)
	case webview.KindURLOverride:
		// game:// links are handled here instead of by the page.
		u := e.Payload.(webview.URLRequest).URL
		if cmd, ok := strings.CutPrefix(u, "game://"); ok {
			log.Printf("[%s] game command: %s", e.Instance, cmd)
			_ = e.Decision.Resolve(true)
		}
	case offscreen.KindDecisionExpired:
		log.Printf("[%s] decision expired: %+v", e.Instance, e.Payload)
	}
}

func (g *Game) handleMainMessage(msg string) {
	log.Printf("[main UI] message: %s", msg)
	switch msg {
	case "greet":
		g.mainUI.EvalScript("showMessage('Hello from Go!')")
	case "count":
		g.mainUI.EvalScript(fmt.Sprintf("showMessage('Counter is at %d')", g.counter/60))
	default:
		g.mainUI.EvalScript(fmt.Sprintf("showMessage('Go received: %s')", msg))
	}
}

func (g *Game) handleSidebarMessage(msg string) {
	log.Printf("[sidebar] message: %s", msg)
	if err := g.sidebar.Send(map[string]string{"echo": msg, "status": "ok"}); err != nil {
		log.Printf("[sidebar] send: %v", err)
	}
}

func main() {
	configPath := flag.String("config", "offscreen.toml", "bridge configuration file")
	sim := flag.Bool("sim", false, "render with the software widget instead of Ultralight")
	flag.Parse()

	logFile, err := os.Create("logs.log")
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Ultralight.Debug {
		offscreen.SetLogger(slog.New(slog.NewTextHandler(log.Writer(), &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var (
		tk      offscreen.Toolkit
		factory func(w, h int) webview.Factory
	)
	if *sim {
		factory = func(w, h int) webview.Factory { return simview.Factory(simview.Options{Width: w, Height: h}) }
	} else {
		ul := ultralight.NewToolkit(cfg.Ultralight)
		tk = ul
		factory = func(w, h int) webview.Factory { return ul.Factory(ultralight.Options{Width: w, Height: h}) }
	}

	b := webview.NewBridge(cfg, tk)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	game, err := newGame(b, factory)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("offscreen - Ebiten + Ultralight demo")
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

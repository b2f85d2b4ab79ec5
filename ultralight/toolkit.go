// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"fmt"
	"io/fs"

	"github.com/YindSoft/offscreen"
	"github.com/YindSoft/offscreen/webview"
)

// Toolkit is the process-wide Ultralight renderer. It loads the bridge
// library and calls ul_init when the first view is created, ticks the
// renderer once per owner loop pump, and shuts it down when the last view
// is destroyed. Pass it to webview.NewBridge.
type Toolkit struct {
	cfg   offscreen.UltralightConfig
	ready bool
	views int
}

// NewToolkit returns a toolkit configured by cfg. Nothing is loaded until
// the first view is created on the owner thread.
func NewToolkit(cfg offscreen.UltralightConfig) *Toolkit {
	return &Toolkit{cfg: cfg}
}

// Tick advances the renderer. It runs on the owner thread.
func (t *Toolkit) Tick() {
	if t.ready {
		ulTick()
	}
}

// acquire brings the renderer up if needed and counts a view.
func (t *Toolkit) acquire() error {
	if !t.ready {
		if err := load(t.cfg.BaseDir); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
		baseDir := resolveBaseDir(t.cfg.BaseDir)
		d := int32(0)
		if t.cfg.Debug {
			d = 1
		}
		if rc := ulInit(baseDir, d); rc != 0 {
			return fmt.Errorf("ul_init failed with code %d", rc)
		}
		t.ready = true
		offscreen.Logger().Info("ultralight: renderer started", "base_dir", baseDir, "debug", t.cfg.Debug)
	}
	t.views++
	return nil
}

func (t *Toolkit) release() {
	t.views--
	if t.views > 0 {
		return
	}
	t.views = 0
	if t.ready {
		ulDestroy()
		t.ready = false
		offscreen.Logger().Info("ultralight: renderer stopped")
	}
}

// Options describes one view.
type Options struct {
	Width, Height int
	// Assets, when set, is registered in the virtual file system before the
	// view is created so pages can reference its files as file:///path.
	Assets fs.FS
}

// Factory returns a webview.Factory creating Ultralight views.
func (t *Toolkit) Factory(opts Options) webview.Factory {
	return func(c *webview.Client) (webview.Widget, error) {
		return t.newView(c, opts)
	}
}

func (t *Toolkit) newView(c *webview.Client, opts Options) (*View, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("ultralight: invalid size %dx%d", opts.Width, opts.Height)
	}
	if err := t.acquire(); err != nil {
		return nil, err
	}
	if opts.Assets != nil {
		if err := RegisterFS(opts.Assets); err != nil {
			t.release()
			return nil, err
		}
	}
	id := ulCreateView(int32(opts.Width), int32(opts.Height))
	if id < 0 {
		t.release()
		return nil, fmt.Errorf("ul_create_view failed with code %d", id)
	}
	return newView(t, c, id, opts.Width, opts.Height), nil
}

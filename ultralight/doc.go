// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package ultralight renders browser views with Ultralight 1.4 through the
// ul_bridge shared library, loaded at runtime with purego.
//
// Ultralight requires every API call to come from one OS thread. The bridge
// provides that thread: create a Toolkit, pass it to webview.NewBridge, and
// open views with the toolkit's Factory.
//
//	tk := ultralight.NewToolkit(cfg.Ultralight)
//	b := webview.NewBridge(cfg, tk)
//	go b.Run(ctx)
//	view := webview.Open(b, tk.Factory(ultralight.Options{Width: 800, Height: 600, Assets: uiFiles}))
//	view.Navigate(ultralight.FileURL("ui/index.html"))
//
// JS -> Go communication uses native JavaScriptCore bindings: go.send(msg)
// in the page arrives as a script-message notification. Go -> JS uses
// View.Send, which calls window.go.receive(data) with parsed JSON.
//
// Requirements: the bridge shared library (ul_bridge.dll on Windows,
// libul_bridge.so on Linux, libul_bridge.dylib on macOS) and the Ultralight
// 1.4 SDK libraries must be present next to the executable or in the
// directory given by the ultralight.base_dir setting.
package ultralight

// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unsafe"
)

// RegisterFile registers a file in Ultralight's VFS.
// filePath is the virtual path (e.g., "ui/style.css"). data is the content.
// Registered files take priority over disk files.
// Must be called on the owner thread, before loading pages that reference it.
func RegisterFile(filePath string, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	norm := normalizePath(filePath)
	rc := ulVfsRegister(norm, uintptr(unsafe.Pointer(&data[0])), int64(len(data)))
	if rc != 0 {
		return fmt.Errorf("ul_vfs_register failed for %q: code %d", norm, rc)
	}
	return nil
}

// RegisterFS registers every file of fsys in the VFS so that <link>,
// <script> and <img> can reference them with relative paths.
//
// Example with embed.FS:
//
//	//go:embed ui
//	var uiFiles embed.FS
//	f := tk.Factory(ultralight.Options{Width: 800, Height: 600, Assets: uiFiles})
//	view := webview.Open(b, f)
//	view.Navigate(ultralight.FileURL("ui/index.html"))
func RegisterFS(fsys fs.FS) error {
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, readErr := fs.ReadFile(fsys, p)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", p, readErr)
		}
		return RegisterFile(p, data)
	})
	if err != nil {
		return fmt.Errorf("walking FS: %w", err)
	}
	return nil
}

// ClearFiles frees all files registered in the VFS. Owner thread only.
func ClearFiles() {
	ulVfsClear()
}

// FileCount returns the number of files registered in the VFS. Owner
// thread only.
func FileCount() int {
	return int(ulVfsCount())
}

// FileURL returns the URL under which a VFS file is served.
func FileURL(mainFile string) string {
	return "file:///" + normalizePath(mainFile)
}

func normalizePath(p string) string {
	norm := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimLeft(norm, "/")
}

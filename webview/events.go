// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import (
	"io"

	"github.com/YindSoft/offscreen"
)

// Callback kinds delivered for browser widgets, on top of the core kinds.
const (
	KindVisitedHistoryUpdated offscreen.Kind = "visited-history-updated"
	KindResourceLoaded        offscreen.Kind = "resource-loaded"
	KindPageStarted           offscreen.Kind = "page-started"
	KindPageFinished          offscreen.Kind = "page-finished"
	KindLoadError             offscreen.Kind = "load-error"
	KindLoginRequested        offscreen.Kind = "login-requested"
	KindScaleChanged          offscreen.Kind = "scale-changed"
	KindUnhandledKeyEvent     offscreen.Kind = "unhandled-key-event"
	KindProgressChanged       offscreen.Kind = "progress-changed"
	KindScriptMessage         offscreen.Kind = "script-message"

	// Command results.
	KindContentHeight      offscreen.Kind = "content-height-result"
	KindCanGoBack          offscreen.Kind = "can-go-back-result"
	KindCanGoForward       offscreen.Kind = "can-go-forward-result"
	KindCanGoBackOrForward offscreen.Kind = "can-go-back-or-forward-result"

	// Decisions. The answer type and the default applied when no answer
	// arrives are listed per kind.
	KindFormResubmission  offscreen.Kind = "form-resubmission"      // bool resend, default false
	KindResourceIntercept offscreen.Kind = "resource-about-to-load" // *Response substitute, default nil
	KindHTTPAuth          offscreen.Kind = "http-auth-requested"    // AuthAnswer, default cancel
	KindSSLError          offscreen.Kind = "ssl-error"              // bool proceed, default false
	KindTooManyRedirects  offscreen.Kind = "too-many-redirects"     // bool continue, default false
	KindKeyOverride       offscreen.Kind = "key-event-override"     // bool host handles key, default false
	KindURLOverride       offscreen.Kind = "url-override"           // bool host handles URL, default false
)

// PageEvent is the payload of page-started, page-finished and
// resource-loaded.
type PageEvent struct {
	URL string
}

// HistoryUpdate is the payload of visited-history-updated.
type HistoryUpdate struct {
	URL      string
	IsReload bool
}

// LoadError is the payload of load-error.
type LoadError struct {
	Code        int
	Description string
	URL         string
}

// Error codes reported in LoadError.Code, matching the browser toolkit's.
const (
	ErrorUnknown        = -1
	ErrorHostLookup     = -2
	ErrorAuthentication = -4
	ErrorConnect        = -6
	ErrorBadURL         = -12
	ErrorFailedSSL      = -11
	ErrorRedirectLoop   = -9
	ErrorFileNotFound   = -14
)

// LoginRequest is the payload of login-requested.
type LoginRequest struct {
	Realm   string
	Account string
	Args    string
}

// ScaleChange is the payload of scale-changed.
type ScaleChange struct {
	Old, New float32
}

// KeyEvent is the payload of unhandled-key-event and key-event-override.
type KeyEvent struct {
	Event offscreen.InputEvent
}

// Progress is the payload of progress-changed.
type Progress struct {
	Percent int
}

// ContentHeight is the payload of content-height-result.
type ContentHeight struct {
	Height int
}

// HistoryQuery is the payload of the can-go-* results. Steps is -1 for
// can-go-back and 1 for can-go-forward.
type HistoryQuery struct {
	Can   bool
	Steps int
}

// URLRequest is the payload of url-override, form-resubmission and
// too-many-redirects.
type URLRequest struct {
	URL string
}

// AuthRequest is the payload of http-auth-requested.
type AuthRequest struct {
	Host  string
	Realm string
}

// AuthAnswer answers http-auth-requested. The zero value cancels.
type AuthAnswer struct {
	Proceed  bool
	Username string
	Password string
}

// SSLError is the payload of ssl-error.
type SSLError struct {
	URL     string
	Primary int
	Message string
}

// SSL error classes for SSLError.Primary.
const (
	SSLNotYetValid = iota
	SSLExpired
	SSLIDMismatch
	SSLUntrusted
	SSLDateInvalid
	SSLInvalid
)

// ResourceRequest is the payload of resource-about-to-load.
type ResourceRequest struct {
	URL string
}

// Response is a substitute response for resource-about-to-load. Ownership
// of Body passes to the widget, which closes it if it is an io.Closer.
type Response struct {
	MIMEType   string
	Encoding   string
	StatusCode int
	Reason     string
	Headers    map[string]string
	Body       io.Reader
}

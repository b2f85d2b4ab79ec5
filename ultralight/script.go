// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package ultralight

import (
	"strconv"
	"strings"

	"github.com/YindSoft/offscreen/webview"
)

// controlPrefix marks page messages produced by pageScript. They are
// consumed by the view and never relayed as script messages.
const controlPrefix = "__offscreen:"

// pageScript is evaluated once the DOM of a newly loaded page is ready. On
// top of go.send it reports the document height and scroll offset, and
// routes link clicks through the host so URL overrides can be decided.
const pageScript = webview.HelperScript +
	"(function(){if(typeof window.__goSend!=='function'||window.__offscreenHooked)return;" +
	"window.__offscreenHooked=true;var s=window.__goSend;" +
	"var h=function(){var d=document.documentElement,b=document.body;" +
	"s('" + controlPrefix + "height:'+Math.max(d?d.scrollHeight:0,b?b.scrollHeight:0));};" +
	"h();window.addEventListener('resize',h);" +
	"if(window.MutationObserver)new MutationObserver(h).observe(document.documentElement,{childList:true,subtree:true});" +
	"window.addEventListener('scroll',function(){s('" + controlPrefix + "scroll:'+Math.round(window.scrollY));});" +
	"document.addEventListener('click',function(e){var a=e.target&&e.target.closest?e.target.closest('a[href]'):null;" +
	"if(!a||a.target==='_blank'||a.href.indexOf('javascript:')===0)return;e.preventDefault();" +
	"s('" + controlPrefix + "navigate:'+a.href);},true);" +
	"s('" + controlPrefix + "ready:'+location.href);})();"

type controlKind int

const (
	controlReady controlKind = iota + 1
	controlHeight
	controlScroll
	controlNavigate
)

// control is a decoded pageScript message.
type control struct {
	kind controlKind
	url  string
	n    int
}

// parseControl decodes msg. ok is false for ordinary page messages and
// for malformed control messages.
func parseControl(msg string) (c control, ok bool) {
	rest, found := strings.CutPrefix(msg, controlPrefix)
	if !found {
		return control{}, false
	}
	name, arg, _ := strings.Cut(rest, ":")
	switch name {
	case "ready":
		return control{kind: controlReady, url: arg}, true
	case "navigate":
		if arg == "" {
			return control{}, false
		}
		return control{kind: controlNavigate, url: arg}, true
	case "height", "scroll":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return control{}, false
		}
		if name == "height" {
			return control{kind: controlHeight, n: n}, true
		}
		return control{kind: controlScroll, n: n}, true
	}
	return control{}, false
}

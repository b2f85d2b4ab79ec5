// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HelperScript sets up window.go.send on top of the native __goSend
// function, serializing non-string values as JSON. Widgets inject it once
// the DOM is ready.
const HelperScript = "if(typeof window.__goSend==='function'){window.go=window.go||{};if(!window.go.send)window.go.send=function(m){window.__goSend(typeof m==='string'?m:JSON.stringify(m));};}"

// ParseMessage parses msg as JSON if it looks like JSON (starts with '{' or '[').
// Returns the parsed value, or the raw string if it's not JSON.
func ParseMessage(msg string) (any, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil, nil
	}
	if (strings.HasPrefix(msg, "{") && strings.HasSuffix(msg, "}")) ||
		(strings.HasPrefix(msg, "[") && strings.HasSuffix(msg, "]")) {
		var v any
		if err := json.Unmarshal([]byte(msg), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return msg, nil
}

// receiveScript serializes data to JSON and wraps it in a call to
// window.go.receive(data).
func receiveScript(data any) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("send: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("if(window.go&&typeof window.go.receive==='function')window.go.receive(JSON.parse(\"")
	for _, c := range string(jsonBytes) {
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteString("\"));")
	return sb.String(), nil
}

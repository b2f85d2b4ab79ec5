// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import "strings"

// ParseHeaderLines decodes extra request headers serialized as alternating
// name and value lines:
//
//	header1\n
//	value1\n
//	header2\n
//	value2\n
//
// Malformed entries are dropped and counted: a trailing name without a
// value, and pairs whose name is blank. Later duplicates win.
func ParseHeaderLines(s string) (headers map[string]string, dropped int) {
	s = strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return map[string]string{}, 0
	}
	parts := strings.Split(s, "\n")
	headers = make(map[string]string, len(parts)/2)
	pairs := len(parts) / 2
	for i := 0; i < pairs; i++ {
		name := strings.TrimSpace(parts[2*i])
		if name == "" {
			dropped++
			continue
		}
		headers[name] = parts[2*i+1]
	}
	dropped += len(parts) % 2
	return headers, dropped
}

// FormatHeaderLines is the inverse of ParseHeaderLines.
func FormatHeaderLines(headers map[string]string) string {
	var sb strings.Builder
	for name, value := range headers {
		sb.WriteString(name)
		sb.WriteByte('\n')
		sb.WriteString(value)
		sb.WriteByte('\n')
	}
	return sb.String()
}

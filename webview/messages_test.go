// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webview

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		in      string
		want    any
		wantErr bool
	}{
		{"", nil, false},
		{"   ", nil, false},
		{"hello", "hello", false},
		{" plain text ", "plain text", false},
		{`{"a":1,"b":"x"}`, map[string]any{"a": 1.0, "b": "x"}, false},
		{`[1,"two",true]`, []any{1.0, "two", true}, false},
		{`{broken}`, nil, true},
		{`{"unterminated"`, `{"unterminated"`, false},
	}
	for _, tt := range tests {
		got, err := ParseMessage(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMessage(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseMessage(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestReceiveScriptEscapes(t *testing.T) {
	js, err := receiveScript(map[string]string{"text": "line1\nsay \"hi\" \\ done"})
	if err != nil {
		t.Fatal(err)
	}
	const prefix = `if(window.go&&typeof window.go.receive==='function')window.go.receive(JSON.parse("`
	if !strings.HasPrefix(js, prefix) || !strings.HasSuffix(js, `"));`) {
		t.Fatalf("unexpected wrapper: %s", js)
	}
	body := strings.TrimSuffix(strings.TrimPrefix(js, prefix), `"));`)
	// json.Marshal yields {"text":"line1\nsay \"hi\" \\ done"}; each
	// backslash and quote is escaped again for the JS string literal.
	want := `{\"text\":\"line1\\nsay \\\"hi\\\" \\\\ done\"}`
	if body != want {
		t.Errorf("body = %s\nwant   %s", body, want)
	}
	if strings.ContainsAny(body, "\n\r") {
		t.Error("raw newline leaked into the script")
	}
}

func TestReceiveScriptRejectsUnencodable(t *testing.T) {
	if _, err := receiveScript(make(chan int)); err == nil {
		t.Error("expected an error for a channel value")
	}
}

func TestHelperScriptDefinesSend(t *testing.T) {
	for _, want := range []string{"window.__goSend", "window.go.send", "JSON.stringify"} {
		if !strings.Contains(HelperScript, want) {
			t.Errorf("HelperScript lacks %q", want)
		}
	}
}

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(false, &buf)

	l.Printf("hidden %d", 1)
	l.Print("hidden")
	l.Println("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug output written with debug off: %q", buf.String())
	}

	l.Errorf("boom %d", 2)
	out := buf.String()
	if !strings.Contains(out, "error: boom 2") {
		t.Fatalf("Errorf output = %q, want error prefix regardless of debug", out)
	}
}

func TestDebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(true, &buf)

	l.Printf("visible %s", "now")
	if !strings.Contains(buf.String(), "visible now") {
		t.Fatalf("Printf output = %q, want it written with debug on", buf.String())
	}
}

package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	// Save original logger
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// Now set to nil and verify it doesn't call our logger
	called = false
	SetLogger(nil)
	Logf("test")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()

	Logf("test message: %s", "value")
}

func TestSetTracer(t *testing.T) {
	defer SetTracer(nil)

	if TraceEnabled() {
		t.Fatal("tracing should be off by default")
	}
	Tracef("muted %d", 1)

	var lines []string
	SetTracer(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	if !TraceEnabled() {
		t.Fatal("TraceEnabled() = false after SetTracer")
	}
	Tracef("tower %d", 3)
	if len(lines) != 1 || lines[0] != "tower 3" {
		t.Errorf("lines = %q, want [\"tower 3\"]", lines)
	}

	SetTracer(nil)
	Tracef("tower %d", 4)
	if TraceEnabled() || len(lines) != 1 {
		t.Errorf("tracer still active after SetTracer(nil): %q", lines)
	}
}

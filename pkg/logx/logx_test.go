package logx

import (
	"errors"
	"testing"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger("window")
	if logger == nil {
		t.Fatal("Expected NewLogger to return non-nil instance")
	}
	if logger.Component() != "window" {
		t.Errorf("Expected component 'window', got '%s'", logger.Component())
	}
}

func TestDebugDomainFiltering(t *testing.T) {
	SetDebug(true, []string{"allocator"})
	defer SetDebug(false, nil)

	if !DebugEnabledFor("allocator") {
		t.Error("Expected debug enabled for 'allocator' domain")
	}
	if DebugEnabledFor("window") {
		t.Error("Expected debug disabled for 'window' domain")
	}

	// No domain filter enables all domains.
	SetDebug(true, nil)
	if !DebugEnabledFor("window") {
		t.Error("Expected debug enabled for all domains when no filter set")
	}
}

func TestRecentEntriesFilterByComponent(t *testing.T) {
	logger := NewLogger("testcomponent-recent")
	logger.Info("first message")
	logger.Warn("second message")

	entries := RecentEntries("testcomponent-recent")
	if len(entries) < 2 {
		t.Fatalf("Expected at least 2 buffered entries, got %d", len(entries))
	}

	last := entries[len(entries)-1]
	if last.Level != string(LevelWarn) {
		t.Errorf("Expected last entry level WARN, got %s", last.Level)
	}
	if last.Message != "second message" {
		t.Errorf("Expected last entry message 'second message', got '%s'", last.Message)
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(base, "loading config")
	if wrapped == nil {
		t.Fatal("Expected non-nil wrapped error")
	}
	if !errors.Is(wrapped, base) {
		t.Error("Expected wrapped error to match base via errors.Is")
	}
	if Wrap(nil, "noop") != nil {
		t.Error("Expected Wrap(nil) to return nil")
	}
}

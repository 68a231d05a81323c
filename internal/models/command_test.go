package models

import "testing"

func TestParseEventKind(t *testing.T) {
	cases := map[string]EventKind{
		"press":         EventPress,
		"keydown":       EventPress,
		"MouseDown":     EventPress,
		"touchstart":    EventPress,
		"release":       EventRelease,
		"pointerup":     EventRelease,
		"touchend":      EventRelease,
		"mouseleave":    EventCancel,
		"touchcancel":   EventCancel,
		"pointercancel": EventCancel,
		"blur":          EventCancel,
	}
	for in, want := range cases {
		got, ok := ParseEventKind(in)
		if !ok || got != want {
			t.Fatalf("ParseEventKind(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseEventKind("hover"); ok {
		t.Fatalf("unexpected kind accepted")
	}
}

func TestParseDirectionAndTitle(t *testing.T) {
	d, ok := ParseDirection(" Forward ")
	if !ok || d != DirectionForward || d.Title() != "Forward" {
		t.Fatalf("got %q %v", d, ok)
	}
	if d, ok := ParseDirection(""); !ok || d != DirectionNone || d.IsMotion() {
		t.Fatalf("empty direction should parse as none, got %q %v", d, ok)
	}
	if _, ok := ParseDirection("up"); ok {
		t.Fatalf("unexpected direction accepted")
	}
}

func TestKeyDirection(t *testing.T) {
	cases := map[string]Direction{
		"w": DirectionForward, "A": DirectionLeft, "s": DirectionBackward, "d": DirectionRight,
		"ArrowUp": DirectionForward, "ArrowDown": DirectionBackward, "ArrowLeft": DirectionLeft, "ArrowRight": DirectionRight,
	}
	for key, want := range cases {
		if got, ok := KeyDirection(key); !ok || got != want {
			t.Fatalf("KeyDirection(%q) = %q, %v; want %q", key, got, ok, want)
		}
	}
	if _, ok := KeyDirection("Space"); ok {
		t.Fatalf("unexpected key mapped")
	}
}

func TestCommandStateInvariant(t *testing.T) {
	idle := IdleState()
	if !idle.IsIdle() || idle.OwningSource != nil || idle.Owner() != "" || idle.Status != StatusIdle {
		t.Fatalf("unexpected idle state: %+v", idle)
	}
}

package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	r := NewOverlayRegistry()
	for _, desc := range r.All() {
		if got := r.IsEnabled(desc.ID); got != desc.Default {
			t.Errorf("%s enabled = %v, want %v", desc.ID, got, desc.Default)
		}
	}
	if got := r.EnabledOverlays(); len(got) != 2 {
		t.Errorf("EnabledOverlays() = %v, want markers and stats", got)
	}
}

func TestOverlayExclusive(t *testing.T) {
	r := NewOverlayRegistry()
	if !r.Toggle(OverlayGrid) {
		t.Fatal("grid not enabled")
	}
	if !r.Toggle(OverlayHashCells) {
		t.Fatal("hash cells not enabled")
	}
	if r.IsEnabled(OverlayGrid) {
		t.Error("grid still enabled after enabling hash cells")
	}
	r.SetEnabled(OverlayHashCells, false)
	if r.IsEnabled(OverlayHashCells) || r.IsEnabled(OverlayGrid) {
		t.Error("disabling should not re-enable the exclusive overlay")
	}
}

func TestOverlayHandleKeyPress(t *testing.T) {
	r := NewOverlayRegistry()

	id, state, ok := r.HandleKeyPress(rl.KeyV)
	if !ok || id != OverlayVelocity || !state {
		t.Errorf("HandleKeyPress(V) = %q %v %v", id, state, ok)
	}
	if _, _, ok := r.HandleKeyPress(rl.KeyZ); ok {
		t.Error("unbound key toggled an overlay")
	}
	if r.Toggle("missing") {
		t.Error("unknown overlay toggled on")
	}
}

func TestOverlayCategories(t *testing.T) {
	r := NewOverlayRegistry()
	cats := r.Categories()
	want := []string{"visual", "debug", "panels"}
	if len(cats) != len(want) {
		t.Fatalf("Categories() = %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("category %d = %q, want %q", i, cats[i], want[i])
		}
	}
	if n := len(r.ByCategory("panels")); n != 3 {
		t.Errorf("panels = %d, want 3", n)
	}
}

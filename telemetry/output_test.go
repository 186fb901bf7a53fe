package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/sphfluid/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// All methods are nil-safe.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a dir")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 300, Particles: 100, SpeedMax: 42}); err != nil {
			t.Fatal(err)
		}
	}
	pc := NewPerfCollector(4)
	pc.StartTick()
	pc.StartPhase(PhaseRigid)
	pc.EndTick()
	if err := om.WritePerf(pc.Stats(), 300); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSettled, Tick: 900, Description: "quiet"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,particles") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	data, err = os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "settled") {
		t.Errorf("bookmarks.csv = %q", data)
	}
	for _, name := range []string{"perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestOutputManagerHeaderPerFile(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	pc := NewPerfCollector(4)
	for i := int32(1); i <= 2; i++ {
		if err := om.WritePerf(pc.Stats(), i*300); err != nil {
			t.Fatal(err)
		}
		if err := om.WriteBookmark(Bookmark{Type: BookmarkSplash, Tick: i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	for _, name := range []string{"perf.csv", "bookmarks.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("%s has %d lines, want header + 2", name, len(lines))
		}
		if lines[0] == lines[1] {
			t.Errorf("%s repeats its header", name)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("telemetry.csv = %q, want empty", data)
	}
}

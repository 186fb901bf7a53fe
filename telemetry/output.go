package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/sphfluid/config"
)

// csvLog is an append-only CSV file whose header row is written with the
// first record.
type csvLog struct {
	f           *os.File
	wroteHeader bool
}

// appendRecord marshals rec as one row of log.
func appendRecord[T any](log *csvLog, rec T) error {
	records := []T{rec}
	if log.wroteHeader {
		return gocsv.MarshalWithoutHeaders(records, log.f)
	}
	if err := gocsv.Marshal(records, log.f); err != nil {
		return err
	}
	log.wroteHeader = true
	return nil
}

// OutputManager writes a run's CSV logs, config copy and snapshots into one
// directory.
type OutputManager struct {
	dir       string
	telemetry csvLog
	perf      csvLog
	bookmarks csvLog
}

// NewOutputManager creates dir and the CSV files inside it.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		log  *csvLog
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
	}
	for _, cf := range files {
		f, err := os.Create(filepath.Join(dir, cf.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", cf.name, err)
		}
		cf.log.f = f
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats row to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(&om.telemetry, stats); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends the phase timings of the window ending at windowEnd to
// perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(&om.perf, stats.ToCSV(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark row to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := appendRecord(&om.bookmarks, b); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteSnapshot saves a snapshot into the snapshots subdirectory.
func (om *OutputManager) WriteSnapshot(snapshot *Snapshot) (string, error) {
	if om == nil || snapshot == nil {
		return "", nil
	}
	return SaveSnapshot(snapshot, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every open output file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, log := range []*csvLog{&om.telemetry, &om.perf, &om.bookmarks} {
		if log.f == nil {
			continue
		}
		errs = append(errs, log.f.Close())
		log.f = nil
	}
	return errors.Join(errs...)
}

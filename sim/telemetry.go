package sim

import (
	"github.com/pthm-cable/sphfluid/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.fluids, len(s.space.Boxes()))
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}

	bookmarks := s.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if s.logStats {
			bm.LogBookmark()
		}

		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				s.logger.Error("failed to write bookmark", "error", err)
			}
		}

		if s.snapshotDir != "" {
			s.saveBookmarkSnapshot(&bm)
		}
	}
}

// saveBookmarkSnapshot saves the current state tagged with bm.
func (s *Simulation) saveBookmarkSnapshot(bm *telemetry.Bookmark) {
	snap := telemetry.CaptureSnapshot(s.fluids, s.space, s.tick, s.rngSeed)
	snap.Bookmark = bm
	path, err := telemetry.SaveSnapshot(snap, s.snapshotDir)
	if err != nil {
		s.logger.Error("failed to save snapshot", "error", err)
		return
	}
	s.logger.Info("snapshot saved", "path", path, "bookmark", bm.Type)
}

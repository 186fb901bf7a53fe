package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSplash           BookmarkType = "splash"
	BookmarkCompressionSpike BookmarkType = "compression_spike"
	BookmarkFluidLoss        BookmarkType = "fluid_loss"
	BookmarkSettled          BookmarkType = "settled"
)

// Thresholds below which ratios against the rolling average are noise.
const (
	splashMinSpeed       = 200.0 // px/s
	compressionMinErr    = 0.5
	lossMinParticles     = 10
	settledMaxMeanSpeed  = 5.0 // px/s
	settledMinParticles  = 10
	settledTriggerWindow = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentParticlePeak  int // peak active particle count in recent history
	settledWindowsCount int // consecutive quiet windows
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settle detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Splash: peak speed > 2x rolling average
		if b := bd.checkSplash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Compression spike: p90 density error > 2x rolling average
		if b := bd.checkCompressionSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Fluid loss: active particles dropped >30% from recent peak
		if b := bd.checkFluidLoss(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Settled: mean speed stays low for several windows
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	if stats.ActiveParticles > bd.recentParticlePeak {
		bd.recentParticlePeak = stats.ActiveParticles
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkSplash(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMax
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMax > avg*2.0 && stats.SpeedMax > splashMinSpeed {
		return &Bookmark{
			Type:        BookmarkSplash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Peak speed %.0f is %.1fx average (%.0f)", stats.SpeedMax, stats.SpeedMax/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkCompressionSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DensityErrP90
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.DensityErrP90 > avg*2.0 && stats.DensityErrP90 > compressionMinErr {
		return &Bookmark{
			Type:        BookmarkCompressionSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Density error p90 %.2f is %.1fx average (%.2f)", stats.DensityErrP90, stats.DensityErrP90/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkFluidLoss(stats WindowStats) *Bookmark {
	if bd.recentParticlePeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.ActiveParticles)/float64(bd.recentParticlePeak)
	if dropPercent > 0.30 && stats.ActiveParticles < bd.recentParticlePeak-lossMinParticles {
		// Reset peak after the loss
		oldPeak := bd.recentParticlePeak
		bd.recentParticlePeak = stats.ActiveParticles

		return &Bookmark{
			Type:        BookmarkFluidLoss,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Active particles fell %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.ActiveParticles),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.ActiveParticles < settledMinParticles || stats.SpeedMean > settledMaxMeanSpeed {
		bd.settledWindowsCount = 0
		return nil
	}

	bd.settledWindowsCount++
	if bd.settledWindowsCount == settledTriggerWindow { // trigger exactly once
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d particles settled, mean speed %.1f over %d windows", stats.ActiveParticles, stats.SpeedMean, settledTriggerWindow),
		}
	}

	return nil
}

package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsContainer(t *testing.T) {
	cam := New(800, 600, 1600, 600)

	if cam.X != 800 || cam.Y != 300 {
		t.Errorf("expected camera at (800, 300), got (%f, %f)", cam.X, cam.Y)
	}
	// 800/1600 = 0.5 is the tighter axis.
	if !near(cam.Zoom, 0.5) || !near(cam.MinZoom, 0.5) {
		t.Errorf("zoom %f min %f, want 0.5", cam.Zoom, cam.MinZoom)
	}
}

func TestNewSameSize(t *testing.T) {
	cam := New(800, 600, 800, 600)
	if cam.Zoom != 1 {
		t.Errorf("zoom = %f, want 1", cam.Zoom)
	}
	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 0) || !near(sy, 0) {
		t.Errorf("world origin at (%f, %f), want screen origin", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(300, -100)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClampsToContainer(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2) // view is 400x300

	cam.Pan(-10000, -10000)
	if cam.X != 200 || cam.Y != 150 {
		t.Errorf("camera at (%f, %f), want clamped to (200, 150)", cam.X, cam.Y)
	}
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("view starts at (%f, %f), want (0, 0)", minX, minY)
	}

	cam.Pan(10000, 10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if maxX != 800 || maxY != 600 {
		t.Errorf("view ends at (%f, %f), want (800, 600)", maxX, maxY)
	}
}

func TestPanCentersWhenZoomedOut(t *testing.T) {
	cam := New(800, 600, 1600, 600)
	cam.Pan(0, 500)
	if cam.Y != 300 {
		t.Errorf("Y = %f, want centered 300", cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, 800, 600)

	cam.SetZoom(100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("zoom = %f, want max %f", cam.Zoom, cam.MaxZoom)
	}
	cam.ZoomBy(0.001)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("zoom = %f, want min %f", cam.Zoom, cam.MinZoom)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(800, 600, 800, 600)
	wx, wy := cam.ScreenToWorld(400, 300)

	cam.ZoomAt(400, 300, 2)
	ax, ay := cam.ScreenToWorld(400, 300)
	if !near(ax, wx) || !near(ay, wy) {
		t.Errorf("point under cursor moved from (%f,%f) to (%f,%f)", wx, wy, ax, ay)
	}

	// Near a corner the clamp wins.
	cam.Reset()
	cam.ZoomAt(0, 0, 4)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("view starts at (%f, %f), want (0, 0)", minX, minY)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.SetZoom(2)
	cam.Pan(-10000, -10000) // view covers [0,400]x[0,300]

	tests := []struct {
		name    string
		x, y, r float32
		want    bool
	}{
		{"inside", 100, 100, 1, true},
		{"outside", 600, 100, 1, false},
		{"edge radius", 405, 100, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, tt.y, tt.r); got != tt.want {
				t.Errorf("IsVisible(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.r, got, tt.want)
			}
		})
	}
}

func TestResizeKeepsZoomInRange(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.Resize(400, 300)
	if !near(cam.MinZoom, 0.5) {
		t.Errorf("MinZoom = %f, want 0.5", cam.MinZoom)
	}
	if cam.Zoom < cam.MinZoom || cam.Zoom > cam.MaxZoom {
		t.Errorf("zoom %f outside [%f, %f]", cam.Zoom, cam.MinZoom, cam.MaxZoom)
	}
}

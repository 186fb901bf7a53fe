package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/fluid"
	"github.com/pthm-cable/sphfluid/physics"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds the fluid and rigid body state needed to resume a run.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	Bounds          r2.Box  `json:"bounds"`
	Gravity         r2.Vec  `json:"gravity"`
	SmoothingRadius float64 `json:"smoothing_radius"`

	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Fluids []FluidState `json:"fluids"`
	Bodies []BodyState  `json:"bodies"`
	Walls  *WallState   `json:"walls,omitempty"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// FluidState holds one fluid and its particles.
type FluidState struct {
	ID        int             `json:"id"`
	Config    fluid.Config    `json:"config"`
	Active    bool            `json:"active"`
	Particles []ParticleState `json:"particles"`
}

// ParticleState holds the integrated state of a particle. Density, pressure
// and neighbors are recomputed on the next step.
type ParticleState struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
}

// BodyState holds one rigid box.
type BodyState struct {
	Static bool    `json:"static"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Angle  float64 `json:"angle"`
	Mass   float64 `json:"mass,omitempty"`
	VelX   float64 `json:"vel_x,omitempty"`
	VelY   float64 `json:"vel_y,omitempty"`
}

// WallState holds the container walls of the rigid space.
type WallState struct {
	Bounds    r2.Box  `json:"bounds"`
	Thickness float64 `json:"thickness"`
}

// CaptureSnapshot records the state of w and, when space is non-nil, its
// boxes.
func CaptureSnapshot(w *fluid.World, space *physics.Space, tick int32, seed int64) *Snapshot {
	s := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: seed,
		Bounds:  w.Bounds(),
		Gravity: w.Gravity(),
		Tick:    tick,
		SimTime: w.SimTime(),

		SmoothingRadius: w.SmoothingRadius(),
	}

	for _, f := range w.Fluids() {
		fs := FluidState{
			ID:        f.ID,
			Config:    f.Config,
			Active:    f.Active,
			Particles: make([]ParticleState, 0, len(f.Particles)),
		}
		for _, p := range f.Particles {
			fs.Particles = append(fs.Particles, ParticleState{X: p.Pos.X, Y: p.Pos.Y, VelX: p.Vel.X, VelY: p.Vel.Y})
		}
		s.Fluids = append(s.Fluids, fs)
	}

	if space != nil {
		if bounds, thickness, ok := space.Walls(); ok {
			s.Walls = &WallState{Bounds: bounds, Thickness: thickness}
		}
		for _, b := range space.Boxes() {
			w, h := b.Size()
			pos := b.Position()
			bs := BodyState{
				Static: b.Kind() == fluid.BodyStatic,
				X:      pos.X,
				Y:      pos.Y,
				W:      w,
				H:      h,
				Angle:  b.Angle(),
			}
			if !bs.Static {
				vel := b.Velocity()
				bs.Mass = b.Mass()
				bs.VelX, bs.VelY = vel.X, vel.Y
			}
			s.Bodies = append(s.Bodies, bs)
		}
	}

	return s
}

// Restore recreates the snapshot's fluids in w and boxes in space. Fluid ids
// are assigned by w; the returned map takes snapshot ids to new ids.
func (s *Snapshot) Restore(w *fluid.World, space *physics.Space) (map[int]int, error) {
	w.SetBounds(s.Bounds)
	w.SetGravity(s.Gravity)
	w.SetSmoothingRadius(s.SmoothingRadius)
	w.SetSimTime(s.SimTime)

	ids := make(map[int]int, len(s.Fluids))
	for _, fs := range s.Fluids {
		id := w.CreateFluid(fs.Config)
		ids[fs.ID] = id
		for _, ps := range fs.Particles {
			if _, err := w.AddParticle(id, r2.Vec{X: ps.X, Y: ps.Y}, r2.Vec{X: ps.VelX, Y: ps.VelY}); err != nil {
				return ids, fmt.Errorf("restore fluid %d: %w", fs.ID, err)
			}
		}
		if err := w.SetActive(id, fs.Active); err != nil {
			return ids, err
		}
	}

	if space == nil {
		return ids, nil
	}
	space.SetGravity(s.Gravity)
	if s.Walls != nil {
		space.AddWalls(s.Walls.Bounds, s.Walls.Thickness)
	}
	for i, bs := range s.Bodies {
		center := r2.Vec{X: bs.X, Y: bs.Y}
		if bs.Static {
			if _, err := space.AddStaticBox(center, bs.W, bs.H, bs.Angle); err != nil {
				return ids, fmt.Errorf("restore body %d: %w", i, err)
			}
			continue
		}
		b, err := space.AddDynamicBox(center, bs.W, bs.H, bs.Mass)
		if err != nil {
			return ids, fmt.Errorf("restore body %d: %w", i, err)
		}
		b.SetAngle(bs.Angle)
		b.SetVelocity(r2.Vec{X: bs.VelX, Y: bs.VelY})
	}
	return ids, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}

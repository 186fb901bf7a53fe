package fluid

import "gonum.org/v1/gonum/spatial/r2"

// Params holds the world-wide solver settings.
type Params struct {
	SmoothingRadius float64 // kernel support h, also the spatial hash cell size
	MaxDt           float64 // longest sub-step Update will take
	Gravity         r2.Vec  // px/s^2, +Y is down
	Bounds          r2.Box

	Damping             float64 // velocity factor per sub-step
	MaxSpeed            float64 // px/s
	BoundaryRestitution float64

	Coupling CouplingParams

	Epsilon float64 // distance and density guard

	// Workers > 1 runs the per-particle phases on a worker pool of that
	// size. A negative value uses GOMAXPROCS. Results do not depend on it.
	Workers int

	Seed int64 // seeds emission jitter
}

// DefaultParams returns the standard solver settings for an 800x600 world.
func DefaultParams() Params {
	return Params{
		SmoothingRadius:     16,
		MaxDt:               1.0 / 60.0,
		Gravity:             r2.Vec{X: 0, Y: 980},
		Bounds:              r2.Box{Min: r2.Vec{}, Max: r2.Vec{X: 800, Y: 600}},
		Damping:             0.999,
		MaxSpeed:            500,
		BoundaryRestitution: 0.3,
		Coupling: CouplingParams{
			StaticRestitution: 0.3,
			PushMargin:        2,
			VelocityBlend:     0.8,
			CouplingScale:     1e-4,
			Buoyancy:          0.1,
		},
		Epsilon: 1e-4,
		Seed:    1,
	}
}

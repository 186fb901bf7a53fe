package systems

import "github.com/pthm-cable/sphfluid/fluid"

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "visual", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Scene systems
	r.Register(SystemInfo{ID: "physics", Name: "Rigid Bodies", Description: "Steps the chipmunk space", Category: "scene"})
	r.Register(SystemInfo{ID: "rigidSync", Name: "Rigid Sync", Description: "Copies body transforms to entities", Category: "scene"})
	r.Register(SystemInfo{ID: "emitters", Name: "Emitters", Description: "Sprays particles from emitters", Category: "scene"})
	r.Register(SystemInfo{ID: "drains", Name: "Drains", Description: "Removes particles at drains", Category: "scene"})
	r.Register(SystemInfo{ID: "stirrers", Name: "Stirrers", Description: "Pulses vortices", Category: "scene"})
	r.Register(SystemInfo{ID: "turbulence", Name: "Turbulence", Description: "Applies the noise force field", Category: "scene"})
	r.Register(SystemInfo{ID: "systems", Name: "Scene Systems", Description: "All of the above except rigid bodies", Category: "scene"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Stats windows, CSV output and bookmarks", Category: "scene"})

	// Fluid solver phases
	r.Register(SystemInfo{ID: fluid.PhaseCollect, Name: "Collect", Description: "Flattens active fluids into the arena", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseSpatialHash, Name: "Spatial Hash", Description: "Rebuilds the neighbour grid", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseNeighbors, Name: "Neighbours", Description: "Finds particles within h", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseDensity, Name: "Density", Description: "Density and pressure", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseForces, Name: "Forces", Description: "Pressure, viscosity and gravity", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseCoupling, Name: "Coupling", Description: "Particle and rigid body exchange", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseIntegrate, Name: "Integrate", Description: "Advances velocities and positions", Category: "fluid"})
	r.Register(SystemInfo{ID: fluid.PhaseBoundaries, Name: "Boundaries", Description: "Keeps particles in the container", Category: "fluid"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}

package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sphfluid/sim"
)

// Tool is what the left mouse button does.
type Tool uint8

const (
	ToolExplode Tool = iota
	ToolAttract
	ToolVortex
	ToolSpray
	ToolErase
	ToolInspect
	numTools
)

var toolNames = [...]string{"explode", "attract", "vortex", "spray", "erase", "inspect"}

func (t Tool) String() string {
	if t < numTools {
		return toolNames[t]
	}
	return "unknown"
}

// Next cycles to the following tool.
func (t Tool) Next() Tool {
	return (t + 1) % numTools
}

// continuous reports whether the tool acts every frame the button is held
// rather than once per click.
func (t Tool) continuous() bool {
	switch t {
	case ToolAttract, ToolVortex, ToolSpray, ToolErase:
		return true
	}
	return false
}

// apply runs t at world position p with the given fluid preset. It returns
// the number of particles affected.
func (t Tool) apply(s *sim.Simulation, p r2.Vec, preset string) (int, error) {
	switch t {
	case ToolExplode:
		return s.Explode(p), nil
	case ToolAttract:
		return s.Attract(p), nil
	case ToolVortex:
		return s.Vortex(p), nil
	case ToolSpray:
		return s.Spray(p, preset)
	case ToolErase:
		return s.Erase(p), nil
	}
	return 0, nil
}

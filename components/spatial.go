package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Rotation represents an entity's heading.
type Rotation struct {
	Heading float32 // radians
}

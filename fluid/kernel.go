// Package fluid implements a 2D smoothed-particle hydrodynamics solver with
// spatial-hash neighbor search and two-way coupling to an external rigid-body
// world.
//
// Densities are number densities: every particle has unit mass, so a density
// is a plain sum of poly6 kernel values. For a 16 px smoothing radius the rest
// densities of the built-in presets are of order 1e-3.
package fluid

import "math"

// Kernels holds the smoothing kernels for a fixed radius h.
// Coefficients are computed once in NewKernels.
type Kernels struct {
	h, h2 float64

	poly6Coef float64 // 315 / (64 pi h^9)
	spikyCoef float64 // -45 / (pi h^6)
	viscCoef  float64 // 45 / (pi h^6)
}

// NewKernels precomputes kernel coefficients for smoothing radius h.
func NewKernels(h float64) Kernels {
	h6 := math.Pow(h, 6)
	h9 := math.Pow(h, 9)
	return Kernels{
		h:         h,
		h2:        h * h,
		poly6Coef: 315 / (64 * math.Pi * h9),
		spikyCoef: -45 / (math.Pi * h6),
		viscCoef:  45 / (math.Pi * h6),
	}
}

// H returns the smoothing radius.
func (k Kernels) H() float64 { return k.h }

// Poly6 is the density kernel.
func (k Kernels) Poly6(r float64) float64 {
	if r < 0 || r >= k.h {
		return 0
	}
	return k.poly6Sq(r * r)
}

// poly6Sq evaluates poly6 from a squared distance already known to be < h^2.
func (k Kernels) poly6Sq(r2 float64) float64 {
	d := k.h2 - r2
	return k.poly6Coef * d * d * d
}

// SpikyGrad is the magnitude of the spiky kernel gradient. It is negative
// inside the support radius.
func (k Kernels) SpikyGrad(r float64) float64 {
	if r < 0 || r >= k.h {
		return 0
	}
	d := k.h - r
	return k.spikyCoef * d * d
}

// ViscLaplacian is the viscosity kernel laplacian.
func (k Kernels) ViscLaplacian(r float64) float64 {
	if r < 0 || r >= k.h {
		return 0
	}
	return k.viscCoef * (k.h - r)
}

// SelfDensity is the contribution a particle makes to its own density.
func (k Kernels) SelfDensity() float64 {
	return k.Poly6(0)
}

// LatticeDensity returns the density of a particle in the interior of an
// infinite square lattice with the given spacing. Useful for picking a rest
// density that matches a fill spacing.
func (k Kernels) LatticeDensity(spacing float64) float64 {
	if spacing <= 0 {
		return 0
	}
	n := int(math.Ceil(k.h / spacing))
	var rho float64
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			dx := float64(i) * spacing
			dy := float64(j) * spacing
			r2 := dx*dx + dy*dy
			if r2 < k.h2 {
				rho += k.poly6Sq(r2)
			}
		}
	}
	return rho
}

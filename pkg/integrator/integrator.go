package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
// Implementations only read shared state, so one integrator serves every worker;
// each worker passes its own sampler.
type Integrator interface {
	// RayColor estimates the radiance arriving along a primary camera ray
	RayColor(ray core.Ray, sampler core.Sampler) core.Vec3
}

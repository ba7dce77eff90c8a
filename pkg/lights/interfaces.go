package lights

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// LightSampler picks points on the emissive surfaces of a scene for next-event estimation
type LightSampler interface {
	// Sample returns a point on an emitter and the density of drawing it,
	// per unit area over all emissive surfaces. Without emitters it returns
	// a non-hit and pdf 0.
	Sample(sampler core.Sampler) (geometry.Intersection, float64)

	// TotalArea returns the summed area of the emitters
	TotalArea() float64

	// GetLightProbability returns the probability of choosing emitter i
	GetLightProbability(i int) float64
}

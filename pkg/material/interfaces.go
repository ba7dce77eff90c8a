package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Material is the capability set the shading estimator needs from a surface.
//
// Direction conventions: wi points toward the surface (the direction light travels
// when it arrives), wo points away from the surface toward the viewer or the previous
// path vertex. All directions and normals are unit length.
type Material interface {
	// HasEmission reports whether the surface is a light source
	HasEmission() bool

	// Emission returns the emitted radiance (zero for non-emitters)
	Emission() core.Vec3

	// Eval evaluates the BRDF for light arriving along wi and leaving along wo
	Eval(wi, wo, normal core.Vec3) core.Vec3

	// Sample draws a direction leaving the surface, from which incoming light is gathered.
	// The caller negates it to obtain the matching wi.
	Sample(wi, normal core.Vec3, sampler core.Sampler) core.Vec3

	// PDF returns the solid-angle density with which Sample produces -wi
	PDF(wi, wo, normal core.Vec3) float64
}

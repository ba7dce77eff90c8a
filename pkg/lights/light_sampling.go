package lights

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// AreaLightSampler selects emitters with probability proportional to their area.
// Combined with a uniform point on the chosen emitter, every point of the
// emissive surface is equally likely.
type AreaLightSampler struct {
	emitters []geometry.Object
	areas    geometry.AreaTable
}

// NewAreaLightSampler collects the emissive objects among objects
func NewAreaLightSampler(objects []geometry.Object) *AreaLightSampler {
	var emitters []geometry.Object
	for _, obj := range objects {
		if obj.HasEmit() {
			emitters = append(emitters, obj)
		}
	}
	return &AreaLightSampler{
		emitters: emitters,
		areas:    geometry.NewAreaTable(emitters),
	}
}

// Emitters returns the emissive objects in scene order
func (ls *AreaLightSampler) Emitters() []geometry.Object {
	return ls.emitters
}

// TotalArea implements LightSampler
func (ls *AreaLightSampler) TotalArea() float64 {
	return ls.areas.Total()
}

// GetLightProbability implements LightSampler
func (ls *AreaLightSampler) GetLightProbability(i int) float64 {
	if i < 0 || i >= len(ls.emitters) || ls.areas.Total() <= 0 {
		return 0
	}
	return ls.emitters[i].Area() / ls.areas.Total()
}

// Sample implements LightSampler. The object's own pdf is discarded: the
// point is uniform over the chosen emitter, so its density over the whole
// emissive surface is 1/TotalArea.
func (ls *AreaLightSampler) Sample(sampler core.Sampler) (geometry.Intersection, float64) {
	i := ls.areas.Pick(sampler.Get1D())
	if i < 0 {
		return geometry.NoHit(), 0
	}

	sample, _ := ls.emitters[i].Sample(sampler)
	return sample, 1.0 / ls.areas.Total()
}

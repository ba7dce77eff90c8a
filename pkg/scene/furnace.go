package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Furnace scene parameters. A diffuse sphere of albedo FurnaceAlbedo sits inside a
// shell emitting FurnaceRadiance everywhere, so every point of the sphere reflects
// exactly FurnaceAlbedo * FurnaceRadiance toward the camera.
const (
	FurnaceAlbedo   = 0.5
	FurnaceRadiance = 1.0
)

// NewFurnaceScene creates a closed scene with a known analytic solution
func NewFurnaceScene() *Scene {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 4),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       64,
		AspectRatio: 1.0,
		VFov:        30.0,
	}

	s := &Scene{
		CameraConfig:    config,
		BackgroundColor: core.NewVec3(0, 0, 0),
		SplitMethod:     geometry.SplitNaive,
		SamplingConfig: SamplingConfig{
			SamplesPerPixel: 16,
			MaxDepth:        50,
			RussianRoulette: 0.8,
		},
	}

	gray := material.NewLambertian(core.NewVec3(FurnaceAlbedo, FurnaceAlbedo, FurnaceAlbedo))
	s.Objects = append(s.Objects, geometry.NewSphere(core.NewVec3(0, 0, 0), 1, gray))

	// Negative radius: the shell's normals face inward, toward the sphere
	s.AddSphereLight(core.NewVec3(0, 0, 0), -10, core.NewVec3(FurnaceRadiance, FurnaceRadiance, FurnaceRadiance))

	return s
}

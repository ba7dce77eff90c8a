package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

var (
	testDiffuse = material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	testLight   = material.NewEmissive(core.NewVec3(4, 4, 4))
)

func approxVec(a, b core.Vec3, tol float64) bool {
	return a.Subtract(b).Length() <= tol
}

func inf() float64 {
	return math.Inf(1)
}

package geometry

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection
// It uses an internal BVH for intersection and samples triangles proportional to their area.
type TriangleMesh struct {
	triangles []Object          // Individual triangles as objects
	bvh       *BVH              // BVH for fast intersection
	bbox      core.AABB         // Overall bounding box
	areas     AreaTable         // Triangle selection for surface sampling
	material  material.Material // Material shared by all triangles
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Rotation *core.Vec3  // Optional rotation to apply to vertices
	Center   *core.Vec3  // Optional center point for rotation
	Split    SplitMethod // BVH split strategy for the mesh's own hierarchy
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices
// vertices: array of 3D points
// faces: array of triangle indices (each group of 3 indices forms a triangle)
// options: optional parameters (can be nil for basic mesh)
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("mesh has no faces")
	}

	workingVertices := vertices
	if options != nil && options.Rotation != nil {
		workingVertices = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			// Translate to center, rotate, then translate back
			if options.Center != nil {
				vertex = vertex.Subtract(*options.Center)
			}
			vertex = vertex.Rotate(*options.Rotation)
			if options.Center != nil {
				vertex = vertex.Add(*options.Center)
			}
			workingVertices[i] = vertex
		}
	}

	numTriangles := len(faces) / 3
	triangles := make([]Object, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, idx := range []int{i0, i1, i2} {
			if idx < 0 || idx >= len(workingVertices) {
				return nil, fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, idx, len(workingVertices))
			}
		}
		triangles[i] = NewTriangle(workingVertices[i0], workingVertices[i1], workingVertices[i2], mat)
	}

	split := SplitNaive
	if options != nil {
		split = options.Split
	}
	bvh := NewBVH(triangles, split)

	return &TriangleMesh{
		triangles: triangles,
		bvh:       bvh,
		bbox:      bvh.BoundingBox(),
		areas:     NewAreaTable(triangles),
		material:  mat,
	}, nil
}

// Intersect tests the ray against the mesh's BVH
func (tm *TriangleMesh) Intersect(ray core.Ray, tMin, tMax float64) Intersection {
	hit := tm.bvh.Intersect(ray, tMin, tMax)
	if hit.Happened {
		hit.Object = tm
	}
	return hit
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bbox
}

// Area returns the summed area of all triangles
func (tm *TriangleMesh) Area() float64 {
	return tm.areas.Total()
}

// HasEmit implements Object
func (tm *TriangleMesh) HasEmit() bool {
	return hasEmission(tm.material)
}

// Sample picks a triangle proportional to its area, then a point on it
func (tm *TriangleMesh) Sample(sampler core.Sampler) (Intersection, float64) {
	i := tm.areas.Pick(sampler.Get1D())
	if i < 0 {
		return NoHit(), 0
	}
	sample, _ := tm.triangles[i].Sample(sampler)
	sample.Object = tm
	return sample, 1.0 / tm.areas.Total()
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

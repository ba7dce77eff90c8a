package geometry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

// SplitMethod selects how BVH nodes are partitioned during construction
type SplitMethod int

const (
	// SplitNaive sorts centroids along the longest axis and splits at the median
	SplitNaive SplitMethod = iota
	// SplitSAH uses a binned surface area heuristic
	SplitSAH
)

// String implements fmt.Stringer
func (m SplitMethod) String() string {
	switch m {
	case SplitNaive:
		return "naive"
	case SplitSAH:
		return "sah"
	default:
		return fmt.Sprintf("SplitMethod(%d)", int(m))
	}
}

// ParseSplitMethod converts a config string into a SplitMethod
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "naive":
		return SplitNaive, nil
	case "sah":
		return SplitSAH, nil
	default:
		return SplitNaive, fmt.Errorf("unknown BVH split method %q", s)
	}
}

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Objects     []Object // Objects for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
// A built BVH is never modified, so concurrent queries are safe.
type BVH struct {
	Root   *BVHNode
	Split  SplitMethod
	Center core.Vec3 // Center of the scene bounds
	Radius float64   // Radius of a sphere enclosing the scene bounds
}

// Leaf threshold: if we have this many or fewer objects, store them in a leaf node
const leafThreshold = 8

// Number of buckets used by the SAH split
const sahBuckets = 12

// NewBVH constructs a BVH from a slice of objects
func NewBVH(objects []Object, split SplitMethod) *BVH {
	if len(objects) == 0 {
		return &BVH{Root: nil, Split: split}
	}

	// Partitioning reorders the slice; never touch the caller's
	objectsCopy := make([]Object, len(objects))
	copy(objectsCopy, objects)

	root := buildBVH(objectsCopy, split)
	center := root.BoundingBox.Center()

	return &BVH{
		Root:   root,
		Split:  split,
		Center: center,
		Radius: root.BoundingBox.Max.Subtract(center).Length(),
	}
}

// buildBVH recursively builds the hierarchy
func buildBVH(objects []Object, split SplitMethod) *BVHNode {
	boundingBox := objects[0].BoundingBox()
	centroidBounds := core.NewAABB(boundingBox.Center(), boundingBox.Center())
	for _, obj := range objects[1:] {
		box := obj.BoundingBox()
		boundingBox = boundingBox.Union(box)
		centroidBounds = centroidBounds.Union(core.NewAABB(box.Center(), box.Center()))
	}

	if len(objects) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Objects: objects}
	}

	axis := centroidBounds.LongestAxis()
	if centroidBounds.Max.Axis(axis) <= centroidBounds.Min.Axis(axis) {
		// All centroids coincide; no split can separate them
		return &BVHNode{BoundingBox: boundingBox, Objects: objects}
	}

	var left, right []Object
	if split == SplitSAH {
		left, right = partitionSAH(objects, axis, centroidBounds, boundingBox)
	}
	if len(left) == 0 || len(right) == 0 {
		left, right = partitionMedian(objects, axis)
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left, split),
		Right:       buildBVH(right, split),
	}
}

// partitionMedian sorts objects by centroid along axis and splits the slice in half
func partitionMedian(objects []Object, axis int) ([]Object, []Object) {
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].BoundingBox().Center().Axis(axis) < objects[j].BoundingBox().Center().Axis(axis)
	})
	mid := len(objects) / 2
	return objects[:mid], objects[mid:]
}

// partitionSAH buckets centroids along axis and picks the cheapest bucket boundary.
// Returns empty halves when no boundary beats keeping the objects together.
func partitionSAH(objects []Object, axis int, centroidBounds, bounds core.AABB) ([]Object, []Object) {
	type bucket struct {
		count int
		box   core.AABB
	}
	var buckets [sahBuckets]bucket

	minC := centroidBounds.Min.Axis(axis)
	extent := centroidBounds.Max.Axis(axis) - minC
	bucketOf := func(obj Object) int {
		b := int(sahBuckets * (obj.BoundingBox().Center().Axis(axis) - minC) / extent)
		return min(max(b, 0), sahBuckets-1)
	}

	for _, obj := range objects {
		b := bucketOf(obj)
		if buckets[b].count == 0 {
			buckets[b].box = obj.BoundingBox()
		} else {
			buckets[b].box = buckets[b].box.Union(obj.BoundingBox())
		}
		buckets[b].count++
	}

	parentArea := bounds.SurfaceArea()
	bestCost := math.Inf(1)
	bestSplit := -1
	for i := 0; i < sahBuckets-1; i++ {
		leftCount, rightCount := 0, 0
		var leftBox, rightBox core.AABB
		for j := 0; j <= i; j++ {
			leftBox, leftCount = accumulate(leftBox, leftCount, buckets[j].box, buckets[j].count)
		}
		for j := i + 1; j < sahBuckets; j++ {
			rightBox, rightCount = accumulate(rightBox, rightCount, buckets[j].box, buckets[j].count)
		}
		if leftCount == 0 || rightCount == 0 {
			continue
		}

		cost := 0.125 + (float64(leftCount)*leftBox.SurfaceArea()+float64(rightCount)*rightBox.SurfaceArea())/parentArea
		if cost < bestCost {
			bestCost = cost
			bestSplit = i
		}
	}

	if bestSplit < 0 {
		return nil, nil
	}

	var left, right []Object
	for _, obj := range objects {
		if bucketOf(obj) <= bestSplit {
			left = append(left, obj)
		} else {
			right = append(right, obj)
		}
	}
	return left, right
}

func accumulate(box core.AABB, count int, other core.AABB, otherCount int) (core.AABB, int) {
	if otherCount == 0 {
		return box, count
	}
	if count == 0 {
		return other, otherCount
	}
	return box.Union(other), count + otherCount
}

// Intersect returns the nearest hit along the ray within (tMin, tMax)
func (bvh *BVH) Intersect(ray core.Ray, tMin, tMax float64) Intersection {
	if bvh.Root == nil {
		return NoHit()
	}
	return bvh.intersectNode(bvh.Root, ray, tMin, tMax)
}

// intersectNode recursively tests ray intersection with BVH nodes
func (bvh *BVH) intersectNode(node *BVHNode, ray core.Ray, tMin, tMax float64) Intersection {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return NoHit()
	}

	closest := NoHit()
	closestSoFar := tMax

	if node.Objects != nil {
		for _, obj := range node.Objects {
			if hit := obj.Intersect(ray, tMin, closestSoFar); hit.Happened {
				closest = hit
				closestSoFar = hit.Distance
			}
		}
		return closest
	}

	for _, child := range []*BVHNode{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if hit := bvh.intersectNode(child, ray, tMin, closestSoFar); hit.Happened {
			closest = hit
			closestSoFar = hit.Distance
		}
	}

	return closest
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	if bvh.Root == nil {
		return bvhStats{}
	}

	stats := bvhStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.leafNodes > 0 {
		stats.avgDepth = stats.avgDepth / float64(stats.leafNodes)
	}

	return stats
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes    int
	leafNodes     int
	maxDepth      int
	avgDepth      float64
	totalObjects  int
	maxLeafLength int
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++
	stats.maxDepth = max(stats.maxDepth, depth)

	if node.Objects != nil {
		stats.leafNodes++
		stats.totalObjects += len(node.Objects)
		stats.maxLeafLength = max(stats.maxLeafLength, len(node.Objects))
		stats.avgDepth += float64(depth)
		return
	}

	if node.Left != nil {
		bvh.collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		bvh.collectStats(node.Right, depth+1, stats)
	}
}

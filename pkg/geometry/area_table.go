package geometry

import "sort"

// AreaTable selects one of several surfaces with probability proportional to its area
type AreaTable struct {
	cumulative []float64
	total      float64
}

// NewAreaTable records the running area sum of objects in order
func NewAreaTable(objects []Object) AreaTable {
	table := AreaTable{cumulative: make([]float64, len(objects))}
	for i, obj := range objects {
		table.total += obj.Area()
		table.cumulative[i] = table.total
	}
	return table
}

// Total returns the summed area
func (t AreaTable) Total() float64 {
	return t.total
}

// Pick maps u in [0,1) to the first index whose cumulative area exceeds u*Total,
// so zero-area entries are never picked. Returns -1 when every area is zero.
func (t AreaTable) Pick(u float64) int {
	if t.total <= 0 || len(t.cumulative) == 0 {
		return -1
	}
	target := u * t.total
	i := sort.Search(len(t.cumulative), func(i int) bool { return t.cumulative[i] > target })
	if i >= len(t.cumulative) {
		i = len(t.cumulative) - 1
	}
	return i
}

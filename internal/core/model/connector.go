package model

import (
	"errors"
	"fmt"
	"math"
)

// Connector is a single synaptic junction linking one presynaptic treenode to
// one or more postsynaptic treenodes. Any reference may be unknown.
type Connector struct {
	ID                int64      `json:"connector_id"`
	PresynapticTo     *NeuronID  `json:"presynaptic_to"`
	PresynapticNode   *NodeID    `json:"presynaptic_to_node"`
	PostsynapticTo    []NeuronID `json:"postsynaptic_to"`
	PostsynapticNodes []*NodeID  `json:"postsynaptic_to_node"`
}

// IsOutputOf reports whether skeleton owns the presynaptic side of c.
// Treenode is a skeleton node at its raw position.
type Treenode struct {
	ID       NodeID   `json:"id"`
	Skeleton NeuronID `json:"skeleton_id"`
	Position Point    `json:"position"`
}

func (c Connector) IsOutputOf(skeleton NeuronID) bool {
	return c.PresynapticTo != nil && *c.PresynapticTo == skeleton
}

var ErrInvalidResolution = errors.New("voxel resolution components must be positive")

// Resolution is the physical size of one voxel along x, y and z.
type Resolution [3]float64

// DefaultResolution matches the FANC CATMAID project.
var DefaultResolution = Resolution{4.3, 4.3, 45}

func (r Resolution) Validate() error {
	for i, v := range r {
		if !(v > 0) || math.IsInf(v, 1) {
			return fmt.Errorf("%w: axis %d is %v", ErrInvalidResolution, i, v)
		}
	}
	return nil
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point) Div(r Resolution) Point {
	return Point{X: p.X / r[0], Y: p.Y / r[1], Z: p.Z / r[2]}
}

// Coordinate spaces a table can be expressed in. Realigned tables carry the
// realigner's target name instead.
const (
	SpaceRaw   = "raw"
	SpaceVoxel = "voxel"
)

// CoordinateTable holds coordinates in a single space. A nil *CoordinateTable
// means the neuron had no connectors on that side.
type CoordinateTable struct {
	Space  string  `json:"space"`
	Points []Point `json:"points"`
}

func (t *CoordinateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

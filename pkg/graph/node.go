// Package graph defines the node/edge data model and the diagram store the
// canvas operates on. The store hands out mutable references; geometry code
// reads node geometry and, during drags, mutates positions in place.
package graph

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/google/uuid"

	"github.com/skeinview/skein/pkg/geom"
)

// Node is a positioned, sized, optionally rotated box in world coordinates.
type Node struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"` // degrees
	Visible  bool    `json:"visible"`
	Locked   bool    `json:"locked"`
}

// Default node dimensions for callers that create nodes without a size.
const (
	DefaultNodeWidth  = 100.0
	DefaultNodeHeight = 50.0
)

// NewNode creates a visible node centered at (x, y) with default size and a
// fresh identity.
func NewNode(label string, x, y float64) *Node {
	return &Node{
		ID:      uuid.NewString(),
		Label:   label,
		X:       x,
		Y:       y,
		Width:   DefaultNodeWidth,
		Height:  DefaultNodeHeight,
		Visible: true,
	}
}

// Center returns the node's center in world coordinates.
func (n *Node) Center() v2.Vec {
	return v2.Vec{X: n.X, Y: n.Y}
}

// Corners returns the node's four corners in world coordinates, rotated by
// the node's rotation about its center. Order: top-left, top-right,
// bottom-right, bottom-left.
func (n *Node) Corners() [4]v2.Vec {
	hw, hh := n.Width/2, n.Height/2
	c := n.Center()
	corners := [4]v2.Vec{
		{X: n.X - hw, Y: n.Y - hh},
		{X: n.X + hw, Y: n.Y - hh},
		{X: n.X + hw, Y: n.Y + hh},
		{X: n.X - hw, Y: n.Y + hh},
	}
	if n.Rotation != 0 {
		rad := geom.Radians(n.Rotation)
		for i := range corners {
			corners[i] = geom.Rotate(corners[i], rad, c)
		}
	}
	return corners
}

// ContainsPoint reports whether a world point lies inside the node's
// (possibly rotated) rectangle.
func (n *Node) ContainsPoint(p v2.Vec) bool {
	if n.Rotation != 0 {
		p = geom.Rotate(p, -geom.Radians(n.Rotation), n.Center())
	}
	return math.Abs(p.X-n.X) <= n.Width/2 && math.Abs(p.Y-n.Y) <= n.Height/2
}

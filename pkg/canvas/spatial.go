package canvas

import (
	"log"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/dhconnelly/rtreego"

	"github.com/skeinview/skein/pkg/graph"
)

// nodeEntry is the r-tree leaf for one node. The stored rect is the
// axis-aligned bound of the node's possibly rotated corners.
type nodeEntry struct {
	id   string
	rect rtreego.Rect
}

func (e *nodeEntry) Bounds() rtreego.Rect { return e.rect }

// SpatialIndex accelerates "which nodes are in this region" queries for
// box selection and viewport culling. It must be told about node
// mutations; a stale entry returns wrong candidates, not crashes, since
// callers re-verify against live geometry.
type SpatialIndex struct {
	diagram *graph.Diagram
	tree    *rtreego.Rtree
	entries map[string]*nodeEntry
}

// NewSpatialIndex builds an index over the diagram's current nodes.
func NewSpatialIndex(d *graph.Diagram) *SpatialIndex {
	s := &SpatialIndex{diagram: d}
	s.Rebuild()
	return s
}

// Rebuild discards and reconstructs the whole index.
func (s *SpatialIndex) Rebuild() {
	s.tree = rtreego.NewTree(2, 4, 16)
	s.entries = make(map[string]*nodeEntry)
	for _, n := range s.diagram.Nodes() {
		s.Update(n.ID)
	}
}

// Update refreshes one node's entry after a move, resize, or rotation.
// Unknown IDs fall out of the index.
func (s *SpatialIndex) Update(id string) {
	if old, ok := s.entries[id]; ok {
		s.tree.Delete(old)
		delete(s.entries, id)
	}
	n := s.diagram.Node(id)
	if n == nil {
		return
	}
	rect, err := nodeRect(n)
	if err != nil {
		log.Printf("spatial: cannot index node %s: %v", id, err)
		return
	}
	entry := &nodeEntry{id: id, rect: rect}
	s.entries[id] = entry
	s.tree.Insert(entry)
}

// Remove drops a deleted node from the index.
func (s *SpatialIndex) Remove(id string) {
	if old, ok := s.entries[id]; ok {
		s.tree.Delete(old)
		delete(s.entries, id)
	}
}

// NodesInRect returns the nodes whose bounds intersect the axis-aligned
// world rectangle spanned by a and b (any corner order).
func (s *SpatialIndex) NodesInRect(a, b v2.Vec) []*graph.Node {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	rect, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)},
	)
	if err != nil {
		log.Printf("spatial: bad query rect: %v", err)
		return nil
	}

	var out []*graph.Node
	for _, hit := range s.tree.SearchIntersect(rect) {
		if n := s.diagram.Node(hit.(*nodeEntry).id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func nodeRect(n *graph.Node) (rtreego.Rect, error) {
	corners := n.Corners()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		minX = math.Min(minX, c.X)
		minY = math.Min(minY, c.Y)
		maxX = math.Max(maxX, c.X)
		maxY = math.Max(maxY, c.Y)
	}
	return rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)},
	)
}

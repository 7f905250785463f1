package graph

import "fmt"

// Direction constrains edge orientation for the whole diagram.
type Direction int

const (
	AnyDirection Direction = iota
	DirectedOnly
	UndirectedOnly
)

func (dir Direction) String() string {
	switch dir {
	case DirectedOnly:
		return "directed-only"
	case UndirectedOnly:
		return "undirected-only"
	default:
		return "any"
	}
}

// Restrictions are the graph-level policies consulted before committing a
// new edge. A violation is the one class of failure surfaced to the user
// as an explicit message.
type Restrictions struct {
	AllowSelfLoops  bool
	AllowMultiEdges bool
	Direction       Direction
}

// DefaultRestrictions permits everything.
func DefaultRestrictions() Restrictions {
	return Restrictions{AllowSelfLoops: true, AllowMultiEdges: true}
}

// PolicyViolation is returned when an edge creation would break a
// restriction. Its message is suitable for direct display.
type PolicyViolation struct {
	Message string
}

func (v *PolicyViolation) Error() string { return v.Message }

// Check validates a prospective edge against the restrictions and the
// current diagram. It returns a *PolicyViolation on failure.
func (r Restrictions) Check(d *Diagram, e *Edge) error {
	if !r.AllowSelfLoops && e.IsSelfLoop() {
		return &PolicyViolation{Message: "self-loops are not allowed in this graph"}
	}
	if !r.AllowMultiEdges && len(d.EdgesBetween(e.SourceID, e.TargetID)) > 0 {
		return &PolicyViolation{Message: "an edge between these nodes already exists"}
	}
	switch r.Direction {
	case DirectedOnly:
		if !e.Directed {
			return &PolicyViolation{Message: fmt.Sprintf("this graph is %s", r.Direction)}
		}
	case UndirectedOnly:
		if e.Directed {
			return &PolicyViolation{Message: fmt.Sprintf("this graph is %s", r.Direction)}
		}
	}
	return nil
}

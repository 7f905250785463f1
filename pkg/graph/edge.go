package graph

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/skeinview/skein/pkg/curve"
)

// Side identifies one end of an edge.
type Side int

const (
	SourceSide Side = iota
	TargetSide
)

func (s Side) String() string {
	if s == SourceSide {
		return "source"
	}
	return "target"
}

// Edge connects two nodes and carries everything needed to render it as a
// parametric curve. Control points and custom endpoints are stored in world
// coordinates, never screen coordinates.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Label    string `json:"label,omitempty"`
	Directed bool   `json:"directed"`

	Kind          curve.Kind      `json:"rendering_type"`
	ControlPoints []v3.Vec        `json:"control_points,omitempty"`
	Segments      []curve.Segment `json:"curve_segments,omitempty"`
	FreeformPath  []v3.Vec        `json:"freeform_points,omitempty"`

	// CustomPosition is set once a user has manually edited control points;
	// it protects them from being cleared on pure re-renders.
	CustomPosition bool `json:"custom_position"`

	// CustomEndpoints overrides the default nearest-face anchor per side.
	CustomEndpoints map[Side]v2.Vec `json:"custom_endpoints,omitempty"`

	// ArrowPosition is the parameter along the rendered curve where the
	// arrowhead sits. Always within [0,1] at the data level.
	ArrowPosition float64 `json:"arrow_position"`

	// Connection points for hyperedge-style attachment dots, kept ordered
	// From <= To.
	FromConnection float64 `json:"from_connection_point"`
	ToConnection   float64 `json:"to_connection_point"`

	Visible bool `json:"visible"`
	Locked  bool `json:"locked"`
}

// NewEdge creates a directed, visible edge with a fresh identity and the
// arrow at the curve midpoint.
func NewEdge(sourceID, targetID string) *Edge {
	return &Edge{
		ID:             uuid.NewString(),
		SourceID:       sourceID,
		TargetID:       targetID,
		Directed:       true,
		ArrowPosition:  0.5,
		FromConnection: 0.25,
		ToConnection:   0.75,
		Visible:        true,
	}
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e *Edge) IsSelfLoop() bool {
	return e.SourceID == e.TargetID && e.SourceID != ""
}

// Curve assembles the evaluator input for this edge.
func (e *Edge) Curve() curve.Curve {
	return curve.Curve{
		Kind:          e.Kind,
		ControlPoints: e.ControlPoints,
		Segments:      e.Segments,
		Path:          e.FreeformPath,
	}
}

// SetArrowPosition clamps to the full data-level range [0,1]. The
// interaction layer applies its narrower drag clamp before calling this.
func (e *Edge) SetArrowPosition(t float64) {
	e.ArrowPosition = lo.Clamp(t, 0.0, 1.0)
}

// SetFromConnection clamps and keeps the from point at or before the to
// point.
func (e *Edge) SetFromConnection(t float64) {
	t = lo.Clamp(t, 0.0, 1.0)
	e.FromConnection = min(t, e.ToConnection)
}

// SetToConnection clamps and keeps the to point at or after the from point.
func (e *Edge) SetToConnection(t float64) {
	t = lo.Clamp(t, 0.0, 1.0)
	e.ToConnection = max(t, e.FromConnection)
}

// ControlPoint returns the control point at index i, reporting whether the
// index was valid. Callers fall back rather than panic on stale indices.
func (e *Edge) ControlPoint(i int) (v3.Vec, bool) {
	if i < 0 || i >= len(e.ControlPoints) {
		return v3.Vec{}, false
	}
	return e.ControlPoints[i], true
}

// CustomEndpoint returns the explicit anchor override for a side, if set.
func (e *Edge) CustomEndpoint(side Side) (v2.Vec, bool) {
	p, ok := e.CustomEndpoints[side]
	return p, ok
}

// SetCustomEndpoint records an explicit world-space anchor for a side.
func (e *Edge) SetCustomEndpoint(side Side, p v2.Vec) {
	if e.CustomEndpoints == nil {
		e.CustomEndpoints = make(map[Side]v2.Vec, 2)
	}
	e.CustomEndpoints[side] = p
}

// ClearCustomEndpoint removes the override for a side.
func (e *Edge) ClearCustomEndpoint(side Side) {
	delete(e.CustomEndpoints, side)
}

// Copy returns a deep copy of the edge with a fresh identity.
func (e *Edge) Copy() *Edge {
	dup := *e
	dup.ID = uuid.NewString()
	dup.ControlPoints = append([]v3.Vec(nil), e.ControlPoints...)
	dup.FreeformPath = append([]v3.Vec(nil), e.FreeformPath...)
	dup.Segments = make([]curve.Segment, len(e.Segments))
	for i, s := range e.Segments {
		s.ControlPoints = append([]v3.Vec(nil), s.ControlPoints...)
		dup.Segments[i] = s
	}
	if e.CustomEndpoints != nil {
		dup.CustomEndpoints = make(map[Side]v2.Vec, len(e.CustomEndpoints))
		for k, v := range e.CustomEndpoints {
			dup.CustomEndpoints[k] = v
		}
	}
	return &dup
}

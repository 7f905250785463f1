package canvas

import (
	"log"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/geom"
	"github.com/skeinview/skein/pkg/graph"
)

// Mode is the single active interaction state. Exactly one mode holds at
// a time; pointer events only touch the state belonging to the active
// mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragNodes
	ModePan
	ModeDragControlPoint
	ModeDragArrow
	ModeDragEndpoint
	ModeDrawEdge
	ModeDrawFreeform
	ModeRotateWorld
	ModeRotateElement
	ModeBoxSelect
)

// Tool selects what a pointer-down on empty space or a node begins.
type Tool int

const (
	ToolSelect Tool = iota
	ToolDrawEdge
	ToolDrawFreeform
	ToolRotate
)

// Button identifies which pointer button went down.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers are the keyboard modifiers active during a pointer event.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// GridAnchor picks which point of a node snaps to the grid: offsets in
// half-extents, so {0,0} is the center and {-1,-1} the top-left corner.
type GridAnchor struct {
	X, Y float64
}

// GridSettings control snap-on-release for node drags.
type GridSettings struct {
	Enabled bool
	Size    float64
	Anchor  GridAnchor
}

// The arrow marker may live anywhere in [0,1] in the data model, but an
// interactive drag stops short of the endpoints so the marker never
// disappears under an endpoint dot.
const (
	arrowDragMin = 0.1
	arrowDragMax = 0.9
)

// Controller is the pointer-event state machine that turns clicks and
// drags into diagram and view mutations. All methods run on the event
// thread.
type Controller struct {
	diagram      *graph.Diagram
	geometry     *Geometry
	transform    *Transform
	hit          *HitTester
	zoomer       *Zoomer
	Restrictions graph.Restrictions
	Grid         GridSettings
	Tool         Tool
	DefaultKind  curve.Kind

	// Index, when set, prefilters box-selection candidates. The exact
	// polygon test still runs on every candidate.
	Index *SpatialIndex

	// OnRepaint fires after any visible change. OnGraphModified fires
	// only when persisted state changed; pure view changes (pan, zoom,
	// rotate) repaint without marking the graph dirty.
	OnRepaint       func()
	OnGraphModified func()
	// OnMessage surfaces policy violations to the user.
	OnMessage func(string)

	mode          Mode
	selectedNodes map[string]bool
	selectedEdges map[string]bool

	lastScreen v2.Vec

	// drag-control-point / drag-arrow / drag-endpoint state
	activeEdge   *graph.Edge
	activeCP     int
	activeSide   graph.Side
	hadCustom    bool
	savedCustom  v2.Vec
	savedArrow   float64

	// draw-edge / draw-freeform state
	drawFromNode string
	previewPoint v2.Vec
	freeformPath []v3.Vec

	// rotation state
	rotateStart     float64
	pointerStartDeg float64
	rotateNode      string

	// box-select state
	boxStart v2.Vec
	boxEnd   v2.Vec
}

// NewController wires the interaction state machine over a diagram, its
// geometry, and the view transform.
func NewController(d *graph.Diagram, g *Geometry, t *Transform, h *HitTester, z *Zoomer) *Controller {
	return &Controller{
		diagram:       d,
		geometry:      g,
		transform:     t,
		hit:           h,
		zoomer:        z,
		Restrictions:  graph.DefaultRestrictions(),
		Grid:          GridSettings{Size: 20},
		selectedNodes: make(map[string]bool),
		selectedEdges: make(map[string]bool),
	}
}

// Mode returns the currently active interaction mode.
func (c *Controller) Mode() Mode { return c.mode }

// Preview returns the live edge-drawing preview for the renderer: the
// origin node ID and the current world endpoint. ok is false outside a
// drawing gesture.
func (c *Controller) Preview() (fromNode string, to v2.Vec, ok bool) {
	if c.mode != ModeDrawEdge && c.mode != ModeDrawFreeform {
		return "", v2.Vec{}, false
	}
	return c.drawFromNode, c.previewPoint, true
}

// FreeformPreview returns the accumulated path during freeform drawing.
func (c *Controller) FreeformPreview() []v3.Vec {
	if c.mode != ModeDrawFreeform {
		return nil
	}
	return c.freeformPath
}

// BoxRect returns the active selection rectangle in screen coordinates.
func (c *Controller) BoxRect() (a, b v2.Vec, ok bool) {
	if c.mode != ModeBoxSelect {
		return a, b, false
	}
	return c.boxStart, c.boxEnd, true
}

// SelectedNodes returns the selected nodes in diagram order.
func (c *Controller) SelectedNodes() []*graph.Node {
	var out []*graph.Node
	for _, n := range c.diagram.Nodes() {
		if c.selectedNodes[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// SelectedEdges returns the selected edges in diagram order.
func (c *Controller) SelectedEdges() []*graph.Edge {
	var out []*graph.Edge
	for _, e := range c.diagram.Edges() {
		if c.selectedEdges[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// ClearSelection deselects everything.
func (c *Controller) ClearSelection() {
	c.selectedNodes = make(map[string]bool)
	c.selectedEdges = make(map[string]bool)
}

func (c *Controller) repaint() {
	if c.OnRepaint != nil {
		c.OnRepaint()
	}
}

func (c *Controller) modified() {
	if c.OnGraphModified != nil {
		c.OnGraphModified()
	}
	c.repaint()
}

func (c *Controller) message(s string) {
	if c.OnMessage != nil {
		c.OnMessage(s)
	}
}

// PointerDown routes a button press through the hit-test cascade and
// enters the matching mode. Priority: arrow marker, control point,
// endpoint dot, node, edge body, empty space.
func (c *Controller) PointerDown(screen v2.Vec, btn Button, mods Modifiers) {
	if c.mode != ModeIdle {
		// A second press mid-gesture aborts cleanly rather than nesting.
		c.Cancel()
	}
	c.lastScreen = screen

	if btn == ButtonMiddle {
		c.mode = ModePan
		return
	}

	switch c.Tool {
	case ToolDrawEdge, ToolDrawFreeform:
		c.beginDraw(screen)
		return
	case ToolRotate:
		c.beginRotate(screen)
		return
	}

	for _, e := range c.SelectedEdges() {
		if c.hit.HitArrowMarker(e, screen) {
			c.mode = ModeDragArrow
			c.activeEdge = e
			c.savedArrow = e.ArrowPosition
			return
		}
		if i := c.hit.HitControlPoint(e, screen); i >= 0 {
			c.mode = ModeDragControlPoint
			c.activeEdge = e
			c.activeCP = i
			return
		}
		if side, ok := c.hit.HitEndpointDot(e, screen); ok {
			c.mode = ModeDragEndpoint
			c.activeEdge = e
			c.activeSide = side
			c.savedCustom, c.hadCustom = e.CustomEndpoint(side)
			return
		}
	}

	if n := c.hit.HitNode(screen); n != nil {
		if n.Locked {
			return
		}
		if !c.selectedNodes[n.ID] {
			if !mods.Shift {
				c.ClearSelection()
			}
			c.selectedNodes[n.ID] = true
		}
		c.mode = ModeDragNodes
		c.repaint()
		return
	}

	if e := c.hit.HitAnyEdge(screen); e != nil {
		if !mods.Shift {
			c.ClearSelection()
		}
		c.selectedEdges[e.ID] = true
		c.mode = ModeIdle
		c.repaint()
		return
	}

	if !mods.Shift {
		c.ClearSelection()
	}
	c.mode = ModeBoxSelect
	c.boxStart = screen
	c.boxEnd = screen
	c.repaint()
}

// PointerMove advances the active mode.
func (c *Controller) PointerMove(screen v2.Vec) {
	defer func() { c.lastScreen = screen }()

	switch c.mode {
	case ModePan:
		if c.zoomer != nil && c.zoomer.Active() {
			return
		}
		c.transform.PanBy(screen.Sub(c.lastScreen))
		c.repaint()

	case ModeDragNodes:
		d := c.transform.ScreenToWorld(screen).Sub(c.transform.ScreenToWorld(c.lastScreen))
		c.moveSelectedNodes(d)
		c.repaint()

	case ModeDragControlPoint:
		p := c.transform.ScreenToWorld(screen)
		if !c.geometry.SetControlPoint(c.activeEdge, c.activeCP, p) {
			c.reset()
			return
		}
		c.repaint()

	case ModeDragArrow:
		t, _ := c.hit.NearestT(c.activeEdge, screen)
		c.activeEdge.SetArrowPosition(math.Max(arrowDragMin, math.Min(arrowDragMax, t)))
		c.repaint()

	case ModeDragEndpoint:
		c.activeEdge.SetCustomEndpoint(c.activeSide, c.transform.ScreenToWorld(screen))
		c.repaint()

	case ModeDrawEdge:
		c.previewPoint = c.transform.ScreenToWorld(screen)
		c.repaint()

	case ModeDrawFreeform:
		p := c.transform.ScreenToWorld(screen)
		c.previewPoint = p
		c.freeformPath = append(c.freeformPath, v3.Vec{X: p.X, Y: p.Y})
		c.repaint()

	case ModeRotateWorld:
		c.transform.SetWorldRotation(c.rotateStart + c.pointerAngle(screen, c.transform.ViewportCenter()) - c.pointerStartDeg)
		c.repaint()

	case ModeRotateElement:
		n := c.diagram.Node(c.rotateNode)
		if n == nil {
			log.Printf("interaction: rotated node %s vanished mid-drag", c.rotateNode)
			c.reset()
			return
		}
		center := c.transform.WorldToScreen(n.Center())
		n.Rotation = math.Mod(c.rotateStart+c.pointerAngle(screen, center)-c.pointerStartDeg, 360)
		c.geometry.NodeRotated(n.ID)
		c.repaint()

	case ModeBoxSelect:
		c.boxEnd = screen
		c.repaint()
	}
}

// PointerUp commits the active mode's result and returns to idle.
func (c *Controller) PointerUp(screen v2.Vec) {
	switch c.mode {
	case ModeDragNodes:
		c.snapSelectedNodes()
		c.modified()

	case ModeDragControlPoint, ModeDragArrow, ModeDragEndpoint:
		if c.mode == ModeDragEndpoint {
			c.commitEndpoint(screen)
		}
		c.modified()

	case ModeDrawEdge:
		c.commitEdge(screen, nil)

	case ModeDrawFreeform:
		c.commitEdge(screen, c.freeformPath)

	case ModeRotateElement:
		c.modified()

	case ModeBoxSelect:
		c.boxEnd = screen
		c.commitBoxSelection()
		c.repaint()

	case ModePan, ModeRotateWorld:
		c.repaint()
	}
	c.reset()
}

// Cancel aborts the in-flight gesture, restoring what can be restored.
// Called on capture loss (window deactivation, drag interrupted by the
// platform), so it must leave no partial state behind.
func (c *Controller) Cancel() {
	switch c.mode {
	case ModeDragArrow:
		c.activeEdge.ArrowPosition = c.savedArrow
	case ModeDragEndpoint:
		if c.hadCustom {
			c.activeEdge.SetCustomEndpoint(c.activeSide, c.savedCustom)
		} else {
			c.activeEdge.ClearCustomEndpoint(c.activeSide)
		}
	}
	c.reset()
	c.repaint()
}

func (c *Controller) reset() {
	c.mode = ModeIdle
	c.activeEdge = nil
	c.activeCP = -1
	c.hadCustom = false
	c.drawFromNode = ""
	c.freeformPath = nil
	c.rotateNode = ""
	c.boxStart = v2.Vec{}
	c.boxEnd = v2.Vec{}
}

func (c *Controller) beginDraw(screen v2.Vec) {
	n := c.hit.HitNode(screen)
	if n == nil {
		return
	}
	c.drawFromNode = n.ID
	c.previewPoint = c.transform.ScreenToWorld(screen)
	if c.Tool == ToolDrawFreeform {
		c.mode = ModeDrawFreeform
		c.freeformPath = c.freeformPath[:0]
	} else {
		c.mode = ModeDrawEdge
	}
}

func (c *Controller) beginRotate(screen v2.Vec) {
	if n := c.hit.HitNode(screen); n != nil {
		c.mode = ModeRotateElement
		c.rotateNode = n.ID
		c.rotateStart = n.Rotation
		c.pointerStartDeg = c.pointerAngle(screen, c.transform.WorldToScreen(n.Center()))
		return
	}
	c.mode = ModeRotateWorld
	c.rotateStart = c.transform.Rotation()
	c.pointerStartDeg = c.pointerAngle(screen, c.transform.ViewportCenter())
}

func (c *Controller) pointerAngle(screen, center v2.Vec) float64 {
	d := screen.Sub(center)
	return math.Atan2(d.Y, d.X) * 180 / math.Pi
}

func (c *Controller) moveSelectedNodes(d v2.Vec) {
	moved := make(map[string]v2.Vec)
	for _, n := range c.SelectedNodes() {
		if n.Locked {
			continue
		}
		n.X += d.X
		n.Y += d.Y
		moved[n.ID] = d
	}
	if len(moved) > 0 {
		c.geometry.NodesMoved(moved)
	}
}

// snapSelectedNodes applies grid snapping once, on release. Snapping
// during the drag makes motion jerky, so positions follow the cursor
// freely until commit.
func (c *Controller) snapSelectedNodes() {
	if !c.Grid.Enabled || c.Grid.Size <= 0 {
		return
	}
	moved := make(map[string]v2.Vec)
	for _, n := range c.SelectedNodes() {
		anchor := v2.Vec{
			X: n.X + c.Grid.Anchor.X*n.Width/2,
			Y: n.Y + c.Grid.Anchor.Y*n.Height/2,
		}
		snapped := v2.Vec{
			X: math.Round(anchor.X/c.Grid.Size) * c.Grid.Size,
			Y: math.Round(anchor.Y/c.Grid.Size) * c.Grid.Size,
		}
		d := snapped.Sub(anchor)
		if d.X == 0 && d.Y == 0 {
			continue
		}
		n.X += d.X
		n.Y += d.Y
		moved[n.ID] = d
	}
	if len(moved) > 0 {
		c.geometry.NodesMoved(moved)
	}
}

// commitEndpoint finishes an endpoint drag. Dropping the endpoint back
// inside its own node reverts to automatic boundary anchoring.
func (c *Controller) commitEndpoint(screen v2.Vec) {
	var nodeID string
	if c.activeSide == graph.SourceSide {
		nodeID = c.activeEdge.SourceID
	} else {
		nodeID = c.activeEdge.TargetID
	}
	n := c.diagram.Node(nodeID)
	if n != nil && n.ContainsPoint(c.transform.ScreenToWorld(screen)) {
		c.activeEdge.ClearCustomEndpoint(c.activeSide)
	}
}

// commitEdge finishes edge drawing: a release over a node creates the
// edge, subject to the graph restrictions; a release over empty space
// cancels silently.
func (c *Controller) commitEdge(screen v2.Vec, path []v3.Vec) {
	target := c.hit.HitNode(screen)
	if target == nil || c.drawFromNode == "" {
		c.repaint()
		return
	}

	e := graph.NewEdge(c.drawFromNode, target.ID)
	if err := c.Restrictions.Check(c.diagram, e); err != nil {
		c.message(err.Error())
		c.repaint()
		return
	}

	if path != nil {
		e.Kind = curve.Freeform
		e.FreeformPath = append([]v3.Vec(nil), path...)
	}
	c.diagram.AddEdge(e)
	c.geometry.SetEdgeKind(e, firstNonFreeform(e.Kind, c.DefaultKind))
	c.modified()
}

func firstNonFreeform(current, fallback curve.Kind) curve.Kind {
	if current == curve.Freeform {
		return current
	}
	return fallback
}

// commitBoxSelection selects every node and edge whose world geometry
// intersects the dragged rectangle. The four screen corners are each
// inverse-transformed on their own, so under view rotation the world
// quad is the true shape the user saw.
func (c *Controller) commitBoxSelection() {
	corners := []v2.Vec{
		c.transform.ScreenToWorld(c.boxStart),
		c.transform.ScreenToWorld(v2.Vec{X: c.boxEnd.X, Y: c.boxStart.Y}),
		c.transform.ScreenToWorld(c.boxEnd),
		c.transform.ScreenToWorld(v2.Vec{X: c.boxStart.X, Y: c.boxEnd.Y}),
	}

	candidates := c.diagram.Nodes()
	if c.Index != nil {
		lo := corners[0]
		hi := corners[0]
		for _, p := range corners[1:] {
			lo.X = math.Min(lo.X, p.X)
			lo.Y = math.Min(lo.Y, p.Y)
			hi.X = math.Max(hi.X, p.X)
			hi.Y = math.Max(hi.Y, p.Y)
		}
		candidates = c.Index.NodesInRect(lo, hi)
	}
	for _, n := range candidates {
		if !n.Visible {
			continue
		}
		nc := n.Corners()
		if geom.PolygonsIntersect(corners, nc[:]) {
			c.selectedNodes[n.ID] = true
		}
	}
	for _, e := range c.diagram.Edges() {
		if !e.Visible {
			continue
		}
		if c.edgeInPolygon(e, corners) {
			c.selectedEdges[e.ID] = true
		}
	}
}

func (c *Controller) edgeInPolygon(e *graph.Edge, poly []v2.Vec) bool {
	src, dst := c.geometry.Anchors(e)
	cv := e.Curve()
	const samples = 20
	prev := cv.Eval(src, dst, 0)
	for i := 1; i <= samples; i++ {
		p := cv.Eval(src, dst, float64(i)/samples)
		if geom.PointInPolygon(p, poly) || geom.PointInPolygon(prev, poly) {
			return true
		}
		for j := range poly {
			if geom.SegmentsIntersect(prev, p, poly[j], poly[(j+1)%len(poly)]) {
				return true
			}
		}
		prev = p
	}
	return false
}

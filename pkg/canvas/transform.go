// Package canvas holds the interactive geometry layer of the editor: the
// world/screen coordinate transform, edge anchoring and control-point
// seeding, hit-testing, and the pointer interaction state machine. All
// state here is confined to the event thread.
package canvas

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/samber/lo"

	"github.com/skeinview/skein/pkg/geom"
)

// Zoom bounds. Requests outside the range are clamped, never rejected.
const (
	MinZoom = 0.01
	MaxZoom = 30.0
)

// Transform maps between world coordinates (where the diagram lives) and
// screen coordinates (where pixels are drawn and pointer events arrive).
//
// The forward mapping scales by the zoom, rotates by the world rotation,
// then translates by viewport center plus pan. Geometry is always stored
// in world coordinates; screen positions are derived on demand.
type Transform struct {
	zoom     float64
	pan      v2.Vec
	rotation float64 // degrees, kept in [0,360)

	viewportW float64
	viewportH float64
}

// NewTransform creates an identity transform for the given viewport size.
func NewTransform(viewportW, viewportH float64) *Transform {
	return &Transform{
		zoom:      1.0,
		viewportW: viewportW,
		viewportH: viewportH,
	}
}

// SetViewport updates the viewport size. The pan offset is relative to the
// viewport center, so resizing keeps the view centered on the same world
// point.
func (t *Transform) SetViewport(w, h float64) {
	t.viewportW = w
	t.viewportH = h
}

// Zoom returns the current zoom scalar.
func (t *Transform) Zoom() float64 { return t.zoom }

// Pan returns the current pan offset in screen pixels.
func (t *Transform) Pan() v2.Vec { return t.pan }

// Rotation returns the world rotation in degrees, in [0,360).
func (t *Transform) Rotation() float64 { return t.rotation }

// ViewportCenter returns the center of the viewport in screen coordinates.
func (t *Transform) ViewportCenter() v2.Vec {
	return v2.Vec{X: t.viewportW / 2, Y: t.viewportH / 2}
}

// SetZoom clamps and stores a new zoom without adjusting pan. Most callers
// want ZoomAtPoint instead.
func (t *Transform) SetZoom(z float64) {
	t.zoom = lo.Clamp(z, MinZoom, MaxZoom)
}

// SetPan replaces the pan offset.
func (t *Transform) SetPan(p v2.Vec) { t.pan = p }

// PanBy shifts the view by a screen-space delta.
func (t *Transform) PanBy(d v2.Vec) { t.pan = t.pan.Add(d) }

// SetWorldRotation stores the rotation, wrapped into [0,360).
func (t *Transform) SetWorldRotation(deg float64) {
	t.rotation = math.Mod(deg, 360)
	if t.rotation < 0 {
		t.rotation += 360
	}
}

// RotateBy adds a delta to the world rotation.
func (t *Transform) RotateBy(deg float64) {
	t.SetWorldRotation(t.rotation + deg)
}

// WorldToScreen maps a world point to screen pixels: scale by zoom, rotate
// by the world rotation, translate by viewport center plus pan.
func (t *Transform) WorldToScreen(w v2.Vec) v2.Vec {
	p := w.MulScalar(t.zoom)
	if t.rotation != 0 {
		p = geom.RotateVec(p, geom.Radians(t.rotation))
	}
	return p.Add(t.ViewportCenter()).Add(t.pan)
}

// ScreenToWorld is the exact inverse of WorldToScreen: untranslate,
// unrotate, unscale.
func (t *Transform) ScreenToWorld(s v2.Vec) v2.Vec {
	p := s.Sub(t.ViewportCenter()).Sub(t.pan)
	if t.rotation != 0 {
		p = geom.RotateVec(p, -geom.Radians(t.rotation))
	}
	return p.DivScalar(t.zoom)
}

// TransformDirection maps a world-space direction vector to screen space.
// Directions scale and rotate but never translate, so this is what arrow
// heads and tangent markers use.
func (t *Transform) TransformDirection(d v2.Vec) v2.Vec {
	p := d.MulScalar(t.zoom)
	if t.rotation != 0 {
		p = geom.RotateVec(p, geom.Radians(t.rotation))
	}
	return p
}

// ZoomAtPoint multiplies the zoom by factor, clamped to the zoom bounds,
// and recomputes the pan so the world point under the anchor screen point
// stays put. If clamping leaves the zoom unchanged the call is a no-op so
// the pan is not spuriously recomputed.
//
// The pan update is applied in one closed-form step. Letting r be the zoom
// ratio and d the anchor's offset from the viewport center,
//
//	pan' = pan*r + (1-r)*d
//
// Incremental corrections accumulate rounding drift over long wheel
// gestures, so the formula must stay direct.
func (t *Transform) ZoomAtPoint(factor float64, anchor v2.Vec) {
	newZoom := lo.Clamp(t.zoom*factor, MinZoom, MaxZoom)
	if newZoom == t.zoom {
		return
	}
	r := newZoom / t.zoom
	d := anchor.Sub(t.ViewportCenter())
	t.pan = t.pan.MulScalar(r).Add(d.MulScalar(1 - r))
	t.zoom = newZoom
}

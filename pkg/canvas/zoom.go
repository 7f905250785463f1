package canvas

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Wheel coalescing windows. Applying every wheel tick through the
// zoom-at-point formula compounds rounding error into visible drift, so
// ticks accumulate a log-zoom delta and a single application lands per
// burst. The cooldown keeps trackpad pan events from interleaving with a
// zoom gesture.
const (
	zoomDebounceDelay = 12 * time.Millisecond
	zoomPanCooldown   = 150 * time.Millisecond
)

// Zoomer coalesces rapid zoom-wheel events into one transform update.
// Wheel events accumulate a logarithmic zoom delta; each event reschedules
// a single deferred notification, so a burst of N ticks produces exactly
// one pending zoom. The transform is only ever touched by Flush, which the
// host calls on the event thread.
type Zoomer struct {
	transform *Transform
	debounced func(func())
	onPending func()

	// The deferred notification runs on the debounce timer goroutine, so
	// the accumulator needs guarding even though the canvas itself is
	// single-threaded.
	mu     sync.Mutex
	lnZoom float64
	anchor v2.Vec

	lastEvent atomic.Int64
}

// NewZoomer creates a coalescer over the transform. onPending fires once
// per coalesced burst, on the debounce timer goroutine; the host relays it
// to the event thread and calls Flush there. A nil onPending leaves the
// accumulated zoom for the next Flush.
func NewZoomer(t *Transform, onPending func()) *Zoomer {
	return &Zoomer{
		transform: t,
		debounced: debounce.New(zoomDebounceDelay),
		onPending: onPending,
	}
}

// Wheel records one zoom event at the given screen anchor. factor is the
// per-tick multiplier (e.g. 1.1 for a wheel-up tick).
func (z *Zoomer) Wheel(factor float64, anchor v2.Vec) {
	if factor <= 0 {
		return
	}
	z.lastEvent.Store(time.Now().UnixNano())

	z.mu.Lock()
	z.lnZoom += math.Log(factor)
	z.anchor = anchor
	z.mu.Unlock()

	z.debounced(z.notify)
}

func (z *Zoomer) notify() {
	if z.onPending != nil {
		z.onPending()
	}
}

// Flush applies the accumulated zoom to the transform and reports whether
// anything landed. It must run on the event thread, like every other
// transform mutation.
func (z *Zoomer) Flush() bool {
	z.mu.Lock()
	ln := z.lnZoom
	anchor := z.anchor
	z.lnZoom = 0
	z.mu.Unlock()

	if ln == 0 {
		return false
	}
	z.transform.ZoomAtPoint(math.Exp(ln), anchor)
	return true
}

// Active reports whether a zoom gesture is in flight or just ended; pan
// handling is suppressed while it holds to avoid gesture cross-talk.
func (z *Zoomer) Active() bool {
	last := z.lastEvent.Load()
	if last == 0 {
		return false
	}
	return time.Since(time.Unix(0, last)) < zoomPanCooldown
}

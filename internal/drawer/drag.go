package drawer

import "math"

// Dismiss threshold: a release closes the drawer once the rightward drag
// exceeds min(MaxDismissDistance, DismissRatio × panel width).
const (
	MaxDismissDistance = 200.0
	DismissRatio       = 0.35
)

// DragPhase is the state of the pointer-drag tracker.
type DragPhase int

const (
	DragIdle DragPhase = iota
	DragDragging
	DragReleasing
)

func (p DragPhase) String() string {
	switch p {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// DragTracker follows one pointer press inside the panel. Only rightward
// displacement counts.
type DragTracker struct {
	phase  DragPhase
	origin float64
	offset float64
}

// Phase returns the tracker state.
func (t *DragTracker) Phase() DragPhase { return t.phase }

// Offset is the current rightward displacement in pixels.
func (t *DragTracker) Offset() float64 { return t.offset }

// Dragging reports whether a press is being followed.
func (t *DragTracker) Dragging() bool { return t.phase == DragDragging }

// Press starts tracking at x.
func (t *DragTracker) Press(x float64) {
	t.phase = DragDragging
	t.origin = x
	t.offset = 0
}

// Move updates the displacement; ignored unless dragging.
func (t *DragTracker) Move(x float64) {
	if t.phase != DragDragging {
		return
	}
	t.offset = math.Max(0, x-t.origin)
}

// Release ends the drag and reports whether it qualifies as a dismissal.
// A release outside the panel never dismisses. The offset snaps back to 0.
func (t *DragTracker) Release(inside bool, width float64) bool {
	if t.phase != DragDragging {
		return false
	}
	t.phase = DragReleasing
	dismiss := inside && ShouldDismiss(t.offset, width)
	t.reset()
	return dismiss
}

// Cancel abandons the drag without dismissing.
func (t *DragTracker) Cancel() {
	t.reset()
}

func (t *DragTracker) reset() {
	t.phase = DragIdle
	t.origin = 0
	t.offset = 0
}

// DismissThreshold is the drag distance a release must exceed to close.
func DismissThreshold(width float64) float64 {
	return math.Min(MaxDismissDistance, DismissRatio*width)
}

// ShouldDismiss decides a release from the drag offset and panel width.
func ShouldDismiss(offset, width float64) bool {
	return offset > DismissThreshold(width)
}

// OffsetPercent is the panel translation as a percentage of its width.
func OffsetPercent(offset, width float64) float64 {
	if width <= 0 {
		return 0
	}
	return math.Min(100, offset/width*100)
}

// BackdropOpacity fades the backdrop in step with the drag.
func BackdropOpacity(offset, width float64) float64 {
	if width <= 0 {
		return 1
	}
	return 1 - math.Min(1, offset/width)
}

package drawer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Transition timings.
const (
	// OpenDelay lets the freshly mounted panel paint before it slides in.
	OpenDelay = 80 * time.Millisecond
	// CloseDuration is the slide-out animation; the panel unmounts after it.
	CloseDuration = 750 * time.Millisecond
)

// DefaultViewportWidth stands in for the panel width when nothing was measured.
const DefaultViewportWidth = 1024.0

// Phase is the drawer lifecycle state.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpening
	PhaseOpen
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpening:
		return "opening"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// View is what a renderer needs to draw the drawer.
type View struct {
	Phase           string  `json:"phase"`
	Mounted         bool    `json:"mounted"`
	Visible         bool    `json:"visible"`
	Dragging        bool    `json:"dragging"`
	DragOffset      float64 `json:"drag_offset"`
	OffsetPercent   float64 `json:"offset_percent"`
	BackdropOpacity float64 `json:"backdrop_opacity"`
	// Animated is false while dragging so the panel follows the pointer 1:1.
	Animated bool `json:"animated"`
}

// Drawer is the slide-in panel state machine:
// closed → opening → open → closing → closed.
// Delayed transitions are cancelled by any newer open/close request.
type Drawer struct {
	mu sync.Mutex

	clock  Clock
	logger *zap.Logger

	phase   Phase
	mounted bool
	visible bool

	// gen invalidates timers that fire after being superseded.
	gen     uint64
	pending Timer

	drag          DragTracker
	panelWidth    float64
	viewportWidth float64

	onCloseRequest func()
	onMonthSelect  func(start, end string)
	onChange       func(View)
}

// Option configures a Drawer.
type Option func(*Drawer)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(d *Drawer) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Drawer) { d.logger = l }
}

// New creates a closed drawer.
func New(opts ...Option) *Drawer {
	d := &Drawer{
		clock:  SystemClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnCloseRequest registers the owner callback for user close gestures
// (Escape, backdrop click, qualifying drag). Without one the drawer closes
// itself.
func (d *Drawer) OnCloseRequest(fn func()) {
	d.mu.Lock()
	d.onCloseRequest = fn
	d.mu.Unlock()
}

// OnMonthSelect registers the callback receiving the picked date range.
func (d *Drawer) OnMonthSelect(fn func(start, end string)) {
	d.mu.Lock()
	d.onMonthSelect = fn
	d.mu.Unlock()
}

// OnChange registers a callback fired after every state change. It runs
// outside the drawer lock.
func (d *Drawer) OnChange(fn func(View)) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// Open mounts the panel now and makes it visible after OpenDelay.
func (d *Drawer) Open() {
	d.mu.Lock()
	if d.phase == PhaseOpening || d.phase == PhaseOpen {
		d.mu.Unlock()
		return
	}
	gen := d.supersedeLocked()
	d.phase = PhaseOpening
	d.mounted = true
	d.pending = d.clock.AfterFunc(OpenDelay, func() { d.settle(gen, PhaseOpen) })
	d.unlockAndNotify()
}

// Close hides the panel now and unmounts it after CloseDuration.
func (d *Drawer) Close() {
	d.mu.Lock()
	if d.phase == PhaseClosed || d.phase == PhaseClosing {
		d.mu.Unlock()
		return
	}
	gen := d.supersedeLocked()
	d.phase = PhaseClosing
	d.visible = false
	d.drag.Cancel()
	d.pending = d.clock.AfterFunc(CloseDuration, func() { d.settle(gen, PhaseClosed) })
	d.unlockAndNotify()
}

// IsOpen reports whether the drawer is requested open (opening or open).
func (d *Drawer) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isOpenLocked()
}

// Phase returns the current lifecycle state.
func (d *Drawer) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// KeyDown closes the drawer on Escape while it is open.
func (d *Drawer) KeyDown(key string) {
	if key != "Escape" {
		return
	}
	d.requestClose()
}

// BackdropClick closes the drawer.
func (d *Drawer) BackdropClick() {
	d.requestClose()
}

// SetPanelWidth records the measured panel width in pixels.
func (d *Drawer) SetPanelWidth(w float64) {
	d.mu.Lock()
	d.panelWidth = w
	d.mu.Unlock()
}

// SetViewportWidth records the window width used when the panel is unmeasured.
func (d *Drawer) SetViewportWidth(w float64) {
	d.mu.Lock()
	d.viewportWidth = w
	d.mu.Unlock()
}

// PointerDown starts a drag at x if the panel is on screen.
func (d *Drawer) PointerDown(x float64) {
	d.mu.Lock()
	if !d.mounted || !d.isOpenLocked() {
		d.mu.Unlock()
		return
	}
	d.drag.Press(x)
	d.unlockAndNotify()
}

// PointerMove follows the pointer while dragging.
func (d *Drawer) PointerMove(x float64) {
	d.mu.Lock()
	if !d.drag.Dragging() {
		d.mu.Unlock()
		return
	}
	d.drag.Move(x)
	d.unlockAndNotify()
}

// PointerUp ends the drag. A release inside the panel past the dismiss
// threshold requests a close; anything else snaps the panel back.
func (d *Drawer) PointerUp(inside bool) {
	d.mu.Lock()
	if !d.drag.Dragging() {
		d.mu.Unlock()
		return
	}
	offset := d.drag.Offset()
	width := d.widthLocked()
	dismiss := d.drag.Release(inside, width)
	d.logger.Debug("drawer drag released",
		zap.Float64("offset", offset),
		zap.Float64("width", width),
		zap.Bool("dismiss", dismiss),
	)
	d.unlockAndNotify()

	if dismiss {
		d.requestClose()
	}
}

// PointerCancel abandons the drag and snaps back.
func (d *Drawer) PointerCancel() {
	d.mu.Lock()
	if !d.drag.Dragging() {
		d.mu.Unlock()
		return
	}
	d.drag.Cancel()
	d.unlockAndNotify()
}

// SelectMonth computes the range for month index m and hands it to the
// month callback.
func (d *Drawer) SelectMonth(m int) (DateRange, error) {
	r, err := MonthRange(m, d.clock.Now())
	if err != nil {
		return DateRange{}, err
	}

	d.mu.Lock()
	fn := d.onMonthSelect
	d.mu.Unlock()

	if fn != nil {
		start, end := r.Format()
		fn(start, end)
	}
	return r, nil
}

// View returns the render state.
func (d *Drawer) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Drawer) requestClose() {
	d.mu.Lock()
	if !d.isOpenLocked() {
		d.mu.Unlock()
		return
	}
	fn := d.onCloseRequest
	d.mu.Unlock()

	if fn != nil {
		fn()
		return
	}
	d.Close()
}

// settle applies a delayed transition unless a newer request superseded it.
func (d *Drawer) settle(gen uint64, to Phase) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.phase = to
	switch to {
	case PhaseOpen:
		d.visible = true
	case PhaseClosed:
		d.mounted = false
		d.visible = false
	}
	d.unlockAndNotify()
}

func (d *Drawer) supersedeLocked() uint64 {
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	return d.gen
}

func (d *Drawer) isOpenLocked() bool {
	return d.phase == PhaseOpening || d.phase == PhaseOpen
}

func (d *Drawer) widthLocked() float64 {
	switch {
	case d.panelWidth > 0:
		return d.panelWidth
	case d.viewportWidth > 0:
		return d.viewportWidth
	default:
		return DefaultViewportWidth
	}
}

func (d *Drawer) viewLocked() View {
	width := d.widthLocked()
	offset := d.drag.Offset()

	v := View{
		Phase:           d.phase.String(),
		Mounted:         d.mounted,
		Visible:         d.visible,
		Dragging:        d.drag.Dragging(),
		DragOffset:      offset,
		OffsetPercent:   100,
		BackdropOpacity: BackdropOpacity(offset, width),
		Animated:        !d.drag.Dragging(),
	}
	if d.visible {
		v.OffsetPercent = OffsetPercent(offset, width)
	}
	return v
}

// unlockAndNotify releases the lock and reports the new view.
func (d *Drawer) unlockAndNotify() {
	v := d.viewLocked()
	fn := d.onChange
	d.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}

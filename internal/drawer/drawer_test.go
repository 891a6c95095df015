package drawer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

func newTestDrawer(t *testing.T) (*Drawer, *fakeClock) {
	t.Helper()
	clock := newFakeClock(testNow)
	return New(WithClock(clock), WithLogger(zaptest.NewLogger(t))), clock
}

func openDrawer(t *testing.T) (*Drawer, *fakeClock) {
	t.Helper()
	d, clock := newTestDrawer(t)
	d.Open()
	clock.Advance(OpenDelay)
	require.Equal(t, PhaseOpen, d.Phase())
	return d, clock
}

func TestDrawerOpenSequence(t *testing.T) {
	d, clock := newTestDrawer(t)
	assert.Equal(t, PhaseClosed, d.Phase())
	assert.False(t, d.View().Mounted)

	d.Open()
	v := d.View()
	assert.Equal(t, "opening", v.Phase)
	assert.True(t, v.Mounted)
	assert.False(t, v.Visible)
	assert.Equal(t, 100.0, v.OffsetPercent)

	clock.Advance(OpenDelay - time.Millisecond)
	assert.Equal(t, PhaseOpening, d.Phase())

	clock.Advance(time.Millisecond)
	v = d.View()
	assert.Equal(t, "open", v.Phase)
	assert.True(t, v.Mounted)
	assert.True(t, v.Visible)
	assert.Zero(t, v.OffsetPercent)
	assert.Equal(t, 1.0, v.BackdropOpacity)
	assert.True(t, v.Animated)
}

func TestDrawerCloseSequence(t *testing.T) {
	d, clock := openDrawer(t)

	d.Close()
	v := d.View()
	assert.Equal(t, "closing", v.Phase)
	assert.True(t, v.Mounted)
	assert.False(t, v.Visible)

	clock.Advance(CloseDuration - time.Millisecond)
	assert.True(t, d.View().Mounted)

	clock.Advance(time.Millisecond)
	v = d.View()
	assert.Equal(t, "closed", v.Phase)
	assert.False(t, v.Mounted)
	assert.Zero(t, clock.Active())
}

func TestDrawerRapidToggleLeavesOneTransition(t *testing.T) {
	d, clock := newTestDrawer(t)

	d.Open()
	clock.Advance(20 * time.Millisecond)
	d.Close()
	clock.Advance(100 * time.Millisecond)
	d.Open()

	assert.Equal(t, 1, clock.Active())

	clock.Advance(time.Second)
	v := d.View()
	assert.Equal(t, "open", v.Phase)
	assert.True(t, v.Mounted)
	assert.True(t, v.Visible)

	d.Close()
	d.Open()
	d.Close()
	assert.Equal(t, 1, clock.Active())
	clock.Advance(time.Second)
	assert.Equal(t, PhaseClosed, d.Phase())
	assert.False(t, d.View().Mounted)
}

func TestDrawerIgnoresSupersededTimer(t *testing.T) {
	d, clock := newTestDrawer(t)

	d.Open()
	stale := clock.timers[0].f
	d.Close()

	// The stale open callback running late must not make the panel visible.
	stale()
	assert.Equal(t, PhaseClosing, d.Phase())
	assert.False(t, d.View().Visible)
}

func TestDrawerOpenIsIdempotent(t *testing.T) {
	d, clock := openDrawer(t)
	d.Open()
	assert.Equal(t, PhaseOpen, d.Phase())
	assert.Zero(t, clock.Active())

	d.Close()
	d.Close()
	assert.Equal(t, 1, clock.Active())
}

func TestDrawerEscapeAndBackdrop(t *testing.T) {
	t.Run("escape closes", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.KeyDown("Enter")
		assert.Equal(t, PhaseOpen, d.Phase())
		d.KeyDown("Escape")
		assert.Equal(t, PhaseClosing, d.Phase())
	})

	t.Run("escape ignored when closed", func(t *testing.T) {
		d, clock := newTestDrawer(t)
		d.KeyDown("Escape")
		assert.Equal(t, PhaseClosed, d.Phase())
		assert.Zero(t, clock.Active())
	})

	t.Run("backdrop closes", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.BackdropClick()
		assert.Equal(t, PhaseClosing, d.Phase())
	})

	t.Run("owner handles close requests", func(t *testing.T) {
		d, _ := openDrawer(t)
		requests := 0
		d.OnCloseRequest(func() { requests++ })

		d.KeyDown("Escape")
		d.BackdropClick()
		assert.Equal(t, 2, requests)
		assert.Equal(t, PhaseOpen, d.Phase())
	})
}

func TestDrawerDragToDismiss(t *testing.T) {
	t.Run("short drag snaps back", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetPanelWidth(500)

		d.PointerDown(100)
		d.PointerMove(250)
		v := d.View()
		assert.True(t, v.Dragging)
		assert.False(t, v.Animated)
		assert.Equal(t, 150.0, v.DragOffset)
		assert.InDelta(t, 30, v.OffsetPercent, 1e-9)
		assert.InDelta(t, 0.7, v.BackdropOpacity, 1e-9)

		d.PointerUp(true)
		v = d.View()
		assert.Equal(t, "open", v.Phase)
		assert.False(t, v.Dragging)
		assert.True(t, v.Animated)
		assert.Zero(t, v.DragOffset)
		assert.Equal(t, 1.0, v.BackdropOpacity)
	})

	t.Run("long drag closes", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetPanelWidth(500)

		d.PointerDown(100)
		d.PointerMove(280)
		d.PointerUp(true)
		assert.Equal(t, PhaseClosing, d.Phase())
	})

	t.Run("leftward drag is ignored", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetPanelWidth(500)

		d.PointerDown(300)
		d.PointerMove(10)
		assert.Zero(t, d.View().DragOffset)
		d.PointerUp(true)
		assert.Equal(t, PhaseOpen, d.Phase())
	})

	t.Run("release outside snaps back", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetPanelWidth(500)

		d.PointerDown(100)
		d.PointerMove(400)
		d.PointerUp(false)
		assert.Equal(t, PhaseOpen, d.Phase())
		assert.Zero(t, d.View().DragOffset)
	})

	t.Run("cancel snaps back", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetPanelWidth(500)

		d.PointerDown(100)
		d.PointerMove(400)
		d.PointerCancel()
		assert.Equal(t, PhaseOpen, d.Phase())
		assert.False(t, d.View().Dragging)

		d.PointerUp(true)
		assert.Equal(t, PhaseOpen, d.Phase())
	})

	t.Run("viewport width is the fallback", func(t *testing.T) {
		d, _ := openDrawer(t)
		d.SetViewportWidth(400)

		d.PointerDown(0)
		d.PointerMove(141)
		d.PointerUp(true)
		assert.Equal(t, PhaseClosing, d.Phase())
	})

	t.Run("no drag while closed", func(t *testing.T) {
		d, _ := newTestDrawer(t)
		d.PointerDown(0)
		d.PointerMove(300)
		assert.False(t, d.View().Dragging)
	})
}

func TestDrawerSelectMonth(t *testing.T) {
	d, _ := openDrawer(t)

	var start, end string
	d.OnMonthSelect(func(s, e string) { start, end = s, e })

	r, err := d.SelectMonth(8)
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", start)
	assert.Equal(t, "2025-09-10", end)
	assert.Equal(t, MaxDate.AddDate(0, 0, -10), r.End)

	_, err = d.SelectMonth(10)
	assert.ErrorIs(t, err, ErrMonthDisabled)
	assert.Equal(t, "2025-09-10", end)
}

func TestDrawerOnChange(t *testing.T) {
	d, clock := newTestDrawer(t)

	var phases []string
	d.OnChange(func(v View) { phases = append(phases, v.Phase) })

	d.Open()
	clock.Advance(OpenDelay)
	d.Close()
	clock.Advance(CloseDuration)

	assert.Equal(t, []string{"opening", "open", "closing", "closed"}, phases)
}

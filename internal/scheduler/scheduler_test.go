package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/weather-map/internal/store"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Probe(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestProbeOnce(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("records reachable upstream", func(t *testing.T) {
		p := &mockProber{}
		p.On("Probe", mock.Anything).Return(204, nil).Once()
		st := store.NewMemoryStore(10, 0)

		got := New(p, st, 0, time.Second, log).ProbeOnce(context.Background())
		assert.True(t, got.OK)
		assert.Equal(t, 204, got.Status)
		assert.Empty(t, got.Error)

		latest, err := st.Latest()
		require.NoError(t, err)
		assert.Equal(t, got, latest)
		p.AssertExpectations(t)
	})

	t.Run("server errors are not ok", func(t *testing.T) {
		p := &mockProber{}
		p.On("Probe", mock.Anything).Return(503, nil)

		got := New(p, store.NewMemoryStore(10, 0), 0, time.Second, log).ProbeOnce(context.Background())
		assert.False(t, got.OK)
		assert.Equal(t, 503, got.Status)
	})

	t.Run("records transport errors", func(t *testing.T) {
		p := &mockProber{}
		p.On("Probe", mock.Anything).Return(0, errors.New("connection refused"))

		got := New(p, store.NewMemoryStore(10, 0), 0, time.Second, log).ProbeOnce(context.Background())
		assert.False(t, got.OK)
		assert.Equal(t, "connection refused", got.Error)
	})
}

type countingProber struct {
	calls atomic.Int32
}

func (c *countingProber) Probe(context.Context) (int, error) {
	c.calls.Add(1)
	return 200, nil
}

func TestStartRunsJob(t *testing.T) {
	p := &countingProber{}
	st := store.NewMemoryStore(10, 0)
	s := New(p, st, time.Hour, time.Second, zaptest.NewLogger(t))

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return st.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestStartDisabled(t *testing.T) {
	p := &countingProber{}
	st := store.NewMemoryStore(10, 0)
	s := New(p, st, 0, time.Second, nil)

	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, st.Len())
}

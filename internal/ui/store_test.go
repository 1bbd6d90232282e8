package ui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_GetOrCreate(t *testing.T) {
	st := NewSessionStore(new(MockGenerator), time.Minute)

	id, s, created := st.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, id)

	id2, s2, created := st.GetOrCreate(id)
	assert.False(t, created)
	assert.Equal(t, id, id2)
	assert.Same(t, s, s2)

	id3, _, created := st.GetOrCreate("unknown")
	assert.True(t, created)
	assert.NotEqual(t, "unknown", id3)
	assert.Equal(t, 2, st.Len())
}

func TestSessionStore_SweepEvictsIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewSessionStore(new(MockGenerator), 10*time.Minute)
	st.now = func() time.Time { return now }

	idle, _ := st.Create()
	now = now.Add(8 * time.Minute)
	active, _ := st.Create()

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, st.Sweep())

	_, ok := st.Get(idle)
	assert.False(t, ok)
	_, ok = st.Get(active)
	assert.True(t, ok)
}

func TestSessionStore_SweepCancelsRunningCycle(t *testing.T) {
	now := time.Now()
	gen := newBlockingGenerator()
	st := NewSessionStore(gen, time.Minute)
	st.now = func() time.Time { return now }

	_, s := st.Create()
	done := s.Submit(context.Background(), "eggs")
	<-gen.started

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	wait(t, done)
}

func TestSessionStore_DefaultTTL(t *testing.T) {
	st := NewSessionStore(new(MockGenerator), 0)
	assert.Equal(t, DefaultSessionTTL, st.ttl)
}

func TestSessionStore_RunStopsWithContext(t *testing.T) {
	st := NewSessionStore(new(MockGenerator), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

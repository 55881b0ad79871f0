package secs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRunsStagesInOrder(t *testing.T) {
	app, _ := newMirrorFixture(t)

	var order []Stage
	for _, stage := range []Stage{Last, Update, First, PostUpdate, PreUpdate} {
		s := stage
		app.AddSystem(s.String(), s, func(w *World) {
			order = append(order, s)
		}, MainThread())
	}
	app.Process(0.016)

	assert.Equal(t, []Stage{First, PreUpdate, Update, PostUpdate, Last}, order)
}

func TestFrameDeltaResource(t *testing.T) {
	app, _ := newMirrorFixture(t)

	var seen float64
	app.AddSystem("read delta", Update, func(w *World) {
		seen = Resource[FrameDelta](w).Seconds
	})
	app.Process(0.25)
	assert.Equal(t, 0.25, seen)
}

func TestPhysicsProcessRunsPhysicsSystemsOnly(t *testing.T) {
	app, _ := newMirrorFixture(t)

	frames, physics := 0, 0
	app.AddSystem("frame", Update, func(w *World) { frames++ })
	app.AddPhysicsSystem("physics", func(w *World) {
		physics++
		assert.Equal(t, 1.0/60, Resource[PhysicsDelta](w).Seconds)
	})

	app.PhysicsProcess(1.0 / 60)
	app.PhysicsProcess(1.0 / 60)
	assert.Equal(t, 0, frames)
	assert.Equal(t, 2, physics)

	app.Process(0.016)
	assert.Equal(t, 1, frames)
	assert.Equal(t, 2, physics)
}

func TestWorkerSystemsRun(t *testing.T) {
	app, _ := newMirrorFixture(t)

	ran := make(chan string, 2)
	app.AddSystem("worker a", Update, func(w *World) { ran <- "a" })
	app.AddSystem("worker b", Update, func(w *World) { ran <- "b" })
	app.Process(0.016)

	got := map[string]bool{<-ran: true, <-ran: true}
	assert.True(t, got["a"] && got["b"])
}

func TestPanicTearsDownAndReRaises(t *testing.T) {
	app, g := newMirrorFixture(t)

	app.AddSystem("boom", Update, func(w *World) {
		panic("broken invariant")
	}, MainThread())

	require.Panics(t, func() { app.Process(0.016) })

	// Torn down: further frames are no-ops and queued host events drop.
	require.NotPanics(t, func() { app.Process(0.016) })
	require.NotPanics(t, func() { app.PhysicsProcess(0.016) })

	n := g.newNode("After")
	g.add(g.Root(), n)
	require.NotPanics(t, func() { app.Process(0.016) })
	assert.Nil(t, entityFor(app.World(), n))
}

func TestWorkerPanicReachesProcessBoundary(t *testing.T) {
	app, _ := newMirrorFixture(t)

	app.AddSystem("boom worker", Update, func(w *World) {
		panic("worker failure")
	})

	require.Panics(t, func() { app.Process(0.016) })
	require.NotPanics(t, func() { app.Process(0.016) })
}

func TestTickAdvancesPerFrame(t *testing.T) {
	app, _ := newMirrorFixture(t)
	w := app.World()

	before := w.Tick()
	app.Process(0.016)
	app.Process(0.016)
	assert.Equal(t, before+2, w.Tick())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("sync_mode: two_way\nworkers: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, SyncTwoWay, cfg.SyncMode)
	assert.Equal(t, 4, cfg.Workers)
	// Unnamed fields keep their defaults.
	assert.True(t, cfg.MirrorChildRelationships)

	_, err = ParseConfig([]byte("sync_mode: sideways\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("workers: -1\n"))
	assert.Error(t, err)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNodeHandleResolution(t *testing.T) {
	g := newFakeGraph()
	n := g.newNode("Target")
	g.add(g.Root(), n)

	h := NewNodeHandle(g, n.ID())
	require.True(t, h.Valid())
	assert.Equal(t, n.ID(), h.Get().ID())

	g.remove(n)
	assert.Nil(t, h.TryGet())
	assert.Panics(t, func() { h.Get() })

	var zero NodeHandle
	assert.False(t, zero.Valid())
	assert.Nil(t, zero.TryGet())
}

package secs

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// FrameDelta is the world resource holding the seconds elapsed since the
// previous visual frame.
type FrameDelta struct {
	Seconds float64
}

// PhysicsDelta is the world resource holding the fixed timestep of the
// current physics pass.
type PhysicsDelta struct {
	Seconds float64
}

// App wires a host scene graph to a World and drives the per-tick schedule.
// Construct it on the host's main thread after the graph is live; the whole
// existing tree is mirrored before NewApp returns.
type App struct {
	world   *World
	graph   SceneGraph
	cfg     Config
	sched   *scheduler
	log     *zap.Logger
	mirror  *mirror
	signals *signalBridge

	treeWatcher      *treeWatcher
	collisionWatcher *collisionWatcher

	dead atomic.Bool
}

// Option configures an App at construction.
type Option func(*App)

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// NewApp builds the bridge over graph. The bundle registry seals here;
// RegisterBundle calls from init functions must already have run.
func NewApp(graph SceneGraph, opts ...Option) *App {
	a := &App{
		graph: graph,
		cfg:   DefaultConfig(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	sealBundles()

	a.world = NewWorld(a.log)
	a.world.SetResource(&TransformConfig{Mode: a.cfg.SyncMode})
	a.world.SetResource(&FrameDelta{})
	a.world.SetResource(&PhysicsDelta{})

	a.sched = newScheduler(a.cfg.Workers, a.log)
	a.treeWatcher = newTreeWatcher()
	a.collisionWatcher = newCollisionWatcher()
	a.signals = newSignalBridge(a.log)
	a.mirror = newMirror(graph, a.treeWatcher, a.collisionWatcher, a.cfg, a.log)

	// Core systems. The First chain is strictly ordered: queues rotate
	// before any drain publishes into them, and the tree drain runs before
	// anything that looks mirror entities up.
	a.AddSystem("event_update", First, func(w *World) { w.updateEvents() }, MainThread())
	a.AddSystem("tree_drain", First, a.mirror.drainAndApply, MainThread())
	a.AddSystem("collision_drain", First, drainCollisionEvents(a.collisionWatcher), MainThread())
	a.AddSystem("signal_drain", First, a.signals.drain, MainThread())
	a.AddSystem("deferred_signals", First, processDeferredSignals(a), MainThread())
	a.AddSystem("transform_read_back", PreUpdate, readBackTransforms, MainThread())
	a.AddSystem("collision_update", PreUpdate, updateCollisions(), MainThread())
	a.AddSystem("transform_write_back", Last, writeBackTransforms(graph), MainThread())

	// Live tree events flow from here on; the watcher queue absorbs any
	// that fire before the first Process call.
	a.treeWatcher.observe(graph)
	a.mirror.seedFromTree(a.world)

	return a
}

// World returns the entity store.
func (a *App) World() *World {
	return a.world
}

// Logger returns the app's logger.
func (a *App) Logger() *zap.Logger {
	return a.log
}

// AddSystem registers a system to run every visual frame in the given
// stage. Systems that touch the host graph must pass MainThread().
func (a *App) AddSystem(name string, stage Stage, fn SystemFunc, opts ...SystemOption) {
	entry := systemEntry{name: name, fn: fn, stage: stage}
	for _, opt := range opts {
		opt(&entry)
	}
	a.sched.add(entry)
}

// AddPhysicsSystem registers a system to run every physics pass. Physics
// systems always run on the main thread.
func (a *App) AddPhysicsSystem(name string, fn SystemFunc) {
	a.sched.addPhysics(systemEntry{name: name, fn: fn, mainThread: true})
}

// SetSyncMode changes the transform synchronization mode. Takes effect on
// the next frame.
func (a *App) SetSyncMode(mode TransformSyncMode) {
	Resource[TransformConfig](a.world).Mode = mode
	a.log.Info("sync mode changed", zap.String("mode", mode.String()))
}

// ConnectSignal installs a generic forwarding connection on a node's
// signal; each firing becomes a SignalEvent. Must be called on the main
// thread. When the node might not be mirrored yet, attach a
// DeferredSignalConnections component instead.
func (a *App) ConnectSignal(h NodeHandle, signal string) error {
	_, err := a.signals.connect(h, signal)
	return err
}

// Process runs one visual frame pass. The host must call it on its main
// thread. A panicking system tears the bridge down and then re-panics, so
// the failure surfaces in the host with the original stack; subsequent
// calls are no-ops.
func (a *App) Process(delta float64) {
	if a.dead.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("frame pass panicked, tearing down", zap.Any("panic", r))
			a.Shutdown()
			panic(r)
		}
	}()

	Resource[FrameDelta](a.world).Seconds = delta
	a.world.advanceTick()
	a.sched.run(a.world)
}

// PhysicsProcess runs one physics pass, with the same threading and panic
// rules as Process.
func (a *App) PhysicsProcess(delta float64) {
	if a.dead.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("physics pass panicked, tearing down", zap.Any("panic", r))
			a.Shutdown()
			panic(r)
		}
	}()

	Resource[PhysicsDelta](a.world).Seconds = delta
	a.world.advanceTick()
	a.sched.runPhysics(a.world)
}

// Shutdown stops the bridge: queues close and drop their backlogs, and
// Process/PhysicsProcess become no-ops. Host signal connections stay in
// place but push into closed queues, which discard.
func (a *App) Shutdown() {
	if !a.dead.CompareAndSwap(false, true) {
		return
	}
	a.treeWatcher.ch.Close()
	a.collisionWatcher.ch.Close()
	a.signals.events.Close()
	a.signals.typed.Close()
	a.log.Info("bridge shut down")
}

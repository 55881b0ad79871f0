package secs

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doorOpened struct {
	Door   EntityID
	Locked bool
}

func newButton(g *fakeGraph, name string) *fakeNode {
	n := g.newNode(name, "Button", "Control", "Node")
	n.signalNames = map[string]bool{"pressed": true}
	return n
}

func TestGenericSignalDelivery(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	button := newButton(g, "Start")
	g.add(g.Root(), button)
	app.Process(0.016)

	h := NewNodeHandle(g, button.ID())
	require.NoError(t, app.ConnectSignal(h, "pressed"))

	reader := EventsOf[SignalEvent](w).Reader()
	button.fire("pressed", true, int64(3), "fast", mgl64.Vec2{1, 2}, button)
	app.Process(0.016)

	events := reader.Read()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "pressed", ev.Name)
	assert.Equal(t, button.ID(), ev.Origin.ID())

	require.Len(t, ev.Args, 5)
	assert.Equal(t, SignalArgument{TypeName: "Bool", Value: "true"}, ev.Args[0])
	assert.Equal(t, SignalArgument{TypeName: "Int", Value: "3"}, ev.Args[1])
	assert.Equal(t, SignalArgument{TypeName: "String", Value: "fast"}, ev.Args[2])
	assert.Equal(t, "Vector2", ev.Args[3].TypeName)
	assert.Equal(t, SignalArgument{TypeName: "Object", Value: "Start", NodeID: button.ID()}, ev.Args[4])
}

func TestConnectSignalErrors(t *testing.T) {
	app, g := newMirrorFixture(t)

	button := newButton(g, "Start")
	g.add(g.Root(), button)
	app.Process(0.016)

	h := NewNodeHandle(g, button.ID())
	assert.Error(t, app.ConnectSignal(h, "no_such_signal"))

	gone := NewNodeHandle(g, NodeID(9999))
	assert.Error(t, app.ConnectSignal(gone, "pressed"))
}

func TestTypedSignalDelivery(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	door := g.newNode("Door", "Area2D", "Node2D", "Node")
	door.signalNames = map[string]bool{"opened": true}
	g.add(g.Root(), door)
	app.Process(0.016)

	e := entityFor(w, door)
	require.NotNil(t, e)

	h := NewNodeHandle(g, door.ID())
	err := ConnectTypedSignal(app, h, "opened", e.ID(),
		func(args []any, origin NodeHandle, source EntityID) doorOpened {
			locked, _ := args[0].(bool)
			return doorOpened{Door: source, Locked: locked}
		})
	require.NoError(t, err)

	reader := EventsOf[doorOpened](w).Reader()
	door.fire("opened", true)
	app.Process(0.016)

	events := reader.Read()
	require.Len(t, events, 1)
	assert.Equal(t, doorOpened{Door: e.ID(), Locked: true}, events[0])
}

func TestDeferredSignalConnectsOnceHandleExists(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	// Entity exists before its node does; the connection waits.
	e := w.Spawn()
	Add(e, &DeferredSignalConnections{Signals: []string{"pressed"}})
	app.Process(0.016)
	require.True(t, Has[DeferredSignalConnections](e))

	button := newButton(g, "Late")
	h := NewNodeHandle(g, button.ID())
	Add(e, &h)
	g.add(g.Root(), button)
	app.Process(0.016)

	// Wired and consumed.
	assert.False(t, Has[DeferredSignalConnections](e))

	reader := EventsOf[SignalEvent](w).Reader()
	button.fire("pressed")
	app.Process(0.016)
	require.Len(t, reader.Read(), 1)
}

func TestDeferredTypedSignal(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()
	RegisterTypedSignal[doorOpened](app)

	e := w.Spawn()
	Add(e, NewDeferredTypedConnections("opened",
		func(args []any, origin NodeHandle, source EntityID) doorOpened {
			return doorOpened{Door: source}
		}))
	app.Process(0.016)
	require.True(t, Has[DeferredTypedConnections[doorOpened]](e))

	door := g.newNode("Door")
	door.signalNames = map[string]bool{"opened": true}
	h := NewNodeHandle(g, door.ID())
	Add(e, &h)
	g.add(g.Root(), door)
	app.Process(0.016)
	assert.False(t, Has[DeferredTypedConnections[doorOpened]](e))

	reader := EventsOf[doorOpened](w).Reader()
	door.fire("opened")
	app.Process(0.016)

	events := reader.Read()
	require.Len(t, events, 1)
	assert.Equal(t, e.ID(), events[0].Door)
}

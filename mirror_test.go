package secs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMirrorFixture(t *testing.T) (*App, *fakeGraph) {
	t.Helper()
	g := newFakeGraph()
	app := NewApp(g, WithConfig(Config{
		SyncMode:                 SyncTwoWay,
		MirrorChildRelationships: true,
	}))
	return app, g
}

func TestStartupTraversalMirrorsExistingTree(t *testing.T) {
	g := newFakeGraph()
	level := g.newNode("Level")
	player := g.newNode3D("Player", "CharacterBody3D", "PhysicsBody3D")
	hud := g.newNode("Hud", "Label", "Control", "CanvasItem", "Node")

	// Build the tree before the bridge exists; no signals fire.
	g.base(level).parent = g.root
	g.root.children = append(g.root.children, level)
	g.base(player).parent = level
	g.base(level).children = append(g.base(level).children, player)
	g.base(hud).parent = level
	g.base(level).children = append(g.base(level).children, hud)
	g.nodes[level.ID()] = level
	g.nodes[player.ID()] = player
	g.nodes[hud.ID()] = hud

	app := NewApp(g, WithConfig(Config{
		SyncMode:                 SyncTwoWay,
		MirrorChildRelationships: true,
	}))
	w := app.World()

	// Root, Level, Player, Hud.
	assert.Equal(t, 4, w.Count())

	pe := entityFor(w, player)
	require.NotNil(t, pe)
	assert.Equal(t, Name("Player"), *Get[Name](pe))
	assert.True(t, Has[Transform3D](pe))

	types := Get[NodeTypes](pe)
	require.NotNil(t, types)
	assert.True(t, types.Is(TagNode))
	assert.True(t, types.Is(TagNode3D))
	assert.True(t, types.Is(TagCharacterBody3D))
	assert.False(t, types.Is(TagNode2D))

	he := entityFor(w, hud)
	require.NotNil(t, he)
	htypes := Get[NodeTypes](he)
	assert.True(t, htypes.Is(TagControl))
	assert.True(t, htypes.Is(TagCanvasItem))
	assert.True(t, htypes.Is(TagLabel))

	// Parent links follow the tree, in pre-order.
	le := entityFor(w, level)
	require.NotNil(t, le)
	assert.Equal(t, le.ID(), Get[ChildOf](pe).Parent)
	assert.Equal(t, le.ID(), Get[ChildOf](he).Parent)
	root := entityFor(w, g.Root())
	assert.Equal(t, root.ID(), Get[ChildOf](le).Parent)
	assert.Nil(t, Get[ChildOf](root))
}

func TestNodeAddedAtRuntime(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	enemy := g.newNode2D("Enemy", "Sprite2D")
	g.base(enemy).groups = []string{"enemies", "visible"}
	g.add(g.Root(), enemy)

	// Queued until the next frame drains it.
	assert.Nil(t, entityFor(w, enemy))

	app.Process(0.016)
	e := entityFor(w, enemy)
	require.NotNil(t, e)
	assert.Equal(t, Name("Enemy"), *Get[Name](e))
	assert.True(t, Has[Transform2D](e))
	assert.True(t, Get[NodeTypes](e).Is(TagSprite2D))

	groups := Get[Groups](e)
	require.NotNil(t, groups)
	assert.True(t, groups.Is("enemies"))
	assert.False(t, groups.Is("players"))
}

func TestNodeRemovedDespawns(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	n := g.newNode("Temp")
	g.add(g.Root(), n)
	app.Process(0.016)
	e := entityFor(w, n)
	require.NotNil(t, e)

	g.remove(n)
	app.Process(0.016)

	assert.Nil(t, entityFor(w, n))
	assert.False(t, e.Alive())
}

func TestRemovedSubtreeDespawnsAll(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	parent := g.newNode("Parent")
	child := g.newNode("Child")
	g.add(g.Root(), parent)
	g.add(parent, child)
	app.Process(0.016)
	require.NotNil(t, entityFor(w, child))

	g.remove(parent)
	app.Process(0.016)

	assert.Nil(t, entityFor(w, parent))
	assert.Nil(t, entityFor(w, child))
}

func TestProtectedEntitySurvivesRemoval(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	n := g.newNode3D("Boss")
	g.add(g.Root(), n)
	app.Process(0.016)
	e := entityFor(w, n)
	require.NotNil(t, e)

	Add(e, &Protected{})
	Add(e, &health{Current: 10, Max: 10})

	g.remove(n)
	app.Process(0.016)

	// Alive but stripped of everything node-derived.
	assert.True(t, e.Alive())
	assert.False(t, Has[NodeHandle](e))
	assert.False(t, Has[Name](e))
	assert.False(t, Has[NodeTypes](e))
	assert.False(t, Has[Groups](e))
	assert.False(t, Has[Transform3D](e))

	// Application components survive.
	require.NotNil(t, Get[health](e))
	assert.Equal(t, 10, Get[health](e).Current)
}

func TestNodeRenamedUpdatesNameOnly(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	n := g.newNode("Old")
	g.add(g.Root(), n)
	app.Process(0.016)
	e := entityFor(w, n)
	require.NotNil(t, e)
	before := e.Mask()

	g.rename(n, "New")
	app.Process(0.016)

	assert.Equal(t, Name("New"), *Get[Name](e))
	assert.Equal(t, before, e.Mask())
}

func TestAddedAndFreedSameTickIsSkipped(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	n := g.newNode("Flash")
	g.add(g.Root(), n)
	g.remove(n)
	app.Process(0.016)

	assert.Nil(t, entityFor(w, n))
}

func TestRemovalEventForUnknownNodeIsIgnored(t *testing.T) {
	app, g := newMirrorFixture(t)

	stray := g.newNode("Stray")
	g.emit(SignalNodeRemoved, stray)
	app.Process(0.016)

	assert.Equal(t, 1, app.World().Count())
}

func TestFindsPreSpawnedEntityByHandle(t *testing.T) {
	app, g := newMirrorFixture(t)
	w := app.World()

	// The application claims the node before the host announces it.
	n := g.newNode("Claimed")
	e := w.Spawn()
	h := NewNodeHandle(g, n.ID())
	Add(e, &h)
	Add(e, &health{Current: 1})

	g.add(g.Root(), n)
	app.Process(0.016)

	// Mirrored in place, not duplicated.
	assert.Same(t, e, entityFor(w, n))
	assert.Equal(t, Name("Claimed"), *Get[Name](e))
	assert.NotNil(t, Get[health](e))
}

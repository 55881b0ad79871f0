package secs

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Transform synchronization systems. Read-back runs in PreUpdate and only in
// two-way mode; write-back runs in Last in any mode but disabled. Both are
// main-thread systems since they resolve node handles.
//
// Echo prevention rests on the localDirty flag each transform component
// carries: only entity-side edits set it, so write-back (which pushes only
// dirty components) never bounces an imported value straight back at the
// host, and read-back (which skips dirty components) never lets the host
// clobber an un-pushed local edit.

func syncMode(w *World) TransformSyncMode {
	cfg := Resource[TransformConfig](w)
	if cfg == nil {
		return SyncDisabled
	}
	return cfg.Mode
}

// readBackTransforms imports host-side transform changes into the entity
// store. Value comparison against the cached host encoding keeps unchanged
// nodes free: most entities cost one resolve and one compare per tick.
func readBackTransforms(w *World) {
	if syncMode(w) != SyncTwoWay {
		return
	}
	tick := w.Tick()

	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform3D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform3D](e)
		if tr.dirty() {
			// Un-pushed local edit; the local value wins.
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial3D)
		if !ok {
			return
		}
		if h := node.Transform3D(); h != tr.host {
			tr.setFromHost(h, tick)
		}
	})

	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform2D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform2D](e)
		if tr.dirty() {
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial2D)
		if !ok {
			return
		}
		if h := node.Transform2D(); h != tr.host {
			tr.setFromHost(h, tick)
		}
	})
}

// writeBackTransforms pushes dirty entity-side transforms to the host. When
// the graph implements BulkTransformSink the changed set is handed over as
// flat arrays instead of one call per node.
func writeBackTransforms(graph SceneGraph) SystemFunc {
	return func(w *World) {
		if syncMode(w) == SyncDisabled {
			return
		}
		if sink, ok := graph.(BulkTransformSink); ok {
			writeBackBulk(w, sink)
			return
		}
		writeBackEach(w)
	}
}

func writeBackEach(w *World) {
	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform3D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform3D](e)
		if !tr.dirty() {
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial3D)
		if !ok {
			// Node gone; the removal event will clean the entity up.
			return
		}
		if node.Transform3D() != tr.host {
			node.SetTransform3D(tr.host)
		}
		tr.localDirty = false
	})

	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform2D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform2D](e)
		if !tr.dirty() {
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial2D)
		if !ok {
			return
		}
		if node.Transform2D() != tr.host {
			node.SetTransform2D(tr.host)
		}
		tr.localDirty = false
	})
}

// writeBackBulk batches the tick's changed transforms into flat per-field
// arrays. The host composes each transform from translation, rotation and
// scale exactly as the per-node path would set it, so both paths produce
// identical graph state.
func writeBackBulk(w *World, sink BulkTransformSink) {
	var (
		ids3   []NodeID
		pos3   []mgl64.Vec3
		rot3   []mgl64.Quat
		scale3 []mgl64.Vec3

		ids2   []NodeID
		pos2   []mgl64.Vec2
		rot2   []float64
		scale2 []mgl64.Vec2
	)

	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform3D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform3D](e)
		if !tr.dirty() {
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial3D)
		if !ok {
			return
		}
		if node.Transform3D() != tr.host {
			t := tr.Local()
			ids3 = append(ids3, node.ID())
			pos3 = append(pos3, t.Translation)
			rot3 = append(rot3, t.Rotation)
			scale3 = append(scale3, t.Scale)
		}
		tr.localDirty = false
	})

	w.Query(MaskOf[NodeHandle]().Or(MaskOf[Transform2D]()), Bitmask{}, func(e *Entity) {
		tr := Get[Transform2D](e)
		if !tr.dirty() {
			return
		}
		node, ok := Get[NodeHandle](e).TryGet().(Spatial2D)
		if !ok {
			return
		}
		if node.Transform2D() != tr.host {
			t := tr.Local()
			ids2 = append(ids2, node.ID())
			pos2 = append(pos2, mgl64.Vec2{t.Translation.X(), t.Translation.Y()})
			rot2 = append(rot2, t.RotationZ())
			scale2 = append(scale2, mgl64.Vec2{t.Scale.X(), t.Scale.Y()})
		}
		tr.localDirty = false
	})

	if len(ids3) > 0 {
		sink.SetPositions3D(ids3, pos3)
		sink.SetRotations3D(ids3, rot3)
		sink.SetScales3D(ids3, scale3)
		w.log.Debug("bulk transform write-back", zap.Int("nodes_3d", len(ids3)))
	}
	if len(ids2) > 0 {
		sink.SetPositions2D(ids2, pos2)
		sink.SetRotations2D(ids2, rot2)
		sink.SetScales2D(ids2, scale2)
		w.log.Debug("bulk transform write-back", zap.Int("nodes_2d", len(ids2)))
	}
}

// Package secs bridges a retained, single-thread-affine scene graph and a
// data-oriented entity store.
//
// SECS mirrors every node of a host scene graph as an entity, keeps spatial
// transforms synchronized in both directions, and converts host-originated
// notifications (tree mutation, collision, arbitrary signal firing) into
// thread-safe events that entity-store systems can consume.
//
// # Quick Start
//
// Construct an App on the host's main thread, once the host graph is live:
//
//	app := secs.NewApp(graph,
//	    secs.WithConfig(secs.Config{
//	        SyncMode:                 secs.SyncTwoWay,
//	        MirrorChildRelationships: true,
//	    }),
//	)
//
//	app.AddSystem("movement", secs.Update, func(w *secs.World) {
//	    w.Query(secs.MaskOf[secs.Transform3D](), secs.Bitmask{}, func(e *secs.Entity) {
//	        tr := secs.Get[secs.Transform3D](e)
//	        tr.EditLocal(w.Tick(), func(t *secs.Transform) {
//	            t.Translation = t.Translation.Add(velocity)
//	        })
//	    })
//	})
//
// Then drive it from the host's frame callbacks, still on the main thread:
//
//	func process(delta float64)        { app.Process(delta) }
//	func physicsProcess(delta float64) { app.PhysicsProcess(delta) }
//
// # Components
//
// Components are plain Go structs attached to entities:
//
//	type Health struct {
//	    Current int
//	    Max     int
//	}
//
//	secs.Add(e, &Health{100, 100})
//	health := secs.Get[Health](e)
//	secs.Remove[Health](e)
//
// Mirror entities carry NodeHandle, Name, Groups, NodeTypes and, for spatial
// nodes, Transform2D or Transform3D. Mark an entity with Protected to keep it
// alive after its host node is freed.
//
// # Bundles
//
// Packages contribute components for specific host node classes without
// touching the mirroring logic:
//
//	func init() {
//	    secs.RegisterBundle("CharacterBody3D", func(h secs.NodeHandle) []any {
//	        return []any{&Velocity{}, &Health{100, 100}}
//	    })
//	}
//
// # Threading
//
// The host graph may only be touched from its main thread. All systems that
// resolve a NodeHandle must be registered with secs.MainThread(); they run
// inline inside Process/PhysicsProcess, which the host calls on that thread.
// Systems without the option may be scheduled onto worker goroutines.
package secs

// Version is the SECS version.
const Version = "1.0.0"

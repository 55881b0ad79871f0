package secs

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is the entity-side spatial representation: decomposed
// translation, rotation and scale. The host keeps matrix-plus-origin
// encodings instead; conversions live on this type and on the Host variants.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       mgl64.Vec3
}

// IdentityTransform returns the do-nothing transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// HostTransform3D converts to the host's basis-plus-origin encoding. The
// basis columns are the rotated axes scaled componentwise, so a later import
// recovers the same decomposition.
func (t Transform) HostTransform3D() HostTransform3D {
	q := t.Rotation.Normalize()
	cx := q.Rotate(mgl64.Vec3{1, 0, 0}).Mul(t.Scale.X())
	cy := q.Rotate(mgl64.Vec3{0, 1, 0}).Mul(t.Scale.Y())
	cz := q.Rotate(mgl64.Vec3{0, 0, 1}).Mul(t.Scale.Z())
	return HostTransform3D{
		Basis:  mgl64.Mat3FromCols(cx, cy, cz),
		Origin: t.Translation,
	}
}

// HostTransform2D converts to the host's two-column-plus-origin encoding.
// Only the Z component of the rotation survives; X and Y translation carry
// over and Z translation is dropped.
func (t Transform) HostTransform2D() HostTransform2D {
	rot := t.RotationZ()
	cos, sin := math.Cos(rot), math.Sin(rot)
	return HostTransform2D{
		A:      mgl64.Vec2{cos * t.Scale.X(), sin * t.Scale.X()},
		B:      mgl64.Vec2{-sin * t.Scale.Y(), cos * t.Scale.Y()},
		Origin: mgl64.Vec2{t.Translation.X(), t.Translation.Y()},
	}
}

// RotationZ extracts the Z-axis rotation angle in radians. Exact for pure Z
// rotations; for arbitrary rotations it falls back to projecting the rotated
// X axis onto the plane.
func (t Transform) RotationZ() float64 {
	q := t.Rotation.Normalize()
	if math.Abs(q.X()) < 1e-9 && math.Abs(q.Y()) < 1e-9 {
		return 2 * math.Atan2(q.Z(), q.W)
	}
	v := q.Rotate(mgl64.Vec3{1, 0, 0})
	return math.Atan2(v.Y(), v.X())
}

// TransformFromHost3D decomposes a host encoding: scale from the column
// lengths (all three negated for a mirroring basis), rotation from the
// orthonormalized basis, translation from the origin.
func TransformFromHost3D(h HostTransform3D) Transform {
	cx := h.Basis.Col(0)
	cy := h.Basis.Col(1)
	cz := h.Basis.Col(2)

	scale := mgl64.Vec3{cx.Len(), cy.Len(), cz.Len()}
	if h.Basis.Det() < 0 {
		scale = scale.Mul(-1)
	}

	// Gram-Schmidt on the columns, then flip a mirroring basis so the
	// quaternion conversion sees a proper rotation.
	x := safeNormalize(cx)
	y := safeNormalize(cy.Sub(x.Mul(x.Dot(cy))))
	z := safeNormalize(cz.Sub(x.Mul(x.Dot(cz))).Sub(y.Mul(y.Dot(cz))))
	ortho := mgl64.Mat3FromCols(x, y, z)
	if ortho.Det() < 0 {
		ortho = mgl64.Mat3FromCols(x.Mul(-1), y.Mul(-1), z.Mul(-1))
	}

	return Transform{
		Translation: h.Origin,
		Rotation:    mgl64.Mat4ToQuat(ortho.Mat4()).Normalize(),
		Scale:       scale,
	}
}

// TransformFromHost2D decomposes a host 2D encoding: rotation from the first
// column's angle, scale from the column lengths, Z translation zero.
func TransformFromHost2D(h HostTransform2D) Transform {
	rot := math.Atan2(h.A.Y(), h.A.X())
	return Transform{
		Translation: mgl64.Vec3{h.Origin.X(), h.Origin.Y(), 0},
		Rotation:    mgl64.QuatRotate(rot, mgl64.Vec3{0, 0, 1}),
		Scale:       mgl64.Vec3{h.A.Len(), h.B.Len(), 1},
	}
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return v.Normalize()
}

// Transform3D is the mirror component for host nodes carrying a 3D
// transform. It holds both representations plus the tick bookkeeping that
// keeps the two sides from echoing each other's writes.
//
// Mutate through EditLocal or EditHost; the other representation is
// recomputed when the edit closure returns, so the two can never diverge
// for longer than a single scope.
type Transform3D struct {
	local Transform
	host  HostTransform3D

	// changedTick is the tick of the last mutation from either side.
	// localDirty marks an entity-side change the host has not seen yet;
	// host-side imports never set it, which is what keeps an imported value
	// from echoing straight back to the host.
	changedTick uint64
	localDirty  bool
}

// NewTransform3DFromHost seeds the component from a host encoding, marking
// it already synchronized so the first write-back skips it.
func NewTransform3DFromHost(h HostTransform3D, tick uint64) Transform3D {
	return Transform3D{
		local:       TransformFromHost3D(h),
		host:        h,
		changedTick: tick,
	}
}

// NewTransform3D seeds the component from an entity-side value, marking it
// dirty so the next write-back pushes it to the host.
func NewTransform3D(t Transform, tick uint64) Transform3D {
	return Transform3D{
		local:       t,
		host:        t.HostTransform3D(),
		changedTick: tick,
		localDirty:  true,
	}
}

// Local returns the decomposed representation.
func (c *Transform3D) Local() Transform {
	return c.local
}

// Host returns the host-native representation.
func (c *Transform3D) Host() HostTransform3D {
	return c.host
}

// EditLocal mutates the decomposed representation in place. The host
// encoding is recomputed and the change stamped even if fn panics, so a
// half-finished edit still leaves the two representations consistent.
func (c *Transform3D) EditLocal(tick uint64, fn func(t *Transform)) {
	defer func() {
		c.host = c.local.HostTransform3D()
		c.changedTick = tick
		c.localDirty = true
	}()
	fn(&c.local)
}

// EditHost mutates the host-native representation in place, recomputing the
// decomposed form on return.
func (c *Transform3D) EditHost(tick uint64, fn func(h *HostTransform3D)) {
	defer func() {
		c.local = TransformFromHost3D(c.host)
		c.changedTick = tick
		c.localDirty = true
	}()
	fn(&c.host)
}

// setFromHost imports a host-side change, marking it already synchronized.
func (c *Transform3D) setFromHost(h HostTransform3D, tick uint64) {
	c.host = h
	c.local = TransformFromHost3D(h)
	c.changedTick = tick
	c.localDirty = false
}

// dirty reports whether the component holds an un-pushed entity-side change.
func (c *Transform3D) dirty() bool {
	return c.localDirty
}

// Transform2D is the mirror component for host nodes carrying a 2D
// transform. See Transform3D for the representation and tick rules.
type Transform2D struct {
	local Transform
	host  HostTransform2D

	changedTick uint64
	localDirty  bool
}

// NewTransform2DFromHost seeds the component from a host encoding, marking
// it already synchronized.
func NewTransform2DFromHost(h HostTransform2D, tick uint64) Transform2D {
	return Transform2D{
		local:       TransformFromHost2D(h),
		host:        h,
		changedTick: tick,
	}
}

// NewTransform2D seeds the component from an entity-side value, marking it
// dirty.
func NewTransform2D(t Transform, tick uint64) Transform2D {
	return Transform2D{
		local:       t,
		host:        t.HostTransform2D(),
		changedTick: tick,
		localDirty:  true,
	}
}

// Local returns the decomposed representation.
func (c *Transform2D) Local() Transform {
	return c.local
}

// Host returns the host-native representation.
func (c *Transform2D) Host() HostTransform2D {
	return c.host
}

// EditLocal mutates the decomposed representation in place, recomputing the
// host encoding on return.
func (c *Transform2D) EditLocal(tick uint64, fn func(t *Transform)) {
	defer func() {
		c.host = c.local.HostTransform2D()
		c.changedTick = tick
		c.localDirty = true
	}()
	fn(&c.local)
}

// EditHost mutates the host-native representation in place, recomputing the
// decomposed form on return.
func (c *Transform2D) EditHost(tick uint64, fn func(h *HostTransform2D)) {
	defer func() {
		c.local = TransformFromHost2D(c.host)
		c.changedTick = tick
		c.localDirty = true
	}()
	fn(&c.host)
}

func (c *Transform2D) setFromHost(h HostTransform2D, tick uint64) {
	c.host = h
	c.local = TransformFromHost2D(h)
	c.changedTick = tick
	c.localDirty = false
}

func (c *Transform2D) dirty() bool {
	return c.localDirty
}

package secs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResource counts references like a host-side refcounted object.
type fakeResource struct {
	id        ResourceID
	refs      int
	destroyed bool
}

func (r *fakeResource) ResourceID() ResourceID { return r.id }
func (r *fakeResource) IncRef()                { r.refs++ }
func (r *fakeResource) Destroy()               { r.destroyed = true }

func (r *fakeResource) DecRef() bool {
	r.refs--
	return r.refs == 0
}

type fakeStore struct {
	resources map[ResourceID]*fakeResource
}

func (s *fakeStore) ResolveResource(id ResourceID) HostResource {
	r, ok := s.resources[id]
	if !ok || r.destroyed {
		return nil
	}
	return r
}

func TestResourceHandleRefCounting(t *testing.T) {
	res := &fakeResource{id: 1}
	store := &fakeStore{resources: map[ResourceID]*fakeResource{1: res}}

	h := NewResourceHandle(store, res)
	require.NotNil(t, h)
	assert.Equal(t, 1, res.refs)

	clone := h.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, 2, res.refs)

	h.Release()
	assert.Equal(t, 1, res.refs)
	assert.False(t, res.destroyed)

	// Release is idempotent per handle.
	h.Release()
	assert.Equal(t, 1, res.refs)

	// The last reference destroys the resource.
	clone.Release()
	assert.Equal(t, 0, res.refs)
	assert.True(t, res.destroyed)

	assert.Nil(t, clone.TryGet())
	assert.Nil(t, clone.Clone())
}

func TestResourceHandleNilSafety(t *testing.T) {
	var h *ResourceHandle
	assert.Nil(t, h.TryGet())
	assert.NotPanics(t, func() { h.Release() })
	assert.Nil(t, NewResourceHandle(&fakeStore{}, nil))
}

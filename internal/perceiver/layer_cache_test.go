package perceiver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/perceiver/internal/backend/cpu"
	"github.com/born-ml/perceiver/internal/nn"
)

func TestLayerCache_Resolve(t *testing.T) {
	backend := cpu.New()
	cache := NewLayerCache[Backend]()

	builds := 0
	build := func() *nn.LayerNorm[Backend] {
		builds++
		return nn.NewLayerNorm(4, nn.DefaultLayerNormEpsilon, backend)
	}

	t.Run("untied always builds", func(t *testing.T) {
		a := Resolve(cache, RoleCrossFF, false, build)
		b := Resolve(cache, RoleCrossFF, false, build)
		assert.NotSame(t, a, b)
		assert.Equal(t, 2, builds)
		assert.Zero(t, cache.Len())
	})

	t.Run("tied builds once", func(t *testing.T) {
		builds = 0
		a := Resolve(cache, RoleCrossFF, true, build)
		b := Resolve(cache, RoleCrossFF, true, build)
		assert.Same(t, a, b)
		assert.Equal(t, 1, builds)

		got, ok := cache.Lookup(RoleCrossFF)
		require.True(t, ok)
		assert.Same(t, a, got)

		_, ok = cache.Lookup(RoleLatentFF)
		assert.False(t, ok)
	})
}

func TestLayerCache_Inspection(t *testing.T) {
	backend := cpu.New()
	cache := NewLayerCache[Backend]()
	build := func() *nn.Linear[Backend] { return nn.NewLinear(2, 2, backend) }

	for _, role := range []Role{RoleLatentAttn, RoleCrossAttn, RoleLatentFF} {
		Resolve(cache, role, true, build)
	}
	assert.Equal(t, []Role{RoleLatentAttn, RoleCrossAttn, RoleLatentFF}, cache.Roles())
	assert.Equal(t, 3, cache.Len())

	old, _ := cache.Lookup(RoleCrossAttn)
	assert.True(t, cache.Forget(RoleCrossAttn))
	assert.False(t, cache.Forget(RoleCrossAttn))
	assert.Equal(t, []Role{RoleLatentAttn, RoleLatentFF}, cache.Roles())

	fresh := Resolve(cache, RoleCrossAttn, true, build)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, []Role{RoleLatentAttn, RoleLatentFF, RoleCrossAttn}, cache.Roles())

	cache.Reset()
	assert.Zero(t, cache.Len())
	assert.Empty(t, cache.Roles())
}

func TestLayerCache_RoleTypeMismatch(t *testing.T) {
	backend := cpu.New()
	cache := NewLayerCache[Backend]()
	Resolve(cache, RoleCrossFF, true, func() *nn.Linear[Backend] { return nn.NewLinear(2, 2, backend) })

	assert.Panics(t, func() {
		Resolve(cache, RoleCrossFF, true, func() *nn.LayerNorm[Backend] {
			return nn.NewLayerNorm(2, nn.DefaultLayerNormEpsilon, backend)
		})
	})
}

package perceiver

import (
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/born-ml/perceiver/internal/nn"
	"github.com/born-ml/perceiver/internal/tensor"
)

// Role names a sublayer position inside a layer group.
type Role string

// Sublayer roles.
const (
	RoleCrossAttn  Role = "cross_attn"
	RoleCrossFF    Role = "cross_ff"
	RoleLatentAttn Role = "latent_attn"
	RoleLatentFF   Role = "latent_ff"
)

// LayerCache is the registry of shared sublayer instances used for weight
// tying. It maps a Role to the one instance every tied position of that role
// reuses. Entries keep the order in which they were first built.
//
// A LayerCache is safe for concurrent use.
type LayerCache[B tensor.Backend] struct {
	mu      sync.Mutex
	entries *orderedmap.OrderedMap[Role, nn.Parameterized[B]]
}

// NewLayerCache returns an empty registry.
func NewLayerCache[B tensor.Backend]() *LayerCache[B] {
	return &LayerCache[B]{
		entries: orderedmap.New[Role, nn.Parameterized[B]](),
	}
}

// Resolve returns the instance for role.
//
// When tied is false build is always called and the result is not recorded.
// When tied is true the registered instance is returned, and build runs only
// if none is registered yet; its result becomes the shared instance.
//
// Panics if the instance registered for role is not an L.
func Resolve[B tensor.Backend, L nn.Parameterized[B]](c *LayerCache[B], role Role, tied bool, build func() L) L {
	if !tied {
		return build()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries.Get(role); ok {
		layer, ok := existing.(L)
		if !ok {
			panic(fmt.Sprintf("LayerCache.Resolve: role %q holds %T", role, existing))
		}
		return layer
	}

	layer := build()
	c.entries.Set(role, layer)
	return layer
}

// Lookup returns the shared instance registered for role.
func (c *LayerCache[B]) Lookup(role Role) (nn.Parameterized[B], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Get(role)
}

// Roles returns the registered roles in registration order.
func (c *LayerCache[B]) Roles() []Role {
	c.mu.Lock()
	defer c.mu.Unlock()

	roles := make([]Role, 0, c.entries.Len())
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		roles = append(roles, pair.Key)
	}
	return roles
}

// Len returns the number of registered roles.
func (c *LayerCache[B]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Forget drops the instance registered for role. The next tied Resolve for
// the role builds a new one. Layers already holding the old instance keep it.
func (c *LayerCache[B]) Forget(role Role) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, present := c.entries.Delete(role)
	return present
}

// Reset drops every registered instance.
func (c *LayerCache[B]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = orderedmap.New[Role, nn.Parameterized[B]]()
}

// Package scene implements the scene graph: nodes owning child nodes and
// components, dirty-flag gated updates and the component kinds the viewer
// needs (transforms, cameras, lights, renderers and input driven behaviours).
//
// A scene is driven from a single thread. Input signals may fire from other
// goroutines only when the platform layer does so; behaviours then run on
// that goroutine.
package scene

import (
	"glscene/pkg/ident"
)

// Component is a capability attached to exactly one Node for its whole life.
type Component interface {
	ID() ident.ID
	// Node returns the node the component was constructed for.
	Node() *Node
	Name() string
	// Prepare allocates resources once before the first frame.
	Prepare() error
	// Update recomputes derived state while the owning node is updated.
	Update()
	// Destroy releases resources. It is called once, when the node is
	// destroyed.
	Destroy()
}

// BaseComponent carries the identity and node back-reference every component
// needs. Embed it and override the hooks that matter.
type BaseComponent struct {
	ident.Object
	node *Node
	name string
}

// NewBaseComponent binds a component base to n.
func NewBaseComponent(n *Node, name string) BaseComponent {
	return BaseComponent{Object: ident.New(), node: n, name: name}
}

func (c *BaseComponent) Node() *Node    { return c.node }
func (c *BaseComponent) Name() string   { return c.name }
func (c *BaseComponent) Prepare() error { return nil }
func (c *BaseComponent) Update()        {}
func (c *BaseComponent) Destroy()       {}

// transform returns the Transform of the owning node, if any.
func (c *BaseComponent) transform() *Transform {
	if c.node == nil {
		return nil
	}
	t, _ := GetComponent[*Transform](c.node)
	return t
}

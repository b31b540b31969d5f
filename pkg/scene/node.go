package scene

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"glscene/internal/logger"
	"glscene/pkg/ident"
	"glscene/pkg/signal"
)

var (
	ErrNilNode       = errors.New("scene: nil node")
	ErrHasParent     = errors.New("scene: node already has a parent")
	ErrNotChild      = errors.New("scene: node is not a child")
	ErrCycle         = errors.New("scene: node would become its own ancestor")
	ErrForeignOwner  = errors.New("scene: component was constructed for another node")
	ErrNodeDestroyed = errors.New("scene: node destroyed")
)

// Node is an entry of the scene graph. A node owns its children and its
// components; the parent link is a plain back-reference.
type Node struct {
	ident.Object

	// Updated fires after the node's components were updated and before its
	// children are.
	Updated signal.Event[*Node]

	name       string
	parent     *Node
	children   []*Node
	components []Component
	// lookup caches components per queried type, in attachment order
	lookup map[reflect.Type][]Component

	dirty     bool
	updating  bool
	remarked  bool
	destroyed bool
}

// NewNode returns a parentless node. New nodes start dirty.
func NewNode(name string) *Node {
	return &Node{
		Object: ident.New(),
		name:   name,
		lookup: make(map[reflect.Type][]Component),
		dirty:  true,
	}
}

func (n *Node) Name() string { return n.name }

func (n *Node) SetName(name string) { n.name = name }

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("node#%d", n.ID())
}

// Parent returns the owning node, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

func (n *Node) ChildCount() int { return len(n.children) }

// Components returns a copy of the component list in attachment order.
func (n *Node) Components() []Component { return slices.Clone(n.components) }

// Dirty reports whether the node waits for an update.
func (n *Node) Dirty() bool { return n.dirty }

// Destroyed reports whether Destroy ran.
func (n *Node) Destroyed() bool { return n.destroyed }

// CreateChild appends a new child owned by n.
func (n *Node) CreateChild(name string) *Node {
	child := NewNode(name)
	n.attach(child)
	return child
}

// isAncestorOf reports whether n is other or one of other's ancestors.
func (n *Node) isAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// AddChild moves a parentless node under n. A node that already has a parent
// is refused; use SetParent to move it.
func (n *Node) AddChild(child *Node) error {
	var err error
	switch {
	case child == nil:
		err = ErrNilNode
	case child.destroyed:
		err = ErrNodeDestroyed
	case child.parent != nil:
		err = fmt.Errorf("%w: %s is under %s", ErrHasParent, child, child.parent)
	case child.isAncestorOf(n):
		err = fmt.Errorf("%w: %s under %s", ErrCycle, child, n)
	}
	if err != nil {
		logger.Default().Warnf("add child to %s: %v", n, err)
		return err
	}
	n.attach(child)
	return nil
}

func (n *Node) attach(child *Node) {
	child.parent = n
	n.children = append(n.children, child)
	// the subtree now lives in a new frame
	child.NeedUpdate(true, true)
}

func (n *Node) detachChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// RemoveChild detaches child and destroys it with its subtree.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil || !n.detachChild(child) {
		err := fmt.Errorf("%w: %s of %s", ErrNotChild, child, n)
		logger.Default().Warnf("remove child: %v", err)
		return err
	}
	child.Destroy()
	return nil
}

// Detach takes n out of its parent without destroying it. The caller owns the
// returned node.
func (n *Node) Detach() *Node {
	if n.parent != nil {
		n.parent.detachChild(n)
	}
	return n
}

// SetParent moves n under parent. The move is checked before n leaves its
// current parent, so a refused move keeps the tree unchanged.
func (n *Node) SetParent(parent *Node) error {
	if parent == nil {
		logger.Default().Warnf("set parent of %s: %v", n, ErrNilNode)
		return ErrNilNode
	}
	if parent == n.parent {
		return nil
	}
	if n.isAncestorOf(parent) {
		err := fmt.Errorf("%w: %s under %s", ErrCycle, n, parent)
		logger.Default().Warnf("set parent: %v", err)
		return err
	}
	if parent.destroyed {
		return ErrNodeDestroyed
	}
	n.Detach()
	parent.attach(n)
	return nil
}

// Find returns the first node named name in depth-first order, n included.
func (n *Node) Find(name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Walk calls fn for n and every descendant, parents before children.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// AddComponent constructs a component for n and appends it to n's component
// list. Constructors receive the node so the component can keep its
// back-reference from the start.
func AddComponent[T Component](n *Node, ctor func(*Node) (T, error)) (T, error) {
	var zero T
	if n.destroyed {
		return zero, ErrNodeDestroyed
	}
	c, err := ctor(n)
	if err != nil {
		return zero, fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), n, err)
	}
	if c.Node() != n {
		c.Destroy()
		return zero, fmt.Errorf("add %s to %s: %w", reflect.TypeFor[T](), n, ErrForeignOwner)
	}
	n.components = append(n.components, c)
	ct := reflect.TypeOf(c)
	for t, list := range n.lookup {
		if ct.AssignableTo(t) {
			n.lookup[t] = append(list, c)
		}
	}
	n.NeedUpdate(true, false)
	return c, nil
}

func componentsOf[T Component](n *Node) []Component {
	t := reflect.TypeFor[T]()
	if list, ok := n.lookup[t]; ok {
		return list
	}
	var list []Component
	for _, c := range n.components {
		if _, ok := c.(T); ok {
			list = append(list, c)
		}
	}
	if list == nil {
		list = []Component{}
	}
	n.lookup[t] = list
	return list
}

// GetComponent returns the first attached component assignable to T.
func GetComponent[T Component](n *Node) (T, bool) {
	if n == nil {
		var zero T
		return zero, false
	}
	list := componentsOf[T](n)
	if len(list) == 0 {
		var zero T
		return zero, false
	}
	return list[0].(T), true
}

// GetComponents appends every component assignable to T to out. With
// recursive set the descendants are visited depth-first after n.
func GetComponents[T Component](n *Node, out []T, recursive bool) []T {
	for _, c := range componentsOf[T](n) {
		out = append(out, c.(T))
	}
	if recursive {
		for _, child := range n.children {
			out = GetComponents(child, out, true)
		}
	}
	return out
}

// NeedUpdate marks n dirty. notifyParent marks the ancestors so the update
// pass reaches n; notifyChildren marks the whole subtree. Marks made while a
// node is inside its own Update are kept for the next pass.
func (n *Node) NeedUpdate(notifyParent, notifyChildren bool) {
	if n.updating {
		n.remarked = true
	} else {
		n.dirty = true
	}
	if notifyParent && n.parent != nil {
		n.parent.NeedUpdate(true, false)
	}
	if notifyChildren {
		for _, c := range n.children {
			c.NeedUpdate(false, true)
		}
	}
}

// Update recomputes a dirty node: components first, then Updated, then the
// children. A clean node returns immediately.
func (n *Node) Update() {
	if !n.dirty || n.destroyed {
		return
	}
	n.updating = true
	n.remarked = false
	for _, c := range n.components {
		c.Update()
		// a component may destroy its own node
		if n.destroyed {
			n.updating = false
			return
		}
	}
	n.Updated.Fire(n)
	for _, c := range slices.Clone(n.children) {
		c.Update()
	}
	n.updating = false
	n.dirty = n.remarked
	n.remarked = false
}

// Destroy tears down the subtree: children first, then components in reverse
// attachment order. The node is detached from its parent.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.Detach()
	n.destroyed = true
	for _, c := range slices.Clone(n.children) {
		c.parent = nil
		c.Destroy()
	}
	n.children = nil
	for i := len(n.components) - 1; i >= 0; i-- {
		n.components[i].Destroy()
	}
	n.components = nil
	clear(n.lookup)
	n.Updated.Close()
}

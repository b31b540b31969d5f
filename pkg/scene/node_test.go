package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	BaseComponent
	tag     string
	updates int
	onUpd   func()
}

func (c *tagged) Update() {
	c.updates++
	if c.onUpd != nil {
		c.onUpd()
	}
}

type otherTagged struct {
	BaseComponent
}

func newTagged(tag string) func(*Node) (*tagged, error) {
	return func(n *Node) (*tagged, error) {
		return &tagged{BaseComponent: NewBaseComponent(n, tag), tag: tag}, nil
	}
}

func newOther(n *Node) (*otherTagged, error) {
	return &otherTagged{BaseComponent: NewBaseComponent(n, "other")}, nil
}

func TestGetComponentReturnsFirstAttached(t *testing.T) {
	n := NewNode("n")
	first, err := AddComponent(n, newTagged("first"))
	require.NoError(t, err)
	_, err = AddComponent(n, newOther)
	require.NoError(t, err)

	// query once before the second A so the cached list must be extended
	got, ok := GetComponent[*tagged](n)
	require.True(t, ok)
	assert.Same(t, first, got)

	second, err := AddComponent(n, newTagged("second"))
	require.NoError(t, err)

	for range 3 {
		got, ok = GetComponent[*tagged](n)
		require.True(t, ok)
		assert.Same(t, first, got)
	}
	all := GetComponents[*tagged](n, nil, false)
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])

	// interface queries see every component in attachment order
	comps := GetComponents[Component](n, nil, false)
	require.Len(t, comps, 3)
	assert.Equal(t, "other", comps[1].Name())

	_, ok = GetComponent[*Transform](n)
	assert.False(t, ok)
}

func TestGetComponentsRecursiveDepthFirst(t *testing.T) {
	root := NewNode("root")
	a := root.CreateChild("a")
	a1 := a.CreateChild("a1")
	b := root.CreateChild("b")
	for _, n := range []*Node{root, a, a1, b} {
		_, err := AddComponent(n, newTagged(n.Name()))
		require.NoError(t, err)
	}

	var tags []string
	for _, c := range GetComponents[*tagged](root, nil, true) {
		tags = append(tags, c.tag)
	}
	assert.Equal(t, []string{"root", "a", "a1", "b"}, tags)
}

func TestAddComponentRejectsForeignNode(t *testing.T) {
	n, other := NewNode("n"), NewNode("other")
	_, err := AddComponent(n, func(*Node) (*tagged, error) {
		return &tagged{BaseComponent: NewBaseComponent(other, "x")}, nil
	})
	assert.ErrorIs(t, err, ErrForeignOwner)
	assert.Empty(t, n.Components())

	_, err = AddComponent(n, func(*Node) (*tagged, error) { return nil, assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAddChildRefusesParentedNode(t *testing.T) {
	p1, p2 := NewNode("p1"), NewNode("p2")
	child := p1.CreateChild("child")

	err := p2.AddChild(child)
	assert.ErrorIs(t, err, ErrHasParent)
	assert.Equal(t, 0, p2.ChildCount())
	assert.Same(t, p1, child.Parent())

	assert.ErrorIs(t, p2.AddChild(nil), ErrNilNode)
	assert.ErrorIs(t, child.AddChild(p1), ErrCycle)
	assert.ErrorIs(t, child.AddChild(child.Detach()), ErrCycle)
}

func TestSetParentMovesNode(t *testing.T) {
	p1, p2 := NewNode("p1"), NewNode("p2")
	child := p1.CreateChild("child")
	grand := child.CreateChild("grand")

	require.NoError(t, child.SetParent(p2))
	assert.Same(t, p2, child.Parent())
	assert.Equal(t, 0, p1.ChildCount())
	assert.Equal(t, []*Node{child}, p2.Children())

	// refused moves leave the tree untouched
	assert.ErrorIs(t, child.SetParent(grand), ErrCycle)
	assert.ErrorIs(t, child.SetParent(nil), ErrNilNode)
	assert.Same(t, p2, child.Parent())

	require.NoError(t, child.SetParent(p2))
	assert.Equal(t, 1, p2.ChildCount())
}

func TestRemoveChildDestroysSubtree(t *testing.T) {
	root := NewNode("root")
	child := root.CreateChild("child")
	grand := child.CreateChild("grand")
	_, err := AddComponent(grand, newTransformHeadless)
	require.NoError(t, err)

	stranger := NewNode("stranger")
	assert.ErrorIs(t, root.RemoveChild(stranger), ErrNotChild)

	require.NoError(t, root.RemoveChild(child))
	assert.Equal(t, 0, root.ChildCount())
	assert.True(t, child.Destroyed())
	assert.True(t, grand.Destroyed())
	assert.Empty(t, grand.Components())
	assert.Nil(t, grand.Parent())

	_, err = AddComponent(grand, newTagged("late"))
	assert.ErrorIs(t, err, ErrNodeDestroyed)
}

func TestNeedUpdatePropagation(t *testing.T) {
	root := NewNode("root")
	a := root.CreateChild("a")
	b := root.CreateChild("b")
	a1 := a.CreateChild("a1")
	root.Update()
	for _, n := range []*Node{root, a, b, a1} {
		require.False(t, n.Dirty(), n.Name())
	}

	a.NeedUpdate(true, false)
	assert.True(t, root.Dirty())
	assert.True(t, a.Dirty())
	assert.False(t, b.Dirty())
	assert.False(t, a1.Dirty())
	root.Update()

	a.NeedUpdate(false, true)
	assert.False(t, root.Dirty())
	assert.True(t, a1.Dirty())
	root.Update()
	// the root was clean so the pass never reached them
	assert.True(t, a1.Dirty())

	a1.NeedUpdate(true, true)
	root.Update()
	for _, n := range []*Node{root, a, b, a1} {
		assert.False(t, n.Dirty(), n.Name())
	}
}

func TestUpdateOrderAndSignal(t *testing.T) {
	root := NewNode("root")
	child := root.CreateChild("child")
	var order []string
	rc, _ := AddComponent(root, newTagged("root"))
	rc.onUpd = func() { order = append(order, "root component") }
	cc, _ := AddComponent(child, newTagged("child"))
	cc.onUpd = func() { order = append(order, "child component") }
	root.Updated.Connect(func(n *Node) { order = append(order, "root updated") })

	root.Update()
	assert.Equal(t, []string{"root component", "root updated", "child component"}, order)

	root.Update()
	assert.Len(t, order, 3)
}

func TestMarkDuringOwnUpdateIsKept(t *testing.T) {
	root := NewNode("root")
	n := root.CreateChild("n")
	c, _ := AddComponent(n, newTagged("self"))
	c.onUpd = func() {
		if c.updates == 1 {
			n.NeedUpdate(true, true)
		}
	}

	root.Update()
	assert.Equal(t, 1, c.updates)
	assert.True(t, n.Dirty())
	assert.True(t, root.Dirty())

	root.Update()
	assert.Equal(t, 2, c.updates)
	assert.False(t, n.Dirty())
	assert.False(t, root.Dirty())
}

func TestFindAndWalk(t *testing.T) {
	root := NewNode("root")
	a := root.CreateChild("a")
	a.CreateChild("target")
	root.CreateChild("b")

	assert.Equal(t, "target", root.Find("target").Name())
	assert.Nil(t, root.Find("missing"))

	var names []string
	root.Walk(func(n *Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"root", "a", "target", "b"}, names)
}

func newTransformHeadless(n *Node) (*Transform, error) {
	return NewTransform(nil)(n)
}

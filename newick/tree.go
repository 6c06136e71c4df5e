package newick

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

// NodeID indexes a node within one Tree.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// NodeKind tells leaves and internal nodes apart.
type NodeKind uint8

const (
	Leaf NodeKind = iota
	Internal
)

func (k NodeKind) String() string {
	if k == Leaf {
		return "leaf"
	}
	return "internal"
}

// Length is the length of the branch between a node and its parent. A
// missing length is different from a length of zero.
type Length struct {
	value float64
	ok    bool
}

// NewLength returns a present branch length.
func NewLength(v float64) Length {
	return Length{value: v, ok: true}
}

// Value returns the length and whether it is present.
func (l Length) Value() (float64, bool) {
	return l.value, l.ok
}

// Valid reports whether the length is present.
func (l Length) Valid() bool {
	return l.ok
}

func (l Length) String() string {
	if !l.ok {
		return "none"
	}
	return fmt.Sprintf("%g", l.value)
}

// Node is one vertex of a Tree. A leaf refers to its taxon by id only; an
// internal node may carry a free-form label that is not a taxon.
type Node struct {
	kind   NodeKind
	parent NodeID
	taxon  taxon.ID
	first  int32
	nkids  int32
	label  string
	length Length
}

// Kind returns whether n is a leaf or an internal node.
func (n Node) Kind() NodeKind { return n.kind }

// IsLeaf reports whether n is a leaf.
func (n Node) IsLeaf() bool { return n.kind == Leaf }

// Taxon returns the taxon of a leaf. The boolean is false for internal nodes.
func (n Node) Taxon() (taxon.ID, bool) { return n.taxon, n.kind == Leaf }

// Label returns the label of an internal node, or "" if it has none.
func (n Node) Label() string { return n.label }

// Length returns the length of the branch to the parent.
func (n Node) Length() Length { return n.length }

// Parent returns the parent of n, which is NoNode for the root.
func (n Node) Parent() NodeID { return n.parent }

// Tree is a parsed phylogeny. Its nodes live in a single slice and refer to
// each other by NodeID; child lists share one backing slice. Leaves store
// taxon ids that are resolved against Taxa. A Tree is never modified after
// it has been built.
type Tree struct {
	nodes   []Node
	kids    []NodeID
	root    NodeID
	nleaves int
	taxa    *taxon.Dictionary
}

// Taxa returns the dictionary the leaf ids of t refer to. Trees read from
// the same source share the same dictionary value.
func (t *Tree) Taxa() *taxon.Dictionary { return t.taxa }

// Root returns the root node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int { return t.nleaves }

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) Node { return t.nodes[id] }

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].parent }

// NumChildren returns the number of children of id.
func (t *Tree) NumChildren(id NodeID) int { return int(t.nodes[id].nkids) }

// Child returns the i'th child of id, in input order.
func (t *Tree) Child(id NodeID, i int) NodeID {
	n := t.nodes[id]
	if i < 0 || i >= int(n.nkids) {
		panic(fmt.Sprintf("Child index %d out of range for node %d with "+
			"%d children.", i, id, n.nkids))
	}
	return t.kids[int(n.first)+i]
}

// Children returns a copy of the children of id, in input order.
func (t *Tree) Children(id NodeID) []NodeID {
	n := t.nodes[id]
	kids := make([]NodeID, n.nkids)
	copy(kids, t.kids[n.first:n.first+n.nkids])
	return kids
}

// PreOrder calls visit for every node, parents before children and
// children in input order.
func (t *Tree) PreOrder(visit func(id NodeID)) {
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(id)

		n := t.nodes[id]
		for i := n.nkids - 1; i >= 0; i-- {
			stack = append(stack, t.kids[n.first+i])
		}
	}
}

// PostOrder calls visit for every node, children (in input order) before
// their parent.
func (t *Tree) PostOrder(visit func(id NodeID)) {
	type frame struct {
		id   NodeID
		next int32
	}
	stack := []frame{{id: t.root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := t.nodes[top.id]
		if top.next < n.nkids {
			child := t.kids[n.first+top.next]
			top.next++
			stack = append(stack, frame{id: child})
			continue
		}
		stack = stack[:len(stack)-1]
		visit(top.id)
	}
}

// Leaves returns all leaves in pre-order.
func (t *Tree) Leaves() []NodeID {
	leaves := make([]NodeID, 0, t.nleaves)
	t.PreOrder(func(id NodeID) {
		if t.nodes[id].kind == Leaf {
			leaves = append(leaves, id)
		}
	})
	return leaves
}

// LeafTaxa returns the taxon ids of all leaves in pre-order.
func (t *Tree) LeafTaxa() []taxon.ID {
	ids := make([]taxon.ID, 0, t.nleaves)
	for _, leaf := range t.Leaves() {
		ids = append(ids, t.nodes[leaf].taxon)
	}
	return ids
}

// Find returns the leaf holding the given taxon.
func (t *Tree) Find(id taxon.ID) (NodeID, bool) {
	for i := range t.nodes {
		if t.nodes[i].kind == Leaf && t.nodes[i].taxon == id {
			return NodeID(i), true
		}
	}
	return NoNode, false
}

// Validate checks the structural invariants of t: every node is reachable
// from the root exactly once, parent and child links agree, leaf taxa are
// valid in the dictionary and no taxon occurs twice.
func (t *Tree) Validate() error {
	bad := func(format string, v ...interface{}) error {
		return fmt.Errorf("Invalid tree: %s", fmt.Sprintf(format, v...))
	}
	if len(t.nodes) == 0 {
		return bad("no nodes")
	}
	if t.root < 0 || int(t.root) >= len(t.nodes) {
		return bad("root %d out of range", t.root)
	}
	if t.nodes[t.root].parent != NoNode {
		return bad("root %d has parent %d", t.root, t.nodes[t.root].parent)
	}

	visited := make([]bool, len(t.nodes))
	seen := make(map[taxon.ID]bool, t.nleaves)
	leaves := 0
	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			return bad("node %d is reachable twice", id)
		}
		visited[id] = true

		n := t.nodes[id]
		switch n.kind {
		case Leaf:
			leaves++
			if n.nkids != 0 {
				return bad("leaf %d has children", id)
			}
			if t.taxa != nil && !t.taxa.Valid(n.taxon) {
				return bad("leaf %d has unknown taxon %d", id, n.taxon)
			}
			if seen[n.taxon] {
				return bad("taxon %d appears twice", n.taxon)
			}
			seen[n.taxon] = true
		case Internal:
			if n.nkids == 0 {
				return bad("internal node %d has no children", id)
			}
			for _, kid := range t.kids[n.first : n.first+n.nkids] {
				if kid < 0 || int(kid) >= len(t.nodes) {
					return bad("node %d has child %d out of range", id, kid)
				}
				if t.nodes[kid].parent != id {
					return bad("child %d of node %d has parent %d",
						kid, id, t.nodes[kid].parent)
				}
				stack = append(stack, kid)
			}
		}
	}
	for id, ok := range visited {
		if !ok {
			return bad("node %d is not reachable from the root", id)
		}
	}
	if leaves != t.nleaves {
		return bad("counted %d leaves, expected %d", leaves, t.nleaves)
	}
	return nil
}

// String converts a tree to a string, with whitespace indenting to indicate
// depth. Leaves are shown with their taxon names.
func (t *Tree) String() string {
	buf := new(bytes.Buffer)
	pf := func(format string, v ...interface{}) {
		fmt.Fprintf(buf, format, v...)
	}

	var out func(id NodeID, depth int)
	out = func(id NodeID, depth int) {
		n := t.nodes[id]
		name, length := n.label, ""
		if n.kind == Leaf {
			name = t.taxonName(n.taxon)
		}
		if len(name) == 0 {
			name = "N/A"
		}
		if n.length.ok {
			length = fmt.Sprintf(" (%f)", n.length.value)
		}
		pf("%s%s%s\n", strings.Repeat("  ", depth), name, length)
		for _, kid := range t.kids[n.first : n.first+n.nkids] {
			out(kid, depth+1)
		}
	}
	out(t.root, 0)
	return buf.String()
}

func (t *Tree) taxonName(id taxon.ID) string {
	if t.taxa == nil || !t.taxa.Valid(id) {
		return fmt.Sprintf("#%d", id)
	}
	return t.taxa.Name(id)
}

// builder accumulates nodes bottom-up. Children are always added before
// their parent, so the root ends up as the last node.
type builder struct {
	nodes   []Node
	kids    []NodeID
	nleaves int
	seen    []bool
}

func newBuilder(sizeHint int) *builder {
	if sizeHint < 4 {
		sizeHint = 4
	}
	return &builder{
		nodes: make([]Node, 0, 2*sizeHint),
		kids:  make([]NodeID, 0, 2*sizeHint),
		seen:  make([]bool, sizeHint),
	}
}

func (b *builder) leaf(id taxon.ID, length Length, pos parseerr.Position,
	name string) (NodeID, error) {

	for int(id) >= len(b.seen) {
		b.seen = append(b.seen, make([]bool, len(b.seen)+1)...)
	}
	if b.seen[id] {
		return NoNode, parseerr.New(parseerr.DuplicateLeaf, pos,
			"Taxon '%s' occurs more than once in the tree.", name)
	}
	b.seen[id] = true

	b.nodes = append(b.nodes, Node{
		kind:   Leaf,
		parent: NoNode,
		taxon:  id,
		length: length,
	})
	b.nleaves++
	return NodeID(len(b.nodes) - 1), nil
}

func (b *builder) internal(children []NodeID, label string,
	length Length) NodeID {

	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, Node{
		kind:   Internal,
		parent: NoNode,
		first:  int32(len(b.kids)),
		nkids:  int32(len(children)),
		label:  label,
		length: length,
	})
	for _, kid := range children {
		b.nodes[kid].parent = id
	}
	b.kids = append(b.kids, children...)
	return id
}

func (b *builder) tree(root NodeID, taxa *taxon.Dictionary) *Tree {
	return &Tree{
		nodes:   b.nodes,
		kids:    b.kids,
		root:    root,
		nleaves: b.nleaves,
		taxa:    taxa,
	}
}

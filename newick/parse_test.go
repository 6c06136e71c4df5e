package newick

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

func leafNames(tree *Tree) []string {
	var names []string
	for _, id := range tree.LeafTaxa() {
		names = append(names, tree.Taxa().Name(id))
	}
	return names
}

// topology writes tree back out as Newick, labels and lengths omitted.
func topology(tree *Tree) string {
	var out func(id NodeID) string
	out = func(id NodeID) string {
		n := tree.Node(id)
		if n.IsLeaf() {
			tx, _ := n.Taxon()
			return tree.Taxa().Name(tx)
		}
		parts := make([]string, 0, tree.NumChildren(id))
		for _, kid := range tree.Children(id) {
			parts = append(parts, out(kid))
		}
		return "(" + strings.Join(parts, ",") + ")"
	}
	return out(tree.Root()) + ";"
}

// canonical renders a topology with children sorted, so that isomorphic
// trees render identically.
func canonical(tree *Tree) string {
	var out func(id NodeID) string
	out = func(id NodeID) string {
		n := tree.Node(id)
		if n.IsLeaf() {
			tx, _ := n.Taxon()
			return tree.Taxa().Name(tx)
		}
		var parts []string
		for _, kid := range tree.Children(id) {
			parts = append(parts, out(kid))
		}
		sort.Strings(parts)
		return "(" + strings.Join(parts, ",") + ")"
	}
	return out(tree.Root())
}

func TestParseBranchLengths(t *testing.T) {
	tree, taxa, err := Parse("(A:1.0,(B:2.0,C:3.0):4.0);")
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	assert.Equal(t, 3, taxa.Len())
	assert.True(t, taxa.Frozen())
	assert.Same(t, taxa, tree.Taxa())
	assert.Equal(t, 3, tree.NumLeaves())
	assert.Equal(t, []string{"A", "B", "C"}, leafNames(tree))

	root := tree.Node(tree.Root())
	assert.False(t, root.Length().Valid())
	assert.Equal(t, NoNode, root.Parent())
	require.Equal(t, 2, tree.NumChildren(tree.Root()))

	inner := tree.Child(tree.Root(), 1)
	assert.Equal(t, Internal, tree.Node(inner).Kind())
	v, ok := tree.Node(inner).Length().Value()
	require.True(t, ok)
	assert.Equal(t, 4.0, v)

	want := map[string]float64{"A": 1.0, "B": 2.0, "C": 3.0}
	for name, length := range want {
		id, err := taxa.ID(name)
		require.NoError(t, err)
		leaf, ok := tree.Find(id)
		require.True(t, ok, name)
		v, ok := tree.Node(leaf).Length().Value()
		require.True(t, ok, name)
		assert.Equal(t, length, v, name)
	}
}

func TestParseMissingLengthIsNotZero(t *testing.T) {
	tree, taxa, err := Parse("(A:0,B);")
	require.NoError(t, err)

	a, _ := taxa.ID("A")
	b, _ := taxa.ID("B")
	na, _ := tree.Find(a)
	nb, _ := tree.Find(b)

	v, ok := tree.Node(na).Length().Value()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.False(t, tree.Node(nb).Length().Valid())
}

func TestParseNegativeLength(t *testing.T) {
	tree, _, err := Parse("(A:-1.5,B:0.0);")
	require.NoError(t, err)
	v, ok := tree.Node(tree.Child(tree.Root(), 0)).Length().Value()
	require.True(t, ok)
	assert.Equal(t, -1.5, v)
}

func TestParseOutOfRangeLength(t *testing.T) {
	tree, _, err := Parse("(A:1e999,B:-1e999,C:1e-999);")
	require.NoError(t, err)
	want := []float64{math.Inf(1), math.Inf(-1), 0}
	for i, w := range want {
		v, ok := tree.Node(tree.Child(tree.Root(), i)).Length().Value()
		require.True(t, ok)
		assert.Equal(t, w, v)
	}
}

func TestParseInternalLabels(t *testing.T) {
	tree, taxa, err := Parse("(A,B,(X,Y)C)ROOT;")
	require.NoError(t, err)
	assert.Equal(t, "ROOT", tree.Node(tree.Root()).Label())
	assert.Equal(t, "C", tree.Node(tree.Child(tree.Root(), 2)).Label())

	// Internal labels are not taxa.
	assert.Equal(t, []string{"A", "B", "X", "Y"}, taxa.Names())
	_, ok := taxa.Lookup("C")
	assert.False(t, ok)
}

func TestParsePolytomyOrder(t *testing.T) {
	tree, _, err := Parse("(D,C,B,A,E);")
	require.NoError(t, err)
	assert.Equal(t, 5, tree.NumChildren(tree.Root()))
	assert.Equal(t, []string{"D", "C", "B", "A", "E"}, leafNames(tree))
	assert.Equal(t, "(D,C,B,A,E);", topology(tree))
}

func TestParseSingleLeafAndUnary(t *testing.T) {
	tree, taxa, err := Parse("A;")
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.True(t, tree.Node(tree.Root()).IsLeaf())
	assert.Equal(t, 1, taxa.Len())

	tree, _, err = Parse("((A));")
	require.NoError(t, err)
	require.NoError(t, tree.Validate())
	assert.Equal(t, 3, tree.Len())
}

func TestParseQuotedAndComments(t *testing.T) {
	tree, taxa, err := Parse("[&R] ('Homo sapiens':1, 'it''s' [x], Pan_troglodytes);\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Homo sapiens", "it's", "Pan_troglodytes"},
		taxa.Names())
	assert.Equal(t, 3, tree.NumLeaves())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  parseerr.Kind
	}{
		{"((A,B);", parseerr.UnbalancedParens},
		{"((A,B)", parseerr.UnbalancedParens},
		{"(A,B));", parseerr.UnbalancedParens},
		{");", parseerr.UnbalancedParens},
		{"(A,B)", parseerr.MissingTerminator},
		{"(A,B); (C,D);", parseerr.MissingTerminator},
		{"(A,B)C D;", parseerr.MissingTerminator},
		{"();", parseerr.EmptyTree},
		{"(A,());", parseerr.EmptyTree},
		{";", parseerr.EmptyTree},
		{"", parseerr.EmptyTree},
		{"  [only a comment] ", parseerr.EmptyTree},
		{"(A,(A,B));", parseerr.DuplicateLeaf},
		{"(A,B[&x]);", parseerr.UnsupportedAnnotation},
		{"(A,);", parseerr.UnexpectedToken},
		{"(,A);", parseerr.UnexpectedToken},
		{"(A B);", parseerr.UnexpectedToken},
		{"('',A);", parseerr.UnexpectedToken},
	}
	for _, test := range tests {
		tree, taxa, err := Parse(test.input)
		require.Error(t, err, test.input)
		assert.Nil(t, tree, test.input)
		assert.Nil(t, taxa, test.input)
		assert.True(t, errors.Is(err, test.kind),
			"%q: expected %s, got %v", test.input, test.kind, err)

		var perr *parseerr.Error
		require.True(t, errors.As(err, &perr), test.input)
		assert.True(t, perr.Pos.IsValid(), test.input)
	}
}

func TestParseDuplicateLeafPosition(t *testing.T) {
	_, _, err := Parse("(A,\n(A,B));")
	var perr *parseerr.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parseerr.DuplicateLeaf, perr.Kind)
	assert.Equal(t, 2, perr.Pos.Line)
	assert.Equal(t, 2, perr.Pos.Column)
	assert.Equal(t, 5, perr.Pos.Offset)
}

func TestParserResolverErrorPropagates(t *testing.T) {
	taxa := taxon.NewDictionary()
	_, _ = taxa.Insert("A")
	taxa.Freeze()

	custom := errors.New("custom resolver failure")
	p := NewParser(taxa, func(label string) (taxon.ID, error) {
		if label == "B" {
			return 0, custom
		}
		return taxa.ID(label)
	})
	_, err := p.Parse("(A,B);")
	assert.Equal(t, custom, err)

	_, err = p.Parse("(A,C);")
	var perr *parseerr.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parseerr.UnknownTaxonName, perr.Kind)
	assert.Equal(t, 3, perr.Pos.Offset)
}

func TestParseAt(t *testing.T) {
	taxa := taxon.NewDictionary()
	p := NewParser(taxa, NewCollector(taxa).Resolve)
	at := parseerr.Position{Offset: 100, Line: 10, Column: 5}
	_, err := p.ParseAt("(A,A);", at)

	var perr *parseerr.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parseerr.Position{Offset: 103, Line: 10, Column: 8}, perr.Pos)
}

func TestParseAll(t *testing.T) {
	trees, taxa, err := ParseAll("(A,B,(X,Y)C)ROOT;\n(A,B,Z)ROOT;\n")
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, []string{"A", "B", "X", "Y", "Z"}, taxa.Names())
	for _, tree := range trees {
		assert.Same(t, taxa, tree.Taxa())
		require.NoError(t, tree.Validate())
	}

	_, _, err = ParseAll("(A,B);(C,C);")
	assert.True(t, errors.Is(err, parseerr.DuplicateLeaf))

	trees, taxa, err = ParseAll("  ")
	require.NoError(t, err)
	assert.Empty(t, trees)
	assert.Equal(t, 0, taxa.Len())
}

func TestCollectorDiscard(t *testing.T) {
	taxa := taxon.NewDictionary()
	c := NewCollector(taxa)
	p := NewParser(taxa, c.Resolve)

	_, err := p.Parse("(A,(B,A));")
	require.Error(t, err)
	c.Discard()
	assert.Equal(t, 0, taxa.Len())

	_, err = p.Parse("(C,B);")
	require.NoError(t, err)
	require.NoError(t, c.Commit())
	assert.Equal(t, []string{"C", "B"}, taxa.Names())

	taxa.Freeze()
	_, err = p.Parse("(C,D);")
	assert.True(t, errors.Is(err, parseerr.DictionaryFrozen))
}

// randomTopology builds a random Newick string over n uniquely labelled
// leaves, without branch lengths.
func randomTopology(rng *rand.Rand, n int) string {
	subtrees := make([]string, n)
	for i := range subtrees {
		subtrees[i] = fmt.Sprintf("t%d", i)
	}
	for len(subtrees) > 1 {
		k := 2 + rng.Intn(2)
		if k > len(subtrees) {
			k = len(subtrees)
		}
		rng.Shuffle(len(subtrees), func(i, j int) {
			subtrees[i], subtrees[j] = subtrees[j], subtrees[i]
		})
		joined := "(" + strings.Join(subtrees[:k], ",") + ")"
		subtrees = append([]string{joined}, subtrees[k:]...)
	}
	return subtrees[0] + ";"
}

func TestTopologyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 2 + rng.Intn(40)
		input := randomTopology(rng, n)

		tree, taxa, err := Parse(input)
		require.NoError(t, err, input)
		require.NoError(t, tree.Validate(), input)
		require.Equal(t, n, taxa.Len(), input)
		require.Equal(t, n, tree.NumLeaves(), input)

		names := leafNames(tree)
		sort.Strings(names)
		want := taxa.Names()
		sort.Strings(want)
		assert.Equal(t, want, names, input)

		out := topology(tree)
		assert.Equal(t, input, out)

		again, _, err := Parse(out)
		require.NoError(t, err, out)
		assert.Equal(t, canonical(tree), canonical(again))
	}
}

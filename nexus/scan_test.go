package nexus

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joklawitter/algo-phylo/parseerr"
)

func TestScan(t *testing.T) {
	doc := `#NEXUS
[ written by hand; with a semicolon ]
begin taxa;
	dimensions ntax=2;
	taxlabels A 'B;C';
end;

BEGIN Characters;
	MATRIX A ACGT B ACGT;
ENDBLOCK;
Begin TREES;
	Tree t = (A,'B;C');
End;
`
	blocks, err := Scan(doc)
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, "taxa", blocks[0].Name)
	assert.True(t, blocks[0].Is("TAXA"))
	assert.Contains(t, blocks[0].Body, "taxlabels A 'B;C';")
	assert.Equal(t, 3, blocks[0].Pos.Line)
	assert.Equal(t, 1, blocks[0].Pos.Column)

	assert.True(t, blocks[1].Is("characters"))
	assert.Contains(t, blocks[1].Body, "MATRIX")

	assert.True(t, blocks[2].Is("trees"))
	assert.Equal(t, "\n\tTree t = (A,'B;C');\n", blocks[2].Body)
	assert.Equal(t, 11, blocks[2].BodyPos.Line)
	assert.Equal(t, 13, blocks[2].BodyPos.Column)
	assert.Equal(t, doc[blocks[2].BodyPos.Offset:blocks[2].BodyPos.Offset+len(blocks[2].Body)],
		blocks[2].Body)
}

func TestScanWithoutHeader(t *testing.T) {
	blocks, err := Scan("BEGIN TREES; TREE t=(A,B); END;")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "TREES", blocks[0].Name)
}

func TestScanRepeatedBlocks(t *testing.T) {
	blocks, err := Scan("#nexus\nbegin trees; end;\nbegin trees; end;\n")
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

func TestScanEmpty(t *testing.T) {
	blocks, err := Scan("#NEXUS\n[nothing here]\n")
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  parseerr.Kind
	}{
		{"#NEXUS\nBEGIN TAXA;\nDIMENSIONS NTAX=1;", parseerr.UnclosedBlock},
		{"#NEXUS\nDIMENSIONS NTAX=1;", parseerr.UnexpectedCommand},
		{"#NEXUS\nBEGIN TAXA", parseerr.MissingTerminator},
		{"#NEXUS\nBEGIN TAXA; [oops\nEND;", parseerr.UnclosedComment},
		{"#NEXUS\nBEGIN TAXA; TAXLABELS 'A;\nEND;", parseerr.UnterminatedQuote},
		{"#NEXUS\nBEGIN ;\nEND;", parseerr.UnexpectedToken},
	}
	for _, test := range tests {
		_, err := Scan(test.input)
		require.Error(t, err, test.input)
		assert.True(t, errors.Is(err, test.kind),
			"%q: expected %s, got %v", test.input, test.kind, err)
	}
}

func TestScanErrorPosition(t *testing.T) {
	_, err := Scan("#NEXUS\n\n  FOO;\n")
	var perr *parseerr.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, parseerr.Position{Offset: 10, Line: 3, Column: 3}, perr.Pos)
}

func TestBlankComments(t *testing.T) {
	in := "A [x [y]] 'q[not]' B[\nz]"
	out := blankComments(in)
	require.Len(t, out, len(in))
	assert.Equal(t, "A"+strings.Repeat(" ", 9)+"'q[not]' B \n  ", out)
}

func TestBlankCommentsApostrophes(t *testing.T) {
	in := "Smith's [c] O'Brien 'it''s [x]' [d]"
	assert.Equal(t, "Smith's     O'Brien 'it''s [x]'    ", blankComments(in))

	blocks, err := Scan("BEGIN TREES; TREE t = (Smith's,B); END;")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, " TREE t = (Smith's,B); ", blocks[0].Body)
}

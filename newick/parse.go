package newick

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

// Resolver maps the label of a leaf to a taxon id. Errors returned by a
// resolver are passed through to the caller of the parser; errors of type
// *parseerr.Error without a position get the position of the label.
type Resolver func(label string) (taxon.ID, error)

// Parser reads Newick trees whose leaves are resolved against one
// dictionary. A Parser holds no per-tree state: if its resolver is safe for
// concurrent use, so is the Parser.
type Parser struct {
	taxa    *taxon.Dictionary
	resolve Resolver
}

// NewParser returns a parser producing trees that refer to taxa, with leaf
// labels mapped through resolve.
func NewParser(taxa *taxon.Dictionary, resolve Resolver) *Parser {
	return &Parser{taxa: taxa, resolve: resolve}
}

// Parse reads exactly one tree from text. The tree must be terminated by a
// ';' and nothing but white space and comments may follow it.
func (p *Parser) Parse(text string) (*Tree, error) {
	return p.ParseAt(text, parseerr.Start())
}

// ParseAt is like Parse, but positions in errors are computed as if text
// started at position at.
func (p *Parser) ParseAt(text string, at parseerr.Position) (*Tree, error) {
	tp := p.newTreeParser(text, at)
	tree, err := tp.readTree()
	if err == io.EOF {
		return nil, parseerr.New(parseerr.EmptyTree, at, "No tree found.")
	} else if err != nil {
		return nil, err
	}
	tp.advance()
	switch tp.tok.Kind {
	case TokenEOF:
		return tree, nil
	case TokenError:
		return nil, tp.tok.Err
	}
	return nil, parseerr.New(parseerr.MissingTerminator, tp.tok.Pos,
		"Unexpected %s after the terminating ';'.", tp.tok.Kind)
}

// Parse reads one tree from a Newick string. The leaf labels become the
// taxa of a new dictionary, in the order they first appear; the dictionary
// is frozen before it is returned.
func Parse(text string) (*Tree, *taxon.Dictionary, error) {
	taxa := taxon.NewDictionary()
	c := NewCollector(taxa)
	tree, err := NewParser(taxa, c.Resolve).Parse(text)
	if err != nil {
		return nil, nil, err
	}
	if err := c.Commit(); err != nil {
		return nil, nil, err
	}
	taxa.Freeze()
	return tree, taxa, nil
}

// ParseAll reads every tree in text, one after the other. All trees share
// one dictionary built from their leaf labels in first-seen order. The
// first error that occurs is returned with no trees.
func ParseAll(text string) ([]*Tree, *taxon.Dictionary, error) {
	taxa := taxon.NewDictionary()
	c := NewCollector(taxa)
	tp := NewParser(taxa, c.Resolve).newTreeParser(text, parseerr.Start())

	trees := make([]*Tree, 0)
	for {
		tree, err := tp.readTree()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, err
		}
		if err := c.Commit(); err != nil {
			return nil, nil, err
		}
		trees = append(trees, tree)
	}
	taxa.Freeze()
	return trees, taxa, nil
}

// treeParser is the recursive descent parser for a run of trees in one
// text. It keeps a single token of lookahead in tok.
type treeParser struct {
	*Parser
	lx    *Lexer
	tok   Token
	b     *builder
	stack []NodeID
	depth int
}

func (p *Parser) newTreeParser(text string, at parseerr.Position) *treeParser {
	return &treeParser{Parser: p, lx: NewLexer(text, at)}
}

func (tp *treeParser) advance() {
	tp.tok = tp.lx.Next()
}

// readTree reads the next tree, up to and including its ';'. At the end of
// input, a nil tree is returned with io.EOF as the error.
func (tp *treeParser) readTree() (*Tree, error) {
	tp.advance()
	switch tp.tok.Kind {
	case TokenEOF:
		return nil, io.EOF
	case TokenTerminal:
		return nil, parseerr.New(parseerr.EmptyTree, tp.tok.Pos,
			"Found ';' without a tree.")
	}

	sizeHint := 0
	if tp.taxa != nil {
		sizeHint = tp.taxa.Len()
	}
	tp.b = newBuilder(sizeHint)
	tp.stack = tp.stack[:0]
	tp.depth = 0

	root, err := tp.subtree()
	if err != nil {
		return nil, err
	}

	switch tp.tok.Kind {
	case TokenTerminal:
		return tp.b.tree(root, tp.taxa), nil
	case TokenError:
		return nil, tp.tok.Err
	case TokenClose:
		return nil, parseerr.New(parseerr.UnbalancedParens, tp.tok.Pos,
			"Found ')' without a matching '('.")
	case TokenEOF:
		return nil, parseerr.New(parseerr.MissingTerminator, tp.tok.Pos,
			"Tree is not terminated by ';'.")
	}
	return nil, parseerr.New(parseerr.MissingTerminator, tp.tok.Pos,
		"Expected ';' but got %s '%s'.", tp.tok.Kind, tp.tok.Val)
}

func (tp *treeParser) subtree() (NodeID, error) {
	switch tp.tok.Kind {
	case TokenOpen:
		return tp.internal()
	case TokenLabel:
		return tp.leaf()
	case TokenError:
		return NoNode, tp.tok.Err
	case TokenClose:
		if tp.depth == 0 {
			return NoNode, parseerr.New(parseerr.UnbalancedParens,
				tp.tok.Pos, "Found ')' without a matching '('.")
		}
	case TokenTerminal, TokenEOF:
		if tp.depth > 0 {
			return NoNode, parseerr.New(parseerr.UnbalancedParens,
				tp.tok.Pos, "Found %s inside an unclosed '('.", tp.tok.Kind)
		}
	}
	return NoNode, tp.expected("a leaf label or '('")
}

func (tp *treeParser) internal() (NodeID, error) {
	open := tp.tok.Pos
	tp.advance()
	if tp.tok.Kind == TokenClose {
		return NoNode, parseerr.New(parseerr.EmptyTree, open,
			"Descendant list '()' has no children.")
	}

	tp.depth++
	mark := len(tp.stack)
LIST:
	for {
		child, err := tp.subtree()
		if err != nil {
			return NoNode, err
		}
		tp.stack = append(tp.stack, child)

		switch tp.tok.Kind {
		case TokenComma:
			tp.advance()
		case TokenClose:
			tp.advance()
			break LIST
		case TokenError:
			return NoNode, tp.tok.Err
		case TokenTerminal, TokenEOF:
			return NoNode, parseerr.New(parseerr.UnbalancedParens,
				tp.tok.Pos, "The '(' at %s is never closed.", open)
		default:
			return NoNode, tp.expected("',' or ')'")
		}
	}
	tp.depth--

	var label string
	if tp.tok.Kind == TokenLabel {
		label = tp.tok.Val
		tp.advance()
	}
	length, err := tp.length()
	if err != nil {
		return NoNode, err
	}
	id := tp.b.internal(tp.stack[mark:], label, length)
	tp.stack = tp.stack[:mark]
	return id, nil
}

func (tp *treeParser) leaf() (NodeID, error) {
	label, pos := tp.tok.Val, tp.tok.Pos
	if len(label) == 0 {
		return NoNode, parseerr.New(parseerr.UnexpectedToken, pos,
			"Leaf label is empty.")
	}
	id, err := tp.resolve(label)
	if err != nil {
		return NoNode, parseerr.At(err, pos)
	}
	tp.advance()

	length, err := tp.length()
	if err != nil {
		return NoNode, err
	}
	return tp.b.leaf(id, length, pos, label)
}

// length reads an optional ':' followed by a branch length.
func (tp *treeParser) length() (Length, error) {
	if tp.tok.Kind != TokenColon {
		return Length{}, nil
	}
	tp.advance()
	if tp.tok.Kind != TokenNumber {
		return Length{}, tp.expected("a branch length")
	}
	// Lengths beyond the range of float64 become ±Inf.
	v, err := strconv.ParseFloat(tp.tok.Val, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Length{}, parseerr.New(parseerr.MalformedNumber, tp.tok.Pos,
			"Invalid branch length '%s': %s", tp.tok.Val, err)
	}
	tp.advance()
	return NewLength(v), nil
}

func (tp *treeParser) expected(what string) error {
	if tp.tok.Kind == TokenError {
		return tp.tok.Err
	}
	return parseerr.New(parseerr.UnexpectedToken, tp.tok.Pos,
		"Expected %s but got %s%s.", what, tp.tok.Kind, quoted(tp.tok.Val))
}

func quoted(val string) string {
	if len(val) == 0 {
		return ""
	}
	return " '" + strings.TrimSpace(val) + "'"
}

// Collector is a Resolver that builds a dictionary from leaf labels in the
// order they are first seen. Labels new to the dictionary are only staged
// while a tree is being read; Commit adds them once the tree has been read
// successfully and Discard drops them, so a tree that fails to parse leaves
// no trace in the dictionary.
type Collector struct {
	taxa    *taxon.Dictionary
	pending []string
	staged  map[string]taxon.ID
}

// NewCollector returns a collector that adds new names to taxa.
func NewCollector(taxa *taxon.Dictionary) *Collector {
	return &Collector{taxa: taxa, staged: make(map[string]taxon.ID)}
}

// Resolve returns the id label has or will have once committed.
func (c *Collector) Resolve(label string) (taxon.ID, error) {
	if id, ok := c.taxa.Lookup(label); ok {
		return id, nil
	}
	if id, ok := c.staged[label]; ok {
		return id, nil
	}
	if c.taxa.Frozen() {
		return 0, &parseerr.Error{
			Kind: parseerr.DictionaryFrozen,
			Msg:  "Cannot add taxon '" + label + "' to a frozen dictionary.",
		}
	}
	id := taxon.ID(c.taxa.Len() + len(c.pending))
	c.pending = append(c.pending, label)
	c.staged[label] = id
	return id, nil
}

// Commit inserts all staged names into the dictionary.
func (c *Collector) Commit() error {
	defer c.Discard()
	for _, name := range c.pending {
		if _, err := c.taxa.Insert(name); err != nil {
			return err
		}
	}
	return nil
}

// Discard forgets all staged names.
func (c *Collector) Discard() {
	c.pending = c.pending[:0]
	for name := range c.staged {
		delete(c.staged, name)
	}
}

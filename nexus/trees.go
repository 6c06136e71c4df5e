package nexus

import (
	"strings"

	"github.com/joklawitter/algo-phylo/newick"
	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

// treeStmt is a "TREE [*] <name> = <newick>;" statement whose Newick text
// has not been parsed yet. Newick includes the terminating ';' and starts
// at NewickPos.
type treeStmt struct {
	Name      string
	Default   bool
	Newick    string
	NewickPos parseerr.Position
	Pos       parseerr.Position
}

// treesBlock is a TREES block split into its optional translation table
// and its tree statements.
type treesBlock struct {
	translate *command
	stmts     []treeStmt
}

func splitTrees(b Block) (*treesBlock, error) {
	cmds, err := b.commands()
	if err != nil {
		return nil, err
	}

	tb := &treesBlock{stmts: make([]treeStmt, 0, len(cmds))}
	for i := range cmds {
		cmd := cmds[i]
		switch {
		case cmd.is("TRANSLATE"):
			if tb.translate != nil || len(tb.stmts) > 0 {
				return nil, parseerr.New(parseerr.UnexpectedCommand, cmd.Pos,
					"'TRANSLATE' must appear once, before any 'TREE'.")
			}
			tb.translate = &cmd
		case cmd.is("TREE"):
			stmt, err := parseTreeStmt(cmd)
			if err != nil {
				return nil, err
			}
			tb.stmts = append(tb.stmts, stmt)
		default:
			log.Debugf("Skipping command '%s' in TREES block at %s.",
				cmd.Keyword, cmd.Pos)
		}
	}
	return tb, nil
}

// parseTreeStmt splits the arguments of a TREE command at the first '='
// that is outside of quotes and comments.
func parseTreeStmt(cmd command) (treeStmt, error) {
	args := blankComments(cmd.Args)
	eq := -1
	for i := 0; i < len(args) && eq < 0; i++ {
		switch {
		case opensQuote(args, i, 0):
			if end := closeQuote(args, i); end >= 0 {
				i = end - 1
			} else {
				i = len(args)
			}
		case args[i] == '=':
			eq = i
		}
	}
	if eq < 0 {
		return treeStmt{}, parseerr.New(parseerr.UnexpectedToken, cmd.Pos,
			"TREE statement has no '='.")
	}

	stmt := treeStmt{
		Newick:    cmd.Args[eq+1:] + ";",
		NewickPos: cmd.ArgsPos.Advance(cmd.Args[:eq+1]),
		Pos:       cmd.Pos,
	}
	head := args[:eq]
	headPos := cmd.ArgsPos
	if trimmed := strings.TrimLeft(head, " \t\r\n"); strings.HasPrefix(trimmed, "*") {
		stmt.Default = true
		skip := len(head) - len(trimmed) + 1
		headPos = headPos.Advance(head[:skip])
		head = head[skip:]
	}

	lx := newick.NewLexer(head, headPos)
	name := lx.Next()
	switch name.Kind {
	case newick.TokenLabel:
		stmt.Name = name.Val
	case newick.TokenError:
		return treeStmt{}, name.Err
	default:
		return treeStmt{}, parseerr.New(parseerr.UnexpectedToken, name.Pos,
			"Expected a tree name but got %s.", name.Kind)
	}
	if extra := lx.Next(); extra.Kind != newick.TokenEOF {
		if extra.Kind == newick.TokenError {
			return treeStmt{}, extra.Err
		}
		return treeStmt{}, parseerr.New(parseerr.UnexpectedToken, extra.Pos,
			"Unexpected %s after tree name '%s'.", extra.Kind, stmt.Name)
	}
	return stmt, nil
}

// lookupResolver resolves leaf labels that are taxon names of a frozen
// dictionary. Without a TRANSLATE table, an unknown label that looks like a
// translate token means the table is missing.
func lookupResolver(taxa *taxon.Dictionary, hasTaxaBlock bool) newick.Resolver {
	return func(label string) (taxon.ID, error) {
		id, err := taxa.ID(label)
		if err != nil && hasTaxaBlock && isToken(label) {
			return 0, &parseerr.Error{
				Kind: parseerr.MissingTranslateTable,
				Msg: "Leaf '" + label + "' looks like a translate token, " +
					"but the TREES block has no TRANSLATE command.",
			}
		}
		return id, err
	}
}

func isToken(label string) bool {
	if len(label) == 0 {
		return false
	}
	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return false
		}
	}
	return true
}

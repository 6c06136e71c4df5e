package nexus

import (
	"strconv"
	"strings"

	"github.com/joklawitter/algo-phylo/newick"
	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

// ParseTaxa reads a TAXA block, which must consist of a DIMENSIONS NTAX=n
// command followed by a TAXLABELS command listing exactly n names. Names
// receive ids in TAXLABELS order. The returned dictionary is frozen.
func ParseTaxa(b Block) (*taxon.Dictionary, error) {
	cmds, err := b.commands()
	if err != nil {
		return nil, err
	}

	if len(cmds) == 0 || !cmds[0].is("DIMENSIONS") {
		pos, got := b.BodyPos, "end of block"
		if len(cmds) > 0 {
			pos, got = cmds[0].Pos, "'"+cmds[0].Keyword+"'"
		}
		return nil, parseerr.New(parseerr.UnexpectedCommand, pos,
			"TAXA block must start with 'DIMENSIONS' but got %s.", got)
	}
	ntax, err := parseDimensions(cmds[0])
	if err != nil {
		return nil, err
	}

	if len(cmds) < 2 || !cmds[1].is("TAXLABELS") {
		pos, got := cmds[0].End, "end of block"
		if len(cmds) > 1 {
			pos, got = cmds[1].Pos, "'"+cmds[1].Keyword+"'"
		}
		return nil, parseerr.New(parseerr.UnexpectedCommand, pos,
			"Expected 'TAXLABELS' after 'DIMENSIONS' but got %s.", got)
	}
	if len(cmds) > 2 {
		return nil, parseerr.New(parseerr.UnexpectedCommand, cmds[2].Pos,
			"Unexpected command '%s' after 'TAXLABELS'.", cmds[2].Keyword)
	}

	taxa := taxon.NewDictionary()
	labels := cmds[1]
	lx := newick.NewLexer(blankComments(labels.Args), labels.ArgsPos)
	for {
		tok := lx.Next()
		switch tok.Kind {
		case newick.TokenEOF:
			if taxa.Len() != ntax {
				return nil, parseerr.New(parseerr.TaxaCountMismatch,
					labels.Pos, "NTAX is %d but TAXLABELS lists %d taxa.",
					ntax, taxa.Len())
			}
			taxa.Freeze()
			return taxa, nil
		case newick.TokenError:
			return nil, tok.Err
		case newick.TokenLabel:
			if _, err := taxa.Insert(tok.Val); err != nil {
				return nil, parseerr.At(err, tok.Pos)
			}
		default:
			return nil, parseerr.New(parseerr.UnexpectedToken, tok.Pos,
				"Expected a taxon name in TAXLABELS but got %s.", tok.Kind)
		}
	}
}

// parseDimensions reads "NTAX = n" from the arguments of DIMENSIONS.
func parseDimensions(cmd command) (int, error) {
	args := strings.TrimSpace(blankComments(cmd.Args))
	key, val, ok := strings.Cut(args, "=")
	key, val = strings.TrimSpace(key), strings.TrimSpace(val)
	if !ok || !strings.EqualFold(key, "NTAX") {
		return 0, parseerr.New(parseerr.UnexpectedToken, cmd.ArgsPos,
			"Expected 'NTAX=<n>' in DIMENSIONS but got '%s'.", args)
	}
	ntax, err := strconv.Atoi(val)
	if err != nil || ntax < 0 {
		return 0, parseerr.New(parseerr.MalformedNumber, cmd.ArgsPos,
			"NTAX must be a non-negative integer but got '%s'.", val)
	}
	return ntax, nil
}

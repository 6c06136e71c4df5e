package nexus

import (
	"github.com/joklawitter/algo-phylo/newick"
	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

// Translation maps the short tokens used in the trees of a TREES block to
// taxon ids. It is read-only once built and safe for concurrent use.
type Translation struct {
	ids map[string]taxon.ID
}

// Resolve returns the taxon of a translate token, failing with
// parseerr.UnknownTranslateToken for tokens that were not declared. It is a
// newick.Resolver.
func (tr *Translation) Resolve(token string) (taxon.ID, error) {
	id, ok := tr.ids[token]
	if !ok {
		return 0, &parseerr.Error{
			Kind: parseerr.UnknownTranslateToken,
			Msg:  "Token '" + token + "' is not in the TRANSLATE table.",
		}
	}
	return id, nil
}

// Len returns the number of tokens.
func (tr *Translation) Len() int {
	return len(tr.ids)
}

// ParseTranslate reads the arguments of a TRANSLATE command,
// "<token> <name>, <token> <name>, ...", where args is assumed to begin at
// position at. If taxa is frozen, every name must already be in it.
// Otherwise the names are added to taxa in table order and taxa is frozen
// afterwards.
func ParseTranslate(args string, at parseerr.Position,
	taxa *taxon.Dictionary) (*Translation, error) {

	return parseTranslate(args, at, taxa, parseerr.UnknownTaxonName)
}

// parseTranslate is ParseTranslate with the kind of error to report for
// names missing from a frozen dictionary.
func parseTranslate(args string, at parseerr.Position,
	taxa *taxon.Dictionary, missing parseerr.Kind) (*Translation, error) {

	define := !taxa.Frozen()
	tr := &Translation{ids: make(map[string]taxon.ID)}
	lx := newick.NewLexer(blankComments(args), at)

	label := func(what string) (newick.Token, error) {
		tok := lx.Next()
		switch tok.Kind {
		case newick.TokenLabel:
			return tok, nil
		case newick.TokenError:
			return tok, tok.Err
		}
		return tok, parseerr.New(parseerr.UnexpectedToken, tok.Pos,
			"Expected %s in TRANSLATE but got %s.", what, tok.Kind)
	}

	tok := lx.Next()
	if tok.Kind == newick.TokenError {
		return nil, tok.Err
	}
	for tok.Kind != newick.TokenEOF {
		if tok.Kind != newick.TokenLabel {
			return nil, parseerr.New(parseerr.UnexpectedToken, tok.Pos,
				"Expected a translate token but got %s.", tok.Kind)
		}
		key := tok
		name, err := label("a taxon name")
		if err != nil {
			return nil, err
		}
		if _, ok := tr.ids[key.Val]; ok {
			return nil, parseerr.New(parseerr.DuplicateName, key.Pos,
				"Translate token '%s' is declared more than once.", key.Val)
		}

		var id taxon.ID
		if define {
			id, err = taxa.Insert(name.Val)
		} else {
			id, err = taxa.ID(name.Val)
			if err != nil && missing != parseerr.UnknownTaxonName {
				err = parseerr.New(missing, name.Pos,
					"Taxon '%s' is not declared in any TAXA block.", name.Val)
			}
		}
		if err != nil {
			return nil, parseerr.At(err, name.Pos)
		}
		tr.ids[key.Val] = id

		tok = lx.Next()
		switch tok.Kind {
		case newick.TokenComma:
			if tok, err = label("a translate token"); err != nil {
				return nil, err
			}
		case newick.TokenEOF:
		case newick.TokenError:
			return nil, tok.Err
		default:
			return nil, parseerr.New(parseerr.UnexpectedToken, tok.Pos,
				"Expected ',' or ';' in TRANSLATE but got %s.", tok.Kind)
		}
	}
	if define {
		taxa.Freeze()
	}
	return tr, nil
}

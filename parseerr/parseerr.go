/*
Package parseerr defines the error kinds and source positions shared by the
Newick and NEXUS readers.

Every failure produced while reading tree data is an *Error carrying a Kind
and the Position in the originating text where reading stopped. Kinds are
themselves errors, so callers can test for a particular failure with
errors.Is:

	if errors.Is(err, parseerr.DuplicateLeaf) {
		...
	}
*/
package parseerr

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind classifies a parse failure.
type Kind int

const (
	_ Kind = iota
	UnbalancedParens
	MissingTerminator
	EmptyTree
	DuplicateLeaf
	UnsupportedAnnotation
	DuplicateName
	UnknownTaxonName
	UnknownTranslateToken
	TaxaCountMismatch
	UnexpectedCommand
	MissingTaxaBlock
	MissingTranslateTable
	DictionaryFrozen
	UnexpectedToken
	MalformedNumber
	UnterminatedQuote
	UnclosedComment
	UnclosedBlock
	DuplicateBlock
)

var kindNames = map[Kind]string{
	UnbalancedParens:      "unbalanced parentheses",
	MissingTerminator:     "missing terminator",
	EmptyTree:             "empty tree",
	DuplicateLeaf:         "duplicate leaf",
	UnsupportedAnnotation: "unsupported annotation",
	DuplicateName:         "duplicate taxon name",
	UnknownTaxonName:      "unknown taxon name",
	UnknownTranslateToken: "unknown translate token",
	TaxaCountMismatch:     "taxa count mismatch",
	UnexpectedCommand:     "unexpected command",
	MissingTaxaBlock:      "missing TAXA block",
	MissingTranslateTable: "missing TRANSLATE table",
	DictionaryFrozen:      "dictionary frozen",
	UnexpectedToken:       "unexpected token",
	MalformedNumber:       "malformed number",
	UnterminatedQuote:     "unterminated quoted label",
	UnclosedComment:       "unclosed comment",
	UnclosedBlock:         "unclosed block",
	DuplicateBlock:        "duplicate block",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error makes a Kind usable as the target of errors.Is.
func (k Kind) Error() string {
	return k.String()
}

// Position is a location in source text. Offset is a byte offset from the
// start of the document; Line and Column are 1-based, and Column counts
// runes. The zero Position is unknown.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Start is the position of the first byte of a document.
func Start() Position {
	return Position{Offset: 0, Line: 1, Column: 1}
}

// IsValid reports whether p refers to an actual location.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Advance returns the position immediately after s, assuming s begins at p.
func (p Position) Advance(s string) Position {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '\n':
			p.Line++
			p.Column = 1
		case utf8.RuneStart(b):
			p.Column++
		}
	}
	p.Offset += len(s)
	return p
}

func (p Position) String() string {
	if !p.IsValid() {
		return "unknown position"
	}
	return fmt.Sprintf("line %d, column %d (offset %d)",
		p.Line, p.Column, p.Offset)
}

// Error is a parse failure at a particular position.
type Error struct {
	Kind Kind
	Pos  Position
	Msg  string
}

// New returns an error of the given kind at pos. The message is formatted
// with fmt.Sprintf.
func New(kind Kind, pos Position, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, v...)}
}

func (e *Error) Error() string {
	if !e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("Error on %s: %s: %s", e.Pos, e.Kind, e.Msg)
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// At attaches pos to err if err is an *Error that does not have a position
// yet. Any other error is returned unchanged.
func At(err error, pos Position) error {
	var perr *Error
	if !errors.As(err, &perr) || perr.Pos.IsValid() {
		return err
	}
	located := *perr
	located.Pos = pos
	return &located
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind, true
	}
	return 0, false
}

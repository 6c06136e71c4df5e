package newick

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joklawitter/algo-phylo/parseerr"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	TokenError TokenKind = iota
	TokenEOF
	TokenOpen
	TokenClose
	TokenComma
	TokenColon
	TokenTerminal
	TokenLabel
	TokenNumber
)

const (
	eof           = -1
	terminal      = ';'
	descDelimiter = ','
	descStart     = '('
	descEnd       = ')'
	quote         = '\''
	lengthStart   = ':'
	commentStart  = '['
	commentEnd    = ']'
)

// Runes that end an unquoted label, in addition to white space.
const unquoteBanned = "()[],:;"

const digits = "0123456789"

// Token is a single lexical element of Newick text. For quoted labels, Val
// holds the label with its quotes removed and '' collapsed to '. Pos is the
// position of the first byte of the token. Err is set only for TokenError.
type Token struct {
	Kind TokenKind
	Val  string
	Pos  parseerr.Position
	Err  *parseerr.Error
}

type stateFn func(lx *Lexer) stateFn

// Lexer splits Newick text into tokens. Comments in square brackets are
// skipped, except that a '[' directly after a label, a branch length or a
// closing parenthesis is reported as an unsupported annotation.
type Lexer struct {
	input string
	start int
	pos   int
	width int
	mark  parseerr.Position
	state stateFn
	items chan Token

	// attached is true while the lexer sits directly behind a label, a
	// number or a ')', with no white space in between.
	attached bool
}

// NewLexer returns a lexer for input, which is assumed to begin at position
// at of some larger document.
func NewLexer(input string, at parseerr.Position) *Lexer {
	return &Lexer{
		input: input,
		mark:  at,
		state: lexAny,
		items: make(chan Token, 2),
	}
}

// Next returns the next token. After a TokenEOF or TokenError has been
// returned, every further call returns TokenEOF.
func (lx *Lexer) Next() Token {
	for {
		select {
		case tok := <-lx.items:
			return tok
		default:
			if lx.state == nil {
				return Token{Kind: TokenEOF, Pos: lx.mark}
			}
			lx.state = lx.state(lx)
		}
	}
}

func (lx *Lexer) current() string {
	return lx.input[lx.start:lx.pos]
}

func (lx *Lexer) emit(kind TokenKind) {
	lx.emitVal(kind, lx.current())
}

func (lx *Lexer) emitVal(kind TokenKind, val string) {
	lx.items <- Token{Kind: kind, Val: val, Pos: lx.mark}
	lx.ignore()
	lx.attached = kind == TokenLabel || kind == TokenNumber ||
		kind == TokenClose
}

func (lx *Lexer) next() rune {
	if lx.pos >= len(lx.input) {
		lx.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.width = w
	lx.pos += w
	return r
}

// ignore skips over the pending input before this point.
func (lx *Lexer) ignore() {
	lx.mark = lx.mark.Advance(lx.input[lx.start:lx.pos])
	lx.start = lx.pos
}

// backup steps back one rune. Can be called only once per call of next.
func (lx *Lexer) backup() {
	lx.pos -= lx.width
}

// peek returns but does not consume the next rune in the input.
func (lx *Lexer) peek() rune {
	r := lx.next()
	lx.backup()
	return r
}

// accept consumes the next rune if it's in `valid`.
func (lx *Lexer) accept(valid string) bool {
	if strings.ContainsRune(valid, lx.next()) {
		return true
	}
	lx.backup()
	return false
}

// acceptRun consumes a run of runes from `valid` and returns its length.
func (lx *Lexer) acceptRun(valid string) int {
	n := 0
	for lx.accept(valid) {
		n++
	}
	return n
}

// word returns the text from the start of the current token up to the next
// delimiter, for use in error messages.
func (lx *Lexer) word() string {
	end := lx.pos
	for end < len(lx.input) {
		r, w := utf8.DecodeRuneInString(lx.input[end:])
		if isDelimiter(r) {
			break
		}
		end += w
	}
	return lx.input[lx.start:end]
}

// errorf stops all lexing by emitting an error and returning `nil`.
func (lx *Lexer) errorf(kind parseerr.Kind, format string,
	values ...interface{}) stateFn {

	lx.items <- Token{
		Kind: TokenError,
		Pos:  lx.mark,
		Err:  parseerr.New(kind, lx.mark, format, values...),
	}
	return nil
}

func lexAny(lx *Lexer) stateFn {
	r := lx.next()
	if isSpace(r) {
		lx.ignore()
		lx.attached = false
		return lexAny
	}

	switch r {
	case eof:
		lx.emit(TokenEOF)
		return nil
	case descStart:
		lx.emit(TokenOpen)
	case descEnd:
		lx.emit(TokenClose)
	case descDelimiter:
		lx.emit(TokenComma)
	case terminal:
		lx.emit(TokenTerminal)
	case lengthStart:
		lx.emit(TokenColon)
		return lexLengthStart
	case quote:
		return lexQuoted
	case commentStart:
		if lx.attached {
			return lx.errorf(parseerr.UnsupportedAnnotation,
				"Annotation '%s' is not supported.", lx.annotation())
		}
		return lexComment
	case commentEnd:
		return lx.errorf(parseerr.UnexpectedToken,
			"Found ']' without a matching '['.")
	default:
		lx.backup()
		return lexBare
	}
	return lexAny
}

// annotation returns the bracketed text starting at the current token,
// truncated for display.
func (lx *Lexer) annotation() string {
	s := lx.input[lx.start:]
	if i := strings.IndexRune(s, commentEnd); i >= 0 {
		s = s[:i+1]
	}
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return s
}

func lexComment(lx *Lexer) stateFn {
	for depth := 1; depth > 0; {
		switch lx.next() {
		case eof:
			return lx.errorf(parseerr.UnclosedComment,
				"Comment is never closed with ']'.")
		case commentStart:
			depth++
		case commentEnd:
			depth--
		}
	}
	lx.ignore()
	lx.attached = false
	return lexAny
}

func lexBare(lx *Lexer) stateFn {
	for {
		if isDelimiter(lx.next()) {
			lx.backup()
			break
		}
	}
	lx.emit(TokenLabel)
	return lexAny
}

func lexQuoted(lx *Lexer) stateFn {
	escaped := false
	for {
		switch lx.next() {
		case eof:
			return lx.errorf(parseerr.UnterminatedQuote,
				"Quoted label is never closed.")
		case quote:
			if lx.peek() == quote {
				lx.next()
				escaped = true
				continue
			}
			val := lx.input[lx.start+1 : lx.pos-1]
			if escaped {
				val = strings.ReplaceAll(val, "''", "'")
			}
			lx.emitVal(TokenLabel, val)
			return lexAny
		}
	}
}

func lexLengthStart(lx *Lexer) stateFn {
	if isSpace(lx.next()) {
		lx.ignore()
		return lexLengthStart
	}
	lx.backup()
	return lexNumber
}

func lexNumber(lx *Lexer) stateFn {
	lx.accept("+-")
	n := lx.acceptRun(digits)
	if lx.accept(".") {
		n += lx.acceptRun(digits)
	}
	if n == 0 {
		return lx.errorf(parseerr.MalformedNumber,
			"Expected a branch length after ':' but got '%s'.", lx.word())
	}
	if lx.accept("eE") {
		lx.accept("+-")
		if lx.acceptRun(digits) == 0 {
			return lx.errorf(parseerr.MalformedNumber,
				"Branch length '%s' has an empty exponent.", lx.word())
		}
	}
	if !isDelimiter(lx.peek()) {
		return lx.errorf(parseerr.MalformedNumber,
			"Invalid branch length '%s'.", lx.word())
	}
	lx.emit(TokenNumber)
	return lexAny
}

func isDelimiter(r rune) bool {
	return r == eof || isSpace(r) || strings.ContainsRune(unquoteBanned, r)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func (kind TokenKind) String() string {
	switch kind {
	case TokenError:
		return "error"
	case TokenEOF:
		return "end of input"
	case TokenOpen:
		return "'('"
	case TokenClose:
		return "')'"
	case TokenComma:
		return "','"
	case TokenColon:
		return "':'"
	case TokenTerminal:
		return "';'"
	case TokenLabel:
		return "label"
	case TokenNumber:
		return "number"
	}
	panic(fmt.Sprintf("BUG: Unknown token kind '%d'.", int(kind)))
}

func (tok Token) String() string {
	if tok.Kind == TokenError {
		return fmt.Sprintf("(%s, %s)", tok.Kind, tok.Err)
	}
	return fmt.Sprintf("(%s, %s)", tok.Kind, tok.Val)
}

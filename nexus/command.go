package nexus

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joklawitter/algo-phylo/parseerr"
)

// command is one ';'-terminated NEXUS command, such as
// "DIMENSIONS NTAX=3;". Args excludes the keyword and the ';'. Args ends
// exactly where the ';' begins, at End.
type command struct {
	Keyword    string
	Pos        parseerr.Position
	Args       string
	ArgsPos    parseerr.Position
	End        parseerr.Position
	start, end int
}

func (c command) is(keyword string) bool {
	return strings.EqualFold(c.Keyword, keyword)
}

// cmdScanner splits NEXUS text into commands. Semicolons inside quoted
// words and comments do not end a command.
type cmdScanner struct {
	text string
	off  int
	pos  parseerr.Position
}

func newCmdScanner(text string, at parseerr.Position) *cmdScanner {
	return &cmdScanner{text: text, pos: at}
}

func (s *cmdScanner) advanceTo(off int) {
	s.pos = s.pos.Advance(s.text[s.off:off])
	s.off = off
}

func (s *cmdScanner) atEnd() bool {
	return s.off >= len(s.text)
}

// skipSpace skips white space and comments.
func (s *cmdScanner) skipSpace() error {
	for !s.atEnd() {
		c := s.text[s.off]
		switch {
		case c == '[':
			end, err := s.commentEnd(s.off)
			if err != nil {
				return err
			}
			s.advanceTo(end)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
			c == '\v' || c == '\f':
			s.advanceTo(s.off + 1)
		default:
			return nil
		}
	}
	return nil
}

// commentEnd returns the offset just past the comment starting at off.
func (s *cmdScanner) commentEnd(off int) (int, error) {
	depth := 0
	for i := off; i < len(s.text); i++ {
		switch s.text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, parseerr.New(parseerr.UnclosedComment,
		s.pos.Advance(s.text[s.off:off]), "Comment is never closed with ']'.")
}

// quoteEnd returns the offset just past the quoted word starting at off.
func (s *cmdScanner) quoteEnd(off int) (int, error) {
	if end := closeQuote(s.text, off); end >= 0 {
		return end, nil
	}
	return 0, parseerr.New(parseerr.UnterminatedQuote,
		s.pos.Advance(s.text[s.off:off]), "Quoted word is never closed.")
}

// wordBreak reports whether c ends a bare word, so that a quote right after
// it opens a quoted word.
func wordBreak(c byte) bool {
	return strings.IndexByte(" \t\n\r\v\f()[],:;=", c) >= 0
}

// opensQuote reports whether s[i] is a quote starting a quoted word. A quote
// inside a bare word, as in Smith's, is an ordinary character. Bytes before
// from are not looked at.
func opensQuote(s string, i, from int) bool {
	return s[i] == '\'' && (i == from || wordBreak(s[i-1]))
}

// closeQuote returns the offset just past the quoted word opened at s[i],
// or -1 if it is never closed. A doubled quote is an escaped quote.
func closeQuote(s string, i int) int {
	for i++; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		return i + 1
	}
	return -1
}

// next returns the next command, skipping empty ones. The boolean is false
// once only white space and comments remain.
func (s *cmdScanner) next() (command, bool, error) {
	for {
		cmd, ok, err := s.scan()
		if err != nil || !ok {
			return cmd, ok, err
		}
		if cmd.Keyword != "" || len(strings.TrimSpace(blankComments(cmd.Args))) > 0 {
			return cmd, true, nil
		}
	}
}

func (s *cmdScanner) scan() (command, bool, error) {
	if err := s.skipSpace(); err != nil {
		return command{}, false, err
	}
	if s.atEnd() {
		return command{}, false, nil
	}

	cmd := command{Pos: s.pos, start: s.off}
	kwEnd := s.off
	for kwEnd < len(s.text) {
		r, w := utf8.DecodeRuneInString(s.text[kwEnd:])
		if !unicode.IsLetter(r) {
			break
		}
		kwEnd += w
	}
	cmd.Keyword = s.text[s.off:kwEnd]
	s.advanceTo(kwEnd)
	cmd.ArgsPos = s.pos

	for i := s.off; i < len(s.text); {
		var err error
		switch c := s.text[i]; {
		case c == ';':
			cmd.Args = s.text[s.off:i]
			s.advanceTo(i)
			cmd.End = s.pos
			s.advanceTo(i + 1)
			cmd.end = s.off
			return cmd, true, nil
		case c == '[':
			i, err = s.commentEnd(i)
		case opensQuote(s.text, i, s.off):
			i, err = s.quoteEnd(i)
		default:
			i++
		}
		if err != nil {
			return command{}, false, err
		}
	}
	return command{}, false, parseerr.New(parseerr.MissingTerminator,
		cmd.Pos, "Command '%s' is not terminated by ';'.", cmd.Keyword)
}

// blankComments replaces every comment in s by spaces, so that offsets into
// the result match offsets into s. Quoted words are left alone.
func blankComments(s string) string {
	if !strings.ContainsRune(s, '[') {
		return s
	}
	b := []byte(s)
	depth := 0
	for i := 0; i < len(b); i++ {
		switch {
		case depth == 0 && opensQuote(s, i, 0):
			end := closeQuote(s, i)
			if end < 0 {
				return string(b)
			}
			i = end - 1
			continue
		case b[i] == '[':
			depth++
		case b[i] == ']' && depth > 0:
			depth--
		case depth == 0:
			continue
		}
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

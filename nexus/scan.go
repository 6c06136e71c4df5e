package nexus

import (
	"strings"

	"github.com/joklawitter/algo-phylo/parseerr"
)

// Block is one "BEGIN <name>; ... END;" block of a NEXUS document. Body is
// the raw text between the BEGIN and END commands and is not interpreted by
// Scan.
type Block struct {
	Name    string
	Body    string
	Pos     parseerr.Position
	BodyPos parseerr.Position
}

// Is reports whether the block has the given name, ignoring case.
func (b Block) Is(name string) bool {
	return strings.EqualFold(b.Name, name)
}

const header = "#NEXUS"

// Scan splits a NEXUS document into its blocks, in file order. The #NEXUS
// header is optional. Blocks of any name are returned, including repeated
// ones. Only BEGIN commands (and comments) may appear between blocks.
func Scan(text string) ([]Block, error) {
	s := newCmdScanner(text, parseerr.Start())
	if err := s.skipSpace(); err != nil {
		return nil, err
	}
	if len(s.text)-s.off >= len(header) &&
		strings.EqualFold(s.text[s.off:s.off+len(header)], header) {
		s.advanceTo(s.off + len(header))
	}

	blocks := make([]Block, 0)
	for {
		begin, ok, err := s.next()
		if err != nil {
			return nil, err
		} else if !ok {
			return blocks, nil
		}
		if !begin.is("BEGIN") {
			return nil, parseerr.New(parseerr.UnexpectedCommand, begin.Pos,
				"Expected 'BEGIN' but got '%s'.", begin.Keyword)
		}
		name := strings.TrimSpace(blankComments(begin.Args))
		if len(name) == 0 || strings.ContainsAny(name, " \t\r\n") {
			return nil, parseerr.New(parseerr.UnexpectedToken, begin.ArgsPos,
				"Invalid block name '%s'.", name)
		}

		block := Block{
			Name:    name,
			Pos:     begin.Pos,
			BodyPos: s.pos,
		}
		bodyStart := s.off
		for {
			cmd, ok, err := s.next()
			if err != nil {
				return nil, err
			} else if !ok {
				return nil, parseerr.New(parseerr.UnclosedBlock, begin.Pos,
					"Block '%s' is never closed by 'END;'.", name)
			}
			if cmd.is("END") || cmd.is("ENDBLOCK") {
				block.Body = text[bodyStart:cmd.start]
				break
			}
		}
		blocks = append(blocks, block)
	}
}

// commands splits the body of a block into its commands.
func (b Block) commands() ([]command, error) {
	s := newCmdScanner(b.Body, b.BodyPos)
	cmds := make([]command, 0)
	for {
		cmd, ok, err := s.next()
		if err != nil {
			return nil, err
		} else if !ok {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
	}
}

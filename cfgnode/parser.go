package cfgnode

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_OPEN = iota
	TOKEN_CLOSE
	TOKEN_ASSIGN
	TOKEN_NEWLINE
	TOKEN_COMMENT
	TOKEN_TEXT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`\{`), getToken(TOKEN_OPEN))
	lexer.Add([]byte(`\}`), getToken(TOKEN_CLOSE))
	lexer.Add([]byte(`=`), getToken(TOKEN_ASSIGN))
	lexer.Add([]byte(`(\r\n|\n|\r)`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`//[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`([^\{\}=\r\n/]|/[^\{\}=\r\n/])+`), getToken(TOKEN_TEXT))
	lexer.Add([]byte(`/`), getToken(TOKEN_TEXT))
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

// ParseError reports malformed input with the offending line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config node line %d: %s", e.Line, e.Msg)
}

type parser struct {
	stack   []*ConfigNode
	text    strings.Builder
	key     string
	assign  bool
	pending string
	line    int
}

func (p *parser) top() *ConfigNode {
	return p.stack[len(p.stack)-1]
}

func (p *parser) fail(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) reset() {
	p.text.Reset()
	p.key = ""
	p.assign = false
}

func (p *parser) endLine() error {
	word := strings.TrimSpace(p.text.String())
	switch {
	case p.assign:
		if p.key == "" {
			return p.fail("value %q has no name", word)
		}
		p.top().AddValue(p.key, word)
	case word != "":
		if p.pending != "" {
			return p.fail("expected '{' after %q", p.pending)
		}
		p.pending = word
	}
	p.reset()
	return nil
}

func (p *parser) open() error {
	if p.assign {
		return p.fail("unexpected '{' in value %q", p.key)
	}
	name := strings.TrimSpace(p.text.String())
	if name == "" {
		name = p.pending
	} else if p.pending != "" {
		return p.fail("expected '{' after %q", p.pending)
	}
	p.pending = ""
	p.reset()
	p.stack = append(p.stack, p.top().AddNewNode(name))
	return nil
}

func (p *parser) close() error {
	if err := p.endLine(); err != nil {
		return err
	}
	if p.pending != "" {
		return p.fail("expected '{' after %q", p.pending)
	}
	if len(p.stack) == 1 {
		return p.fail("unexpected '}'")
	}
	p.stack = p.stack[:len(p.stack)-1]
	return nil
}

// Load parses text into a root node whose children are the top-level
// sections.
func Load(text string) (*ConfigNode, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	root := New()
	p := &parser{stack: []*ConfigNode{root}, line: 1}
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)
		p.line = tok.StartLine

		switch tok.Type {
		case TOKEN_TEXT:
			p.text.Write(tok.Lexeme)
		case TOKEN_ASSIGN:
			if p.assign {
				p.text.WriteByte('=')
			} else {
				p.key = strings.TrimSpace(p.text.String())
				p.text.Reset()
				p.assign = true
			}
		case TOKEN_NEWLINE, TOKEN_COMMENT:
			err = p.endLine()
		case TOKEN_OPEN:
			err = p.open()
		case TOKEN_CLOSE:
			err = p.close()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := p.endLine(); err != nil {
		return nil, err
	}
	if p.pending != "" {
		return nil, p.fail("expected '{' after %q", p.pending)
	}
	if len(p.stack) > 1 {
		return nil, p.fail("unexpected end of input, %d node(s) left open", len(p.stack)-1)
	}
	return root, nil
}

func LoadFile(path string) (*ConfigNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", path)
	}
	node, err := Load(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %q", path)
	}
	return node, nil
}

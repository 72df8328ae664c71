package sgf

import (
	"fmt"
	"strings"
	"unicode"

	"goshapes/internal/errors"
)

type parser struct {
	text string
	pos  int
}

// Parse читает первое дерево SGF-коллекции.
func Parse(text string) (*SGF, error) {
	trees, err := ParseCollection(text)
	if err != nil {
		return nil, err
	}
	return &SGF{Root: trees[0]}, nil
}

// ParseCollection читает все деревья вида (;...)(;...).
func ParseCollection(text string) ([]*GameTree, error) {
	p := &parser{text: text}
	trees := make([]*GameTree, 0, 1)

	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		tree, err := p.gameTree()
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}

	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: no game tree", errors.ErrMalformedSGF)
	}
	return trees, nil
}

func (p *parser) gameTree() (*GameTree, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	tree := &GameTree{}

	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated game tree")
		}

		switch p.text[p.pos] {
		case ';':
			p.pos++
			node, err := p.node()
			if err != nil {
				return nil, err
			}
			if len(tree.Children) > 0 {
				return nil, p.errorf("node after variation")
			}
			tree.Nodes = append(tree.Nodes, node)
		case '(':
			child, err := p.gameTree()
			if err != nil {
				return nil, err
			}
			tree.Children = append(tree.Children, child)
		case ')':
			p.pos++
			if len(tree.Nodes) == 0 {
				return nil, p.errorf("empty game tree")
			}
			return tree, nil
		default:
			return nil, p.errorf("unexpected %q", p.text[p.pos])
		}
	}
}

func (p *parser) node() (Node, error) {
	node := Node{Properties: make(map[string][]string)}

	for {
		p.skipSpace()
		if p.eof() || !unicode.IsLetter(rune(p.text[p.pos])) {
			return node, nil
		}

		// в старых файлах (FF[3]) встречаются идентификаторы вида AddBlack
		var ident strings.Builder
		for !p.eof() && unicode.IsLetter(rune(p.text[p.pos])) {
			if c := p.text[p.pos]; 'A' <= c && c <= 'Z' {
				ident.WriteByte(c)
			}
			p.pos++
		}
		key := ident.String()
		if key == "" {
			return node, p.errorf("property without identifier")
		}

		p.skipSpace()
		if p.eof() || p.text[p.pos] != '[' {
			return node, p.errorf("property %s without value", key)
		}
		for {
			p.skipSpace()
			if p.eof() || p.text[p.pos] != '[' {
				break
			}
			value, err := p.value()
			if err != nil {
				return node, err
			}
			node.Properties[key] = append(node.Properties[key], value)
		}
	}
}

func (p *parser) value() (string, error) {
	p.pos++ // '['
	var builder strings.Builder

	for !p.eof() {
		c := p.text[p.pos]
		switch c {
		case ']':
			p.pos++
			return builder.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			next := p.text[p.pos]
			p.pos++
			// мягкий перенос строки выбрасывается
			if next == '\n' || next == '\r' {
				if !p.eof() && (p.text[p.pos] == '\n' || p.text[p.pos] == '\r') && p.text[p.pos] != next {
					p.pos++
				}
				continue
			}
			builder.WriteByte(next)
		default:
			builder.WriteByte(c)
			p.pos++
		}
	}

	return "", p.errorf("unterminated value")
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.eof() || p.text[p.pos] != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.text[p.pos])) {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", errors.ErrMalformedSGF, p.pos, fmt.Sprintf(format, args...))
}

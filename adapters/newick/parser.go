package newick

import (
	"fmt"
	"strings"

	"cladeshift/domain/core"
	"cladeshift/domain/tree"
)

// Parse reads a Newick-formatted tree into the boundary ParsedNode form.
// Branch lengths are accepted and discarded; quoted labels are not
// supported. Structural defects surface as MalformedTree errors so the
// caller sees the same taxonomy as tree.Build.
func Parse(input string) (*tree.ParsedNode, error) {
	p := &parser{s: input}
	p.skipSpace()
	root, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ';' {
		p.pos++
		p.skipSpace()
	}
	if p.pos < len(p.s) {
		return nil, p.errorf("trailing content at offset %d", p.pos)
	}
	return root, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) parseNode() (*tree.ParsedNode, error) {
	if p.pos >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}

	if p.s[p.pos] == '(' {
		p.pos++
		node := &tree.ParsedNode{}
		for {
			p.skipSpace()
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			p.skipSpace()
			if p.pos >= len(p.s) {
				return nil, p.errorf("unterminated clade")
			}
			if p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.s[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, p.errorf("unexpected %q at offset %d", p.s[p.pos], p.pos)
		}
		node.Label = p.parseName()
		p.skipBranchLength()
		return node, nil
	}

	name := p.parseName()
	if name == "" {
		return nil, p.errorf("missing tip name at offset %d", p.pos)
	}
	p.skipBranchLength()
	return &tree.ParsedNode{SampleID: name}, nil
}

func (p *parser) parseName() string {
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune("(),:;", rune(p.s[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.s[start:p.pos])
}

func (p *parser) skipBranchLength() {
	if p.pos < len(p.s) && p.s[p.pos] == ':' {
		p.pos++
		for p.pos < len(p.s) && !strings.ContainsRune("(),;", rune(p.s[p.pos])) {
			p.pos++
		}
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: newick: %s", core.ErrMalformedTree, fmt.Sprintf(format, args...))
}

package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

const quoteChar = '`'

// needsQuoting reports whether name cannot be written without backticks.
func needsQuoting(name string) bool {
	return name == "" || strings.ContainsAny(name, ".[]`")
}

// writeQuoted wraps name in backticks. Backticks and backslashes inside the
// name are preceded by a backslash.
func writeQuoted(b *strings.Builder, name string) {
	b.WriteByte(quoteChar)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == quoteChar || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte(quoteChar)
}

// QuoteName returns name in the form it takes inside a path string.
func QuoteName(name string) string {
	if !needsQuoting(name) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 2)
	writeQuoted(&b, name)
	return b.String()
}

// pathElem is a parsed segment before the chain is linked.
type pathElem struct {
	indexed bool
	name    string
	quoted  bool
	index   int
}

type pathParser struct {
	input string
	pos   int
}

// Parse parses a field path expression such as "a.b[2].`c.d`[]".
// The empty string yields the empty path.
func Parse(text string) (Path, error) {
	if text == "" {
		return Path{}, nil
	}

	p := &pathParser{input: text}
	elems, err := p.parse()
	if err != nil {
		return Path{}, err
	}

	var root *Segment
	for i := len(elems) - 1; i >= 0; i-- {
		e := elems[i]
		switch {
		case !e.indexed:
			root = NewNamed(e.name, e.quoted, root)
		case e.index == NoIndex:
			root = NewAnyIndexed(root)
		default:
			root, err = NewIndexed(e.index, root)
			if err != nil {
				return Path{}, err
			}
		}
	}
	return Path{root: root}, nil
}

// MustParse is like Parse but panics on error. It is meant for constants and tests.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *pathParser) parse() ([]pathElem, error) {
	var elems []pathElem

	if p.peek() != '[' {
		e, err := p.parseName()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}

	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '.':
			p.pos++
			e, err := p.parseName()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		case '[':
			e, err := p.parseIndex()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		default:
			return nil, syntaxError("unexpected %q at offset %d", p.input[p.pos], p.pos)
		}
	}

	return elems, nil
}

func (p *pathParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *pathParser) parseName() (pathElem, error) {
	if p.peek() == quoteChar {
		return p.parseQuotedName()
	}

	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '.' || c == '[' {
			break
		}
		if c == ']' || c == quoteChar {
			return pathElem{}, syntaxError("unexpected %q at offset %d", c, p.pos)
		}
		p.pos++
	}

	if p.pos == start {
		return pathElem{}, syntaxError("empty field name at offset %d", start)
	}
	return pathElem{name: p.input[start:p.pos]}, nil
}

func (p *pathParser) parseQuotedName() (pathElem, error) {
	start := p.pos
	p.pos++ // opening backtick

	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.input) {
				return pathElem{}, syntaxError("dangling escape at offset %d", p.pos)
			}
			b.WriteByte(p.input[p.pos+1])
			p.pos += 2
		case quoteChar:
			p.pos++
			return pathElem{name: b.String(), quoted: true}, nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}

	return pathElem{}, syntaxError("unterminated quoted name starting at offset %d", start)
}

func (p *pathParser) parseIndex() (pathElem, error) {
	start := p.pos
	end := strings.IndexByte(p.input[start:], ']')
	if end < 0 {
		return pathElem{}, syntaxError("unterminated index starting at offset %d", start)
	}
	p.pos = start + end + 1

	digits := strings.TrimSpace(p.input[start+1 : start+end])
	if digits == "" {
		return pathElem{indexed: true, index: NoIndex}, nil
	}

	index, err := strconv.Atoi(digits)
	if err != nil {
		return pathElem{}, syntaxError("invalid index %q at offset %d", digits, start)
	}
	if index < 0 {
		return pathElem{}, fmt.Errorf("%w: negative index %d", ErrInvalidArgument, index)
	}
	return pathElem{indexed: true, index: index}, nil
}

package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source into something zygomys accepts:
//
//   - :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbols and cannot clash with user definitions.
//   - kebab-case identifiers become snake_case (box-mesh -> box_mesh);
//     zygomys reads a hyphen as the minus operator.
//   - ; line comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	p := preprocessor{src: source}
	p.out.Grow(len(source) + len(source)/4)
	for p.pos < len(p.src) {
		p.step()
	}
	return p.out.String()
}

type preprocessor struct {
	src string
	pos int
	out strings.Builder
}

func (p *preprocessor) peek(off int) byte {
	if i := p.pos + off; i >= 0 && i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func (p *preprocessor) emit(n int) {
	p.out.WriteString(p.src[p.pos : p.pos+n])
	p.pos += n
}

func (p *preprocessor) step() {
	c := p.src[p.pos]
	switch {
	case c == '"':
		p.quoted('"', true)
	case c == '`':
		p.quoted('`', false)
	case c == ';':
		p.comment()
	case c == ':' && p.peek(1) == '=':
		p.emit(2)
	case c == ':' && isLetter(p.peek(1)):
		p.keyword()
	case c == '-' && p.pos > 0 && isIdentChar(p.peek(-1)) && isLetter(p.peek(1)):
		p.out.WriteByte('_')
		p.pos++
	default:
		p.emit(1)
	}
}

// quoted copies a string literal including its delimiters.
func (p *preprocessor) quoted(delim byte, escapes bool) {
	end := p.pos + 1
	for end < len(p.src) && p.src[end] != delim {
		if escapes && p.src[end] == '\\' && end+1 < len(p.src) {
			end++
		}
		end++
	}
	if end < len(p.src) {
		end++
	}
	p.emit(end - p.pos)
}

func (p *preprocessor) comment() {
	p.out.WriteString("//")
	for p.pos < len(p.src) && p.src[p.pos] == ';' {
		p.pos++
	}
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		end = len(p.src) - p.pos
	}
	p.emit(end)
}

func (p *preprocessor) keyword() {
	end := p.pos + 1
	for end < len(p.src) && isKWChar(p.src[end]) {
		end++
	}
	p.out.WriteByte('"')
	p.out.WriteString(kwPrefix)
	p.out.WriteString(p.src[p.pos+1 : end])
	p.out.WriteByte('"')
	p.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

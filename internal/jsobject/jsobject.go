// Package jsobject converts JavaScript object literals, as found in inline
// page scripts, into strict JSON.
package jsobject

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToJSON rewrites a JS object literal into JSON. It quotes bare keys and
// identifiers, converts single-quoted strings, drops comments and trailing
// commas, maps undefined to null and hex integers to decimal. Input that is
// already valid JSON is returned unchanged.
func ToJSON(src string) (string, error) {
	if json.Valid([]byte(src)) {
		return src, nil
	}

	s := &scanner{src: src}
	for s.pos < len(src) {
		c := src[s.pos]
		switch {
		case c == '"' || c == '\'':
			str, err := s.readString(c)
			if err != nil {
				return "", err
			}
			s.out.WriteString(str)
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peek(1) == '*':
			if err := s.skipBlockComment(); err != nil {
				return "", err
			}
		case c == ',':
			s.pos++
			if next := s.nextSignificant(); next != ']' && next != '}' {
				s.out.WriteByte(',')
			}
		case isIdentStart(c):
			s.out.WriteString(s.readIdent())
		case isDigit(c) || (c == '-' && isDigit(s.peek(1))):
			num, err := s.readNumber()
			if err != nil {
				return "", err
			}
			s.out.WriteString(num)
		default:
			s.out.WriteByte(c)
			s.pos++
		}
	}

	out := s.out.String()
	if !json.Valid([]byte(out)) {
		return "", fmt.Errorf("converted object is not valid JSON: %.80q", out)
	}
	return out, nil
}

type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (s *scanner) peek(n int) byte {
	if s.pos+n < len(s.src) {
		return s.src[s.pos+n]
	}
	return 0
}

// nextSignificant returns the next byte that is not whitespace or part of a
// comment, without consuming anything.
func (s *scanner) nextSignificant() byte {
	i := s.pos
	for i < len(s.src) {
		switch c := s.src[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '/':
			for i < len(s.src) && s.src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			end := strings.Index(s.src[i+2:], "*/")
			if end == -1 {
				return 0
			}
			i += end + 4
		default:
			return c
		}
	}
	return 0
}

func (s *scanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlockComment() error {
	end := strings.Index(s.src[s.pos+2:], "*/")
	if end == -1 {
		return fmt.Errorf("unterminated comment at offset %d", s.pos)
	}
	s.pos += end + 4
	return nil
}

// readString consumes a quoted string and returns it as a JSON string.
func (s *scanner) readString(quote byte) (string, error) {
	start := s.pos
	s.pos++

	var b strings.Builder
	b.WriteByte('"')
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			b.WriteByte('"')
			return b.String(), nil
		case c == '\\':
			esc := s.peek(1)
			switch esc {
			case '\'':
				b.WriteByte('\'')
				s.pos += 2
			case 'x':
				if s.pos+4 > len(s.src) {
					return "", fmt.Errorf("truncated \\x escape at offset %d", s.pos)
				}
				v, err := strconv.ParseUint(s.src[s.pos+2:s.pos+4], 16, 8)
				if err != nil {
					return "", fmt.Errorf("bad \\x escape at offset %d: %w", s.pos, err)
				}
				fmt.Fprintf(&b, `\u%04x`, v)
				s.pos += 4
			case '\n':
				// line continuation
				s.pos += 2
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				b.WriteByte('\\')
				b.WriteByte(esc)
				s.pos += 2
			default:
				// JS drops the backslash of unknown escapes
				b.WriteByte(esc)
				s.pos += 2
			}
		case c == '"':
			b.WriteString(`\"`)
			s.pos++
		case c == '\n':
			b.WriteString(`\n`)
			s.pos++
		case c == '\t':
			b.WriteString(`\t`)
			s.pos++
		case c == '\r':
			s.pos++
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", fmt.Errorf("unterminated string starting at offset %d", start)
}

func (s *scanner) readIdent() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	ident := s.src[start:s.pos]
	switch ident {
	case "true", "false", "null":
		return ident
	case "undefined":
		return "null"
	default:
		return strconv.Quote(ident)
	}
}

func (s *scanner) readNumber() (string, error) {
	start := s.pos
	if s.src[s.pos] == '-' {
		s.pos++
	}
	for s.pos < len(s.src) && (isIdentPart(s.src[s.pos]) || s.src[s.pos] == '.' ||
		((s.src[s.pos] == '+' || s.src[s.pos] == '-') && (s.src[s.pos-1] == 'e' || s.src[s.pos-1] == 'E'))) {
		s.pos++
	}
	num := s.src[start:s.pos]

	if digits, neg := strings.CutPrefix(num, "-"); isHex(digits) {
		v, err := strconv.ParseInt(digits[2:], 16, 64)
		if err != nil {
			return "", fmt.Errorf("bad hex literal %q: %w", num, err)
		}
		if neg {
			v = -v
		}
		num = strconv.FormatInt(v, 10)
	}

	// numeric keys must be quoted
	if s.nextSignificant() == ':' {
		return strconv.Quote(num), nil
	}
	return num, nil
}

func isHex(s string) bool {
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

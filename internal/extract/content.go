package extract

import (
	"strings"
)

// contentText pulls the shown strings out of a PDF content stream. Each text
// object and each line-positioning operator starts a new line.
func contentText(data []byte) string {
	var (
		b       strings.Builder
		pending []string
	)
	newline := func() {
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
	}
	flush := func() {
		for _, s := range pending {
			b.WriteString(s)
		}
		pending = pending[:0]
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isSpace(c):
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := readLiteral(data[i:])
			pending = append(pending, s)
			i += n
		case c == '<' && i+1 < len(data) && data[i+1] == '<',
			c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, n := readHexString(data[i:])
			pending = append(pending, s)
			i += n
		case c == '/':
			i++
			for i < len(data) && !isSpace(data[i]) && !isDelim(data[i]) {
				i++
			}
		case isDelim(c):
			i++
		default:
			start := i
			for i < len(data) && !isSpace(data[i]) && !isDelim(data[i]) {
				i++
			}
			switch op := string(data[start:i]); op {
			case "BT", "T*", "Td", "TD", "Tm":
				newline()
				pending = pending[:0]
			case "Tj", "TJ":
				flush()
			case "'", `"`:
				newline()
				flush()
			default:
				if !isNumber(op) {
					pending = pending[:0]
				}
			}
		}
	}
	return b.String()
}

// readLiteral decodes a (...) string starting at data[0] and returns it with
// the number of bytes consumed.
func readLiteral(data []byte) (string, int) {
	var out []rune
	depth := 0
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '(':
			if depth > 0 {
				out = append(out, '(')
			}
			depth++
			i++
		case c == ')':
			depth--
			i++
			if depth == 0 {
				return string(out), i
			}
			out = append(out, ')')
		case c == '\\' && i+1 < len(data):
			i++
			e := data[i]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := 0
					j := 0
					for ; j < 3 && i+j < len(data) && data[i+j] >= '0' && data[i+j] <= '7'; j++ {
						v = v*8 + int(data[i+j]-'0')
					}
					out = append(out, rune(v&0xff))
					i += j
					continue
				}
				out = append(out, rune(e))
			}
			i++
		default:
			out = append(out, rune(c))
			i++
		}
	}
	return string(out), i
}

// readHexString decodes a <...> string starting at data[0].
func readHexString(data []byte) (string, int) {
	var (
		out    []rune
		hi     = -1
		i      = 1
		closed bool
	)
	for ; i < len(data); i++ {
		c := data[i]
		if c == '>' {
			i++
			closed = true
			break
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if hi < 0 {
			hi = v
			continue
		}
		out = append(out, rune(hi<<4|v))
		hi = -1
	}
	if hi >= 0 && closed {
		out = append(out, rune(hi<<4))
	}
	return string(out), i
}

func hexVal(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' {
			return false
		}
	}
	return true
}

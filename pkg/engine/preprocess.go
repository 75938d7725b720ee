package engine

import "strings"

// kwPrefix marks keyword arguments once the source is preprocessed:
// :count is read by zygomys as the string "__kw_count".
const kwPrefix = "__kw_"

// preprocessSource rewrites script source into a form zygomys reads.
// Keywords become prefixed strings, kebab-case names such as window-under
// become window_under, and ; comments become // comments. String
// literals pass through untouched and := is left alone.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			end := literalEnd(source, i)
			out.WriteString(source[i:end])
			i = end

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				end = len(source)
			} else {
				end += i
			}
			out.WriteString("//")
			out.WriteString(source[i:end])
			i = end

		case c == ':' && i+1 < len(source) && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKeywordByte(source[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(source[i+1 : j])
			out.WriteByte('"')
			i = j

		// A hyphen joining two name characters is part of a name, not
		// subtraction.
		case c == '-' && i > 0 && i+1 < len(source) && isNameByte(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// literalEnd returns the index just past the string literal opening at
// start. Backslash escapes apply inside double quotes only. An
// unterminated literal runs to the end of the source.
func literalEnd(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quote == '"' {
				i++
			}
		case quote:
			return i + 1
		}
	}
	return len(s)
}

func isLetter(c byte) bool { return c|0x20 >= 'a' && c|0x20 <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameByte(c byte) bool { return isLetter(c) || isDigit(c) || c == '_' }

func isKeywordByte(c byte) bool { return isNameByte(c) || c == '-' }

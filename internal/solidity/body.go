package solidity

import (
	"regexp"
	"strings"
)

// Function is one declaration located in source text.
type Function struct {
	Name   string
	Header string // from the keyword up to, not including, the opening brace
	Body   string // braces included; empty for bodiless declarations
	Offset int
}

// Visibility returns the first visibility keyword of the header, if any.
func (f Function) Visibility() string {
	for _, tok := range strings.Fields(stripParens(f.Header)) {
		switch tok {
		case "public", "external", "internal", "private":
			return tok
		}
	}
	return ""
}

// Callable reports whether the function can be called from outside the contract.
func (f Function) Callable() bool {
	v := f.Visibility()
	return v == "public" || v == "external"
}

// Mentions reports whether marker appears in the header or body.
func (f Function) Mentions(marker string) bool {
	return strings.Contains(f.Header, marker) || strings.Contains(f.Body, marker)
}

// FindFunction returns the first declaration of name. The body is delimited
// by brace depth, ignoring braces inside comments and string literals, so
// later mentions of the name (calls, comments, overloads) do not move it.
func FindFunction(src, name string) (Function, bool) {
	re := regexp.MustCompile(`\bfunction\s+` + regexp.QuoteMeta(name) + `\s*\(`)
	loc := re.FindStringIndex(src)
	if loc == nil {
		return Function{}, false
	}
	start := loc[0]
	// parameters may hold nested parentheses; skip them before looking for '{'
	i := matchParen(src, loc[1]-1)
	if i < 0 {
		return Function{}, false
	}
	for ; i < len(src); i++ {
		switch src[i] {
		case ';':
			return Function{Name: name, Header: src[start:i], Offset: start}, true
		case '{':
			end := matchBrace(src, i)
			if end < 0 {
				return Function{Name: name, Header: src[start:i], Body: src[i:], Offset: start}, true
			}
			return Function{Name: name, Header: src[start:i], Body: src[i : end+1], Offset: start}, true
		}
	}
	return Function{Name: name, Header: src[start:], Offset: start}, true
}

// matchParen returns the index just past the parenthesis closing src[open].
func matchParen(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// matchBrace returns the index of the brace closing src[open], or -1.
func matchBrace(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			nl := strings.IndexByte(src[i:], '\n')
			if nl < 0 {
				return -1
			}
			i += nl
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return -1
			}
			i += end + 3
		case c == '"' || c == '\'':
			i = skipString(src, i)
			if i < 0 {
				return -1
			}
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipString returns the index of the quote closing the literal at src[start].
func skipString(src string, start int) int {
	q := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

func stripParens(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			b.WriteRune(' ')
		case r == ')':
			depth--
			b.WriteRune(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Package naming holds the casing and inflection helpers every emitter uses,
// so a schema or group name maps to the same identifier and file name
// everywhere in the generated tree.
package naming

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s into words at separators, lower→upper transitions and the
// end of an acronym ("HTTPServer" → "HTTP", "Server"). Digits stay attached
// to the word they follow.
func Words(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Pascal joins the words of s with an upper-case initial each. The rest of
// every word keeps its case so acronyms survive ("userID" → "UserID").
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(upperFirst(w))
	}
	out := b.String()
	if out == "" {
		return ""
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = "N" + out
	}
	return out
}

// Camel is Pascal with the first word lower-cased.
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(upperFirst(w))
	}
	out := b.String()
	if unicode.IsDigit([]rune(out)[0]) {
		out = "n" + out
	}
	return out
}

// Kebab lower-cases the words of s and joins them with hyphens.
func Kebab(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// File is the file-case form used for generated file and directory names.
func File(s string) string {
	if k := Kebab(s); k != "" {
		return k
	}
	return "unnamed"
}

// TypeName returns the exported type identifier for a schema or group name.
// Names that are already upper-case identifiers are kept as written.
func TypeName(s string) string {
	if IsIdentifier(s) && unicode.IsUpper([]rune(s)[0]) {
		return s
	}
	if p := Pascal(s); p != "" {
		return p
	}
	return "Unnamed"
}

// Label turns an identifier into a human-readable label ("createdAt" →
// "Created At"). Casers keep state, so each call gets its own.
func Label(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// IsIdentifier reports whether s is a valid JavaScript identifier made of
// ASCII letters, digits, '_' and '$'.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r < unicode.MaxASCII && unicode.IsLetter(r):
		case i > 0 && r < unicode.MaxASCII && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return !reserved[s]
}

// PropertyKey renders a property name as an object key, quoting it when it
// is not a plain identifier.
func PropertyKey(s string) string {
	if IsIdentifier(s) {
		return s
	}
	return strconv.Quote(s)
}

// Accessor renders member access on expr for property s.
func Accessor(expr, s string) string {
	if IsIdentifier(s) {
		return expr + "." + s
	}
	return expr + "[" + strconv.Quote(s) + "]"
}

// Var returns a camel-case local identifier for s that is safe to declare.
func Var(s string) string {
	v := Camel(s)
	if v == "" {
		return "value"
	}
	if reserved[v] {
		return v + "Value"
	}
	return v
}

func upperFirst(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "yield": true, "let": true, "static": true, "implements": true,
	"interface": true, "package": true, "private": true, "protected": true,
	"public": true, "await": true,
}

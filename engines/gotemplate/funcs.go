package gotemplate

import (
	"strings"
	"text/template"
	"unicode"

	"github.com/google/uuid"
)

// FuncMap returns the helpers layered over sprig. Names that collide with
// sprig override it.
//
// snake, kebab and camel are not aliases of sprig's snakecase, kebabcase
// and camelcase: all six case helpers share splitWords, so digits become
// their own word and camel keeps the first word lower case, where sprig's
// camelcase yields "HttpServer" for "http_server".
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"snake":    toSnake,
		"camel":    toCamel,
		"pascal":   toPascal,
		"kebab":    toKebab,
		"humanize": humanize,
		"uuid":     func() string { return uuid.New().String() },
	}
}

func toSnake(s string) string {
	return joinLower(splitWords(s), "_")
}

func toKebab(s string) string {
	return joinLower(splitWords(s), "-")
}

func toCamel(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	return strings.ToLower(words[0]) + toPascal(strings.Join(words[1:], " "))
}

func toPascal(s string) string {
	var b strings.Builder
	for _, word := range splitWords(s) {
		b.WriteString(capitalize(word))
	}
	return b.String()
}

func humanize(s string) string {
	words := splitWords(s)
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func joinLower(words []string, sep string) string {
	for i, word := range words {
		words[i] = strings.ToLower(word)
	}
	return strings.Join(words, sep)
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// splitWords breaks s on separators, lower-to-upper transitions, the end of
// an acronym and letter/digit boundaries: "HTTPServer2Go" -> [HTTP Server 2 Go].
func splitWords(s string) []string {
	var (
		words   []string
		current []rune
		prev    rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == ' ' || r == '_' || r == '-' || r == '.':
			flush()
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			// dropped
		default:
			if (i > 0 && boundary(prev, r)) || acronymEnd(current, r, runes[i+1:]) {
				flush()
			}
			current = append(current, r)
		}
		prev = r
	}
	flush()
	return words
}

func boundary(prev, r rune) bool {
	switch {
	case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
		return true
	case unicode.IsDigit(r) && unicode.IsLetter(prev):
		return true
	case unicode.IsLetter(r) && unicode.IsDigit(prev):
		return true
	}
	return false
}

// acronymEnd reports whether upper-case r starts a word after an acronym,
// as the S in "HTTPServer".
func acronymEnd(current []rune, r rune, rest []rune) bool {
	if len(current) < 2 || !unicode.IsUpper(r) || len(rest) == 0 || !unicode.IsLower(rest[0]) {
		return false
	}
	return unicode.IsUpper(current[len(current)-1])
}

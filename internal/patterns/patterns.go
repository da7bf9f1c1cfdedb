// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package patterns holds the ordered library of headline templates used to
// recover (headline, question, answer) triples from free text.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// spaceClass is the body of a character class matching Unicode whitespace
// and the information separators U+001C..U+001F. RE2's \s covers only
// ASCII [\t\n\f\r ].
const spaceClass = `\s\v\p{Z}\x1c-\x1f\x85`

// Template is one named matcher. Its expression has exactly three capture
// groups: the headline, the question, and an optional Yes/No answer.
type Template struct {
	Name string
	expr string
	re   *regexp.Regexp
}

// Expr returns the template's regular expression source, with the (?s) flag.
func (t Template) Expr() string {
	return t.expr
}

// Triple is one match of a template.
type Triple struct {
	Template string
	Headline string
	Question string

	// Answer is nil when the optional answer group did not participate.
	Answer *string
}

// Compile builds a template from expr. The expression is compiled in
// dot-matches-newline mode so captured groups may span lines, and \s and \S
// match Unicode whitespace (NBSP, em space, \v and the like).
func Compile(name, expr string) (Template, error) {
	re, err := regexp.Compile("(?s)" + expandSpace(expr))
	if err != nil {
		return Template{}, fmt.Errorf("compiling template %s: %w", name, err)
	}
	if re.NumSubexp() != 3 {
		return Template{}, fmt.Errorf("template %s: want 3 capture groups, got %d", name, re.NumSubexp())
	}
	return Template{Name: name, expr: "(?s)" + expr, re: re}, nil
}

// expandSpace rewrites \s (and \S outside a character class) to spaceClass.
func expandSpace(expr string) string {
	var b strings.Builder
	inClass := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			next := expr[i+1]
			i++
			switch {
			case next == 's' && inClass:
				b.WriteString(spaceClass)
			case next == 's':
				b.WriteString("[" + spaceClass + "]")
			case next == 'S' && !inClass:
				b.WriteString("[^" + spaceClass + "]")
			default:
				b.WriteByte(c)
				b.WriteByte(next)
			}
			continue
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte(c)
			// A leading ] or ^] is literal.
			if i+1 < len(expr) && expr[i+1] == '^' {
				i++
				b.WriteByte('^')
			}
			if i+1 < len(expr) && expr[i+1] == ']' {
				i++
				b.WriteByte(']')
			}
			continue
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// isSpace matches the runes of spaceClass.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// MustCompile is like Compile but panics on error. It is meant for
// templates known at build time.
func MustCompile(name, expr string) Template {
	t, err := Compile(name, expr)
	if err != nil {
		panic(err)
	}
	return t
}

// Library is an immutable, ordered set of templates.
type Library struct {
	templates []Template
}

// New returns a library over the given templates, in order.
func New(templates ...Template) Library {
	return Library{templates: append([]Template(nil), templates...)}
}

var defaultLibrary = New(
	MustCompile("headline-now-answer",
		`Headline:\s*"(.*?)"\s*Now answer this question:\s*(.*?)\?\s*(Yes|No)?`),
	MustCompile("headline-question",
		`Headline:\s*(.*?)\s*Question:\s*(.*?)\?\s*(Yes|No)?`),
	MustCompile("please-answer",
		`Please answer a question about the following headline:\s*"(.*?)"\s*(.*?)\?\s*No or Yes\?\s*(Yes|No)?`),
	MustCompile("read-headline-options",
		`Read this headline:\s*"(.*?)"\s*Now answer this question:\s*"(.*?)"\s*Options:.*?-\s*.*?-\s*.*?(Yes|No)?`),
	MustCompile("q-colon",
		`(.*?)\s*Q:\s*(.*?)\?\s*(Yes|No)?`),
)

// Default returns the headline library used for the finance-tasks corpus.
func Default() Library {
	return defaultLibrary
}

// Templates returns a copy of the library's templates in order.
func (l Library) Templates() []Template {
	return append([]Template(nil), l.templates...)
}

// Len returns the number of templates.
func (l Library) Len() int {
	return len(l.templates)
}

// Match applies every template to text and returns all non-overlapping
// matches, grouped by template order and then by occurrence order.
func (l Library) Match(text string) []Triple {
	var out []Triple
	for _, t := range l.templates {
		for _, m := range t.re.FindAllStringSubmatchIndex(text, -1) {
			tr := Triple{
				Template: t.Name,
				Headline: trim(group(text, m, 1)),
				Question: trim(group(text, m, 2)),
			}
			if m[6] >= 0 {
				answer := trim(text[m[6]:m[7]])
				tr.Answer = &answer
			}
			out = append(out, tr)
		}
	}
	return out
}

// group returns the text of capture group n, or "" when it did not participate.
func group(text string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}

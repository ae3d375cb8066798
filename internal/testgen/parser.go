package testgen

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
)

const placeholderCount = 3

// ParseResult is what Parse extracted from a raw provider response.
type ParseResult struct {
	Cases []model.TestCase
	// Degraded is set when nothing could be parsed from a non-empty response
	// and Cases holds placeholders.
	Degraded bool
	// Sections counts the non-empty separator-delimited chunks seen.
	Sections int
}

type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldCategory
	fieldDescription
	fieldResult
)

// labels are compared after upper-casing and accent folding, so DESCRIPCIÓN
// and descripcion both match DESCRIPCION.
var labels = []struct {
	name  string
	field field
}{
	{"TITULO", fieldTitle},
	{"TIPO", fieldCategory},
	{"DESCRIPCION", fieldDescription},
	{"RESULTADO", fieldResult},
}

// Parse turns loosely formatted provider output into test cases. It never
// fails: sections missing a title, description or result are dropped, and a
// non-empty response that yields nothing degrades to placeholder cases.
func Parse(raw string, hint model.TestTypeHint) ParseResult {
	result := ParseResult{Cases: []model.TestCase{}}
	if strings.TrimSpace(raw) == "" {
		return result
	}

	for _, section := range splitSections(raw) {
		result.Sections++
		if tc, ok := parseSection(section, hint); ok {
			result.Cases = append(result.Cases, tc)
		}
	}

	if len(result.Cases) == 0 {
		result.Cases = placeholders()
		result.Degraded = true
	}

	return result
}

// splitSections splits on lines made only of dashes ("---") and drops empty
// chunks.
func splitSections(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var sections []string
	var current []string
	flush := func() {
		section := strings.TrimSpace(strings.Join(current, "\n"))
		if section != "" {
			sections = append(sections, section)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(raw, "\n") {
		if isSeparator(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return sections
}

func isSeparator(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) >= 3 && strings.Trim(line, "-") == ""
}

// parseSection runs the label state machine over one section: a label line
// opens a field, any other line continues the open field, lines before the
// first label are ignored.
func parseSection(section string, hint model.TestTypeHint) (model.TestCase, bool) {
	values := map[field][]string{}
	open := fieldNone

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if f, value, ok := matchLabel(line); ok {
			open = f
			values[f] = []string{value}
			continue
		}
		if open != fieldNone {
			values[open] = append(values[open], line)
		}
	}

	joined := func(f field) string {
		return strings.TrimSpace(strings.Join(values[f], "\n"))
	}

	tc := model.TestCase{
		Title:          joined(fieldTitle),
		Category:       resolveCategory(joined(fieldCategory), hint),
		Description:    joined(fieldDescription),
		ExpectedResult: joined(fieldResult),
	}
	return tc, tc.Valid()
}

// matchLabel reports whether line starts a labeled field and returns the rest
// of the line after the colon. Heading markers and emphasis around the label
// are ignored; emphasis inside the value is kept.
func matchLabel(line string) (field, string, bool) {
	candidate := strings.TrimSpace(strings.TrimLeft(line, "#"))

	colon := strings.Index(candidate, ":")
	if colon <= 0 {
		return fieldNone, "", false
	}

	label := candidate[:colon]
	open := label[:len(label)-len(strings.TrimLeft(label, emphasis))]
	closed := strings.TrimRight(label, emphasis) != label

	name := foldLabel(strings.TrimSpace(strings.Trim(label, emphasis)))
	for _, l := range labels {
		if name != l.name {
			continue
		}
		value := strings.TrimSpace(candidate[colon+1:])
		if open != "" && !closed {
			value = closeEmphasis(value, open)
		}
		return l.field, value, true
	}

	return fieldNone, "", false
}

// emphasis holds the markdown markers a model wraps labels in.
const emphasis = "*_"

// closeEmphasis removes the marker that closes a label opened with marker,
// as in "**TITULO:** x" or "**TITULO: x**". The marker is only removed when it
// is left unpaired in value.
func closeEmphasis(value, marker string) string {
	if strings.Count(value, marker)%2 == 0 {
		return value
	}
	if rest, ok := strings.CutPrefix(value, marker); ok {
		return strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(value, marker); ok {
		return strings.TrimSpace(rest)
	}
	return value
}

// foldLabel upper-cases s and removes combining accents.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return cases.Upper(language.Und).String(folded)
}

// resolveCategory keeps an exact Web/Api/Error, ignoring emphasis around it,
// else substitutes a Web or Api hint, else falls back to Error.
func resolveCategory(raw string, hint model.TestTypeHint) model.Category {
	raw = strings.TrimSpace(strings.Trim(raw, emphasis+"` "))
	if c := model.Category(raw); c.Valid() {
		return c
	}
	if c, ok := hint.Category(); ok {
		return c
	}
	return model.CategoryError
}

func placeholders() []model.TestCase {
	out := make([]model.TestCase, 0, placeholderCount)
	for i := 1; i <= placeholderCount; i++ {
		out = append(out, model.TestCase{
			Title:          fmt.Sprintf("Test Case %d", i),
			Category:       model.CategoryError,
			Description:    "Test case generado automáticamente a partir de la respuesta de AI",
			ExpectedResult: "Resultado esperado según el análisis de AI",
			Placeholder:    true,
		})
	}
	return out
}

package svdconv

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// IndentUnit is the number of leading spaces per nesting level in the text
// output.
const IndentUnit = 2

// TextLexer tokenizes one line of the text output with its indentation
// already removed.
var TextLexer = lexer.MustSimple([]lexer.SimpleRule{
	// ^^^^^^^^ between peripherals
	{Name: "Separator", Pattern: `\^{3,}`},

	// === Kind Name ===
	{Name: "Marker", Pattern: `={3}`},

	// key: value, value may be empty or contain spaces ("uint8_t *")
	{Name: "Attribute", Pattern: `[A-Za-z_][A-Za-z0-9_]*:[^\n]*`},

	{Name: "Word", Pattern: `[^\s=]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// textLine is the grammar of one non-blank line.
type textLine struct {
	Separator string         `  @Separator`
	Section   *sectionMarker `| @@`
	Attribute string         `| @Attribute`
}

// sectionMarker opens a section. Address blocks and anonymous enumerated value
// containers have no name.
type sectionMarker struct {
	Kind string `Marker @Word`
	Name string `@Word? Marker`
}

type lineKind int

const (
	lineSeparator lineKind = iota + 1
	lineSection
	lineAttribute
)

// lexedLine is a line of text output reduced to its meaning.
type lexedLine struct {
	number int
	depth  int
	kind   lineKind
	// section
	section string
	name    string
	// attribute
	key   string
	value string
}

type lineGrammar struct {
	parser *participle.Parser[textLine]
}

func newLineGrammar() (*lineGrammar, error) {
	parser, err := participle.Build[textLine](
		participle.Lexer(TextLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build text grammar: %w", err)
	}
	return &lineGrammar{parser: parser}, nil
}

// lex reads one raw line. Indentation must be spaces only and a multiple of
// IndentUnit.
func (g *lineGrammar) lex(number int, raw string) (lexedLine, error) {
	body := strings.TrimLeft(raw, " ")
	indent := len(raw) - len(body)
	if strings.HasPrefix(body, "\t") {
		return lexedLine{}, malformed("line %d: tab in indentation", number)
	}
	if indent%IndentUnit != 0 {
		return lexedLine{}, malformed("line %d: indentation of %d spaces is not a multiple of %d", number, indent, IndentUnit)
	}

	parsed, err := g.parser.ParseString("", strings.TrimRight(body, " \t\r"))
	if err != nil {
		return lexedLine{}, malformed("line %d: %v", number, err)
	}

	l := lexedLine{number: number, depth: indent / IndentUnit}
	switch {
	case parsed.Separator != "":
		l.kind = lineSeparator
	case parsed.Section != nil:
		l.kind = lineSection
		l.section = parsed.Section.Kind
		l.name = parsed.Section.Name
	default:
		l.kind = lineAttribute
		key, value, _ := strings.Cut(parsed.Attribute, ":")
		l.key = strings.TrimSpace(key)
		l.value = strings.TrimSpace(value)
	}
	return l, nil
}

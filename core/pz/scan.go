package pz

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// lineLexer tokenizes a single PZ data line. Other catches any character
// the remaining rules do not, so lexing never fails on trailing text.
var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_]\w*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
	{Name: "Other", Pattern: `\S`},
})

// pairLine is a zero or pole line: "<real> <imag>".
//
//nolint:govet // participle grammar tags are not standard struct tags
type pairLine struct {
	Real string `parser:"@Number"`
	Imag string `parser:"@Number"`
}

// keywordLine is a declaration or constant line: "<KEYWORD> <number>".
//
//nolint:govet // participle grammar tags are not standard struct tags
type keywordLine struct {
	Keyword string `parser:"@Ident"`
	Value   string `parser:"@Number"`
}

var (
	pairParser = participle.MustBuild[pairLine](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace"),
	)
	keywordParser = participle.MustBuild[keywordLine](
		participle.Lexer(lineLexer),
		participle.Elide("Whitespace"),
	)
)

// scanNumber parses a decimal token such as "-4.44e-02", ".5" or "+12".
func scanNumber(tok string) (float64, bool) {
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// scanPair recognizes a line holding two whitespace-separated decimal
// tokens. Anything after the second token is ignored.
func scanPair(line string) (Complex, bool) {
	parsed, err := pairParser.ParseString("", line, participle.AllowTrailing(true))
	if err != nil {
		return Complex{}, false
	}
	// The lexer splits "1.0-2.0" into two numbers; require real separation.
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != parsed.Real || fields[1] != parsed.Imag {
		return Complex{}, false
	}
	re, ok := scanNumber(parsed.Real)
	if !ok {
		return Complex{}, false
	}
	im, ok := scanNumber(parsed.Imag)
	if !ok {
		return Complex{}, false
	}
	return Complex{Real: re, Imag: im}, true
}

// scanKeyword matches a line that starts with keyword followed by
// whitespace and a numeric token, returning that token.
func scanKeyword(line, keyword string) (string, bool) {
	rest, found := strings.CutPrefix(line, keyword)
	if !found || rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	parsed, err := keywordParser.ParseString("", line, participle.AllowTrailing(true))
	if err != nil || parsed.Keyword != keyword {
		return "", false
	}
	return parsed.Value, true
}

// scanDeclaration matches "ZEROS <n>" or "POLES <n>". Only the leading
// digits of the count are used; a signed count does not match.
func scanDeclaration(line, keyword string) (int, bool) {
	tok, ok := scanKeyword(line, keyword)
	if !ok {
		return 0, false
	}
	end := 0
	for end < len(tok) && tok[end] >= '0' && tok[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(tok[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

package pz

import (
	"github.com/FocuswithJustin/PoleZero/core/errors"
)

// Section keywords.
const (
	KeywordZeros    = "ZEROS"
	KeywordPoles    = "POLES"
	KeywordConstant = "CONSTANT"
)

// ExtractZeros reads the ZEROS section of b.
func ExtractZeros(b Block) ([]Complex, error) {
	return extractRoots(b, KeywordZeros)
}

// ExtractPoles reads the POLES section of b.
func ExtractPoles(b Block) ([]Complex, error) {
	return extractRoots(b, KeywordPoles)
}

// extractRoots finds the first "<keyword> <n>" line and reads at most n
// following lines as (real, imag) pairs. The first line that is not a
// numeric pair ends the section early; files whose declared count
// overstates the listed values are accepted with a shorter result.
func extractRoots(b Block, keyword string) ([]Complex, error) {
	start, n := -1, 0
	for i, l := range b.Lines {
		if count, ok := scanDeclaration(l.Text, keyword); ok {
			start, n = i+1, count
			break
		}
	}
	if start < 0 {
		err := errors.NewFormat(errors.MissingDeclaration, "")
		err.Field, err.Block = keyword, b.Index
		return nil, err
	}

	// n can be as large as math.MaxInt; never add it to start.
	lines := b.Lines[start:]
	lines = lines[:min(n, len(lines))]
	roots := make([]Complex, 0, len(lines))
	for _, l := range lines {
		c, ok := scanPair(l.Text)
		if !ok {
			break
		}
		roots = append(roots, c)
	}
	return roots, nil
}

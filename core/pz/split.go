package pz

import (
	"fmt"
	"regexp"

	"github.com/FocuswithJustin/PoleZero/core/errors"
)

// delimiterPattern matches a block delimiter: a star, a space, then stars.
var delimiterPattern = regexp.MustCompile(`^\* \*+`)

// IsDelimiter reports whether line is a block delimiter line.
func IsDelimiter(line string) bool {
	return delimiterPattern.MatchString(line)
}

// splitState tracks delimiter parity after the opening delimiter.
type splitState int

const (
	// stateOpen: an even number of delimiters seen, the block is still open.
	stateOpen splitState = iota
	// stateFenced: an odd number seen, the next delimiter closes the block.
	stateFenced
)

// splitter is the block segmentation automaton. Lines before the opening
// delimiter never reach it.
type splitter struct {
	state      splitState
	delimiters int
	current    []Line
	blocks     []Block
}

func (s *splitter) feed(l Line) {
	if !IsDelimiter(l.Text) {
		s.current = append(s.current, l)
		return
	}
	s.delimiters++
	switch s.state {
	case stateOpen:
		s.state = stateFenced
	case stateFenced:
		s.close()
		s.state = stateOpen
	}
}

func (s *splitter) close() {
	s.blocks = append(s.blocks, Block{Index: len(s.blocks) + 1, Lines: s.current})
	s.current = nil
}

// finish appends the in-progress block and checks delimiter parity. A
// well-formed file ends fenced, with an even total of delimiter lines.
func (s *splitter) finish() ([]Block, error) {
	s.close()
	if s.state != stateFenced {
		return nil, errors.NewFormat(errors.UnterminatedBlock,
			fmt.Sprintf("odd count of delimiter lines (%d in total)", s.delimiters+1))
	}
	return s.blocks, nil
}

// SplitBlocks cuts raw lines into one Block per instrument. Everything up
// to and including the first delimiter line is discarded; after that every
// second delimiter closes a block, and the trailing block is always kept.
func SplitBlocks(lines []string) ([]Block, error) {
	start := -1
	for i, line := range lines {
		if IsDelimiter(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errors.NewFormat(errors.NoDelimiterFound, "")
	}

	s := &splitter{}
	for i := start + 1; i < len(lines); i++ {
		s.feed(Line{Num: i + 1, Text: lines[i]})
	}
	return s.finish()
}

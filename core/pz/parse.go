package pz

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/PoleZero/core/errors"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// AssembleInstrument builds the Instrument described by b. It fails with the
// first FormatError raised by the header, zeros or poles extraction. A
// missing CONSTANT leaves Constant nil.
func AssembleInstrument(b Block) (*Instrument, error) {
	header, err := ExtractHeader(b)
	if err != nil {
		return nil, err
	}
	zeros, err := ExtractZeros(b)
	if err != nil {
		return nil, err
	}
	poles, err := ExtractPoles(b)
	if err != nil {
		return nil, err
	}

	in := &Instrument{
		Header: header,
		Zeros:  zeros,
		Poles:  poles,
	}
	if c, ok := ExtractConstant(b); ok {
		in.Constant = &c
	}
	return in, nil
}

// ParseLines parses a PZ file given as lines without terminators. One
// malformed block fails the whole file; no partial result is returned.
func ParseLines(lines []string) (Result, error) {
	blocks, err := SplitBlocks(lines)
	if err != nil {
		return nil, err
	}
	result := make(Result, 0, len(blocks))
	for _, b := range blocks {
		in, err := AssembleInstrument(b)
		if err != nil {
			return nil, err
		}
		result = append(result, in)
	}
	return result, nil
}

// ReadLines reads r to the end and returns its lines with "\n" and "\r\n"
// terminators stripped.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIO("read", "", fmt.Errorf("scan lines: %w", err))
	}
	return lines, nil
}

// Parse reads a PZ file from r.
func Parse(r io.Reader) (Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return ParseLines(lines)
}

// ParseString parses a PZ file held in memory.
func ParseString(s string) (Result, error) {
	return Parse(strings.NewReader(s))
}

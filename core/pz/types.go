package pz

// Line is one raw input line with its terminator stripped.
type Line struct {
	// Num is the 1-based line number in the source.
	Num int
	// Text is the line content.
	Text string
}

// Block holds the lines describing exactly one instrument.
type Block struct {
	// Index is the 1-based position of the block in the file.
	Index int
	// Lines are the non-delimiter lines of the block, in file order.
	Lines []Line
}

// NewBlock builds a Block from plain text lines numbered from 1.
func NewBlock(index int, lines ...string) Block {
	b := Block{Index: index, Lines: make([]Line, len(lines))}
	for i, text := range lines {
		b.Lines[i] = Line{Num: i + 1, Text: text}
	}
	return b
}

// Complex is one pole or zero.
type Complex struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
}

// Instrument is the parsed description of a single instrument.
type Instrument struct {
	// Header holds the comment-marked key/value fields.
	Header Header `json:"header"`
	// Zeros holds at most the declared ZEROS count.
	Zeros []Complex `json:"zeros"`
	// Poles holds at most the declared POLES count.
	Poles []Complex `json:"poles"`
	// Constant is the gain constant, nil when the block has no CONSTANT line.
	Constant *float64 `json:"constant,omitempty"`
}

// HasConstant reports whether a CONSTANT line was found.
func (in *Instrument) HasConstant() bool {
	return in.Constant != nil
}

// Result is the ordered list of instruments in a file.
type Result []*Instrument

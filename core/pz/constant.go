package pz

// ExtractConstant returns the gain of the first "CONSTANT <value>" line in
// b. ok is false when the block has no such line; that is not an error.
func ExtractConstant(b Block) (value float64, ok bool) {
	for _, l := range b.Lines {
		tok, found := scanKeyword(l.Text, KeywordConstant)
		if !found {
			continue
		}
		if f, parsed := scanNumber(tok); parsed {
			return f, true
		}
	}
	return 0, false
}

// Package pz parses SAC pole-zero (PZ) response files.
//
// A PZ file describes one or more recording instruments. Each instrument is
// fenced by delimiter lines ("* ****...") and carries comment-marked header
// fields, a ZEROS section, a POLES section and an optional CONSTANT:
//
//	* **********************************
//	* NETWORK   (KNETWK): IU
//	* STATION    (KSTNM): ANMO
//	* START             : 2002-11-19T21:07:00
//	* **********************************
//	ZEROS	3
//		+0.000000e+00	+0.000000e+00
//	...
//	POLES	5
//	...
//	CONSTANT	+9.244000e+17
//
// Parsing runs in three stages: SplitBlocks cuts the raw lines into one Block
// per instrument by delimiter parity, the extractors (ExtractHeader,
// ExtractZeros, ExtractPoles, ExtractConstant) read each Block independently,
// and AssembleInstrument composes them into an Instrument. ParseLines, Parse
// and ParseString run the whole pipeline and fail on the first FormatError.
//
// Every function here is a pure transformation of its input and is safe to
// call concurrently.
package pz

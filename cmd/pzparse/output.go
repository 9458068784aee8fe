package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/FocuswithJustin/PoleZero/core/catalog"
	"github.com/FocuswithJustin/PoleZero/core/pz"
	"github.com/FocuswithJustin/PoleZero/core/pzfile"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatText = "text"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatEpoch(t *time.Time) string {
	if t == nil {
		return pz.NotAvailable
	}
	return t.Format(time.RFC3339)
}

func writeRoots(w io.Writer, label string, roots []pz.Complex) {
	fmt.Fprintf(w, "  %s (%d):\n", label, len(roots))
	for _, r := range roots {
		fmt.Fprintf(w, "    %+e  %+e\n", r.Real, r.Imag)
	}
}

func writeInstrument(w io.Writer, n int, in *pz.Instrument) {
	info := in.Info()
	fmt.Fprintf(w, "instrument %d: %s\n", n, info.SEEDID())
	fmt.Fprintf(w, "  epoch: %s .. %s\n", formatEpoch(info.Start), formatEpoch(info.End))

	keys := make([]string, 0, len(in.Header))
	for k := range in.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "  header (%d):\n", len(keys))
	for _, k := range keys {
		v := in.Header[k]
		fmt.Fprintf(w, "    %-20s %s [%s]\n", k, v.String(), v.Kind())
	}

	writeRoots(w, "zeros", in.Zeros)
	writeRoots(w, "poles", in.Poles)
	if in.Constant != nil {
		fmt.Fprintf(w, "  constant: %e\n", *in.Constant)
	} else {
		fmt.Fprintln(w, "  constant: none")
	}
}

func writeFileText(w io.Writer, f *pzfile.File) {
	fmt.Fprintf(w, "%s\n", f.Path)
	fmt.Fprintf(w, "  sha256: %s\n", f.Hashes.SHA256)
	if f.Compression != "" && f.Compression != "none" {
		fmt.Fprintf(w, "  compression: %s\n", f.Compression)
	}
	for i, in := range f.Instruments {
		writeInstrument(w, i+1, in)
	}
}

func writeInfoText(w io.Writer, path string, n int, s pz.StationInfo) {
	fmt.Fprintf(w, "%s #%d  %s\n", path, n, s.SEEDID())
	rows := [][2]string{
		{"description", s.Description},
		{"epoch", formatEpoch(s.Start) + " .. " + formatEpoch(s.End)},
		{"created", formatEpoch(s.Created)},
		{"latitude", formatFloat(s.Latitude)},
		{"longitude", formatFloat(s.Longitude)},
		{"elevation", formatFloat(s.Elevation)},
		{"depth", formatFloat(s.Depth)},
		{"dip", formatFloat(s.Dip)},
		{"azimuth", formatFloat(s.Azimuth)},
		{"sample rate", formatFloat(s.SampleRate)},
		{"input unit", s.InputUnit},
		{"output unit", s.OutputUnit},
		{"instrument", s.InstType},
		{"inst. gain", s.InstGain},
		{"sensitivity", s.Sensitivity},
		{"a0", formatFloat(s.A0)},
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(w, "  %-12s %s\n", r[0]+":", r[1])
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%g", *f)
}

func writeEntriesText(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no matching instruments")
		return
	}
	for _, e := range entries {
		info := e.Instrument.Info()
		fmt.Fprintf(w, "%-18s %s .. %s  %s #%d\n",
			info.SEEDID(), formatEpoch(info.Start), formatEpoch(info.End), e.Path, e.Ordinal)
	}
}

func writeFilesText(w io.Writer, files []catalog.FileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(w, "catalog is empty")
		return
	}
	for _, f := range files {
		fmt.Fprintf(w, "%s  %s  %2d instrument(s)  %s  %s\n",
			f.ID, f.ImportedAt.Format(time.RFC3339), f.Instruments, shortHash(f.SHA256), f.Path)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

package pz

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/PoleZero/core/errors"
)

// Marker starts every header (comment) line.
const Marker = "*"

// NotAvailable is the sentinel some files use for an open-ended epoch.
const NotAvailable = "N/A"

// Header keys with special coercion rules.
const (
	KeyLocation = "LOCATION"
	KeyStart    = "START"
	KeyEnd      = "END"
	KeyCreated  = "CREATED"
)

// TemporalKeys are coerced to timestamps unless their value is NotAvailable.
var TemporalKeys = []string{KeyStart, KeyEnd, KeyCreated}

// timestampLayouts are tried in order. All zone-less layouts are read as UTC.
// Fractional seconds are accepted after any seconds field.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-002T15:04:05",
	"2006.002.15.04.05",
}

// sacAliasPattern matches IRIS keys that carry the SAC header variable,
// such as "LOCATION   (KHOLE)".
var sacAliasPattern = regexp.MustCompile(`^(\w+)\s*\(K\w+\)$`)

// canonicalKey strips a SAC alias suffix, so "LOCATION   (KHOLE)" is
// treated like "LOCATION". Every other key is returned unchanged.
func canonicalKey(key string) string {
	if m := sacAliasPattern.FindStringSubmatch(key); m != nil {
		return m[1]
	}
	return key
}

func isTemporal(key string) bool {
	name := canonicalKey(key)
	for _, k := range TemporalKeys {
		if k == name {
			return true
		}
	}
	return false
}

// ParseTimestamp parses a header timestamp. Plain numbers are taken as
// seconds since the Unix epoch.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	}
	return time.Time{}, firstErr
}

// splitHeaderLine returns the key and value of "*KEY: value". ok is false
// for non-comment lines and comment lines without a colon.
func splitHeaderLine(line string) (key, value string, ok bool) {
	rest, found := strings.CutPrefix(line, Marker)
	if !found {
		return "", "", false
	}
	key, value, found = strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// ExtractHeader collects the "*KEY: value" lines of b. Values are coerced
// to numbers where they parse as one, except LOCATION which keeps its exact
// text. START, END and CREATED become timestamps unless they read "N/A"; a
// value that is neither fails with a MalformedTimestamp FormatError. Keys
// with a SAC alias such as "LOCATION   (KHOLE)" follow the rules of the
// bare name; "CREATED BY" is an ordinary field. Later duplicates of a key
// replace earlier ones.
func ExtractHeader(b Block) (Header, error) {
	header := make(Header)
	lineOf := make(map[string]int)
	var order []string
	for _, l := range b.Lines {
		key, value, ok := splitHeaderLine(l.Text)
		if !ok {
			continue
		}
		if _, seen := header[key]; !seen {
			order = append(order, key)
		}
		header[key] = StringValue(value)
		lineOf[key] = l.Num
	}

	for _, key := range order {
		raw := header[key].raw
		switch {
		case canonicalKey(key) == KeyLocation:
		case isTemporal(key):
			if raw == NotAvailable {
				continue
			}
			t, err := ParseTimestamp(raw)
			if err != nil {
				return nil, &errors.FormatError{
					Kind:   errors.MalformedTimestamp,
					Field:  key,
					Block:  b.Index,
					Line:   lineOf[key],
					Detail: fmt.Sprintf("%q", raw),
					Err:    err,
				}
			}
			header[key] = TimeValue(raw, t)
		default:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				header[key] = NumberValue(raw, f)
			}
		}
	}
	return header, nil
}

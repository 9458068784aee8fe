package pz

import (
	"time"
)

// StationInfo is a typed view over the header fields most PZ writers emit.
// Fields that are absent, or whose value has a different kind, stay zero.
type StationInfo struct {
	Network     string     `json:"network,omitempty"`
	Station     string     `json:"station,omitempty"`
	Location    string     `json:"location,omitempty"`
	Channel     string     `json:"channel,omitempty"`
	Description string     `json:"description,omitempty"`
	Created     *time.Time `json:"created,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Elevation   *float64   `json:"elevation,omitempty"`
	Depth       *float64   `json:"depth,omitempty"`
	Dip         *float64   `json:"dip,omitempty"`
	Azimuth     *float64   `json:"azimuth,omitempty"`
	SampleRate  *float64   `json:"sample_rate,omitempty"`
	InputUnit   string     `json:"input_unit,omitempty"`
	OutputUnit  string     `json:"output_unit,omitempty"`
	InstType    string     `json:"insttype,omitempty"`
	InstGain    string     `json:"instgain,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Sensitivity string     `json:"sensitivity,omitempty"`
	A0          *float64   `json:"a0,omitempty"`
}

// Lookup finds a field by its well-known name. An exact key wins; otherwise
// a key carrying a SAC alias, such as "STATION    (KSTNM)", matches its
// bare name.
func (h Header) Lookup(name string) (Value, bool) {
	if v, ok := h[name]; ok {
		return v, true
	}
	var (
		found   Value
		foundAt string
	)
	for key, v := range h {
		if canonicalKey(key) != name {
			continue
		}
		// Map order is random; pick the smallest key for stable results.
		if foundAt == "" || key < foundAt {
			found, foundAt = v, key
		}
	}
	return found, foundAt != ""
}

func (h Header) lookupText(name string) string {
	if v, ok := h.Lookup(name); ok {
		return v.Raw()
	}
	return ""
}

func (h Header) lookupNumber(name string) *float64 {
	if v, ok := h.Lookup(name); ok {
		if f, isNum := v.Number(); isNum {
			return &f
		}
	}
	return nil
}

func (h Header) lookupTime(name string) *time.Time {
	if v, ok := h.Lookup(name); ok {
		if t, isTime := v.Time(); isTime {
			return &t
		}
	}
	return nil
}

// Info returns the well-known header fields of the instrument. Text fields
// use the raw header text, so a numeric-looking STATION keeps its spelling.
func (in *Instrument) Info() StationInfo {
	h := in.Header
	return StationInfo{
		Network:     h.lookupText("NETWORK"),
		Station:     h.lookupText("STATION"),
		Location:    h.lookupText(KeyLocation),
		Channel:     h.lookupText("CHANNEL"),
		Description: h.lookupText("DESCRIPTION"),
		Created:     h.lookupTime(KeyCreated),
		Start:       h.lookupTime(KeyStart),
		End:         h.lookupTime(KeyEnd),
		Latitude:    h.lookupNumber("LATITUDE"),
		Longitude:   h.lookupNumber("LONGITUDE"),
		Elevation:   h.lookupNumber("ELEVATION"),
		Depth:       h.lookupNumber("DEPTH"),
		Dip:         h.lookupNumber("DIP"),
		Azimuth:     h.lookupNumber("AZIMUTH"),
		SampleRate:  h.lookupNumber("SAMPLE RATE"),
		InputUnit:   h.lookupText("INPUT UNIT"),
		OutputUnit:  h.lookupText("OUTPUT UNIT"),
		InstType:    h.lookupText("INSTTYPE"),
		InstGain:    h.lookupText("INSTGAIN"),
		Comment:     h.lookupText("COMMENT"),
		Sensitivity: h.lookupText("SENSITIVITY"),
		A0:          h.lookupNumber("A0"),
	}
}

// SEEDID returns "NET.STA.LOC.CHA" built from the header.
func (s StationInfo) SEEDID() string {
	return s.Network + "." + s.Station + "." + s.Location + "." + s.Channel
}

// ActiveAt reports whether t falls within the instrument's epoch. A missing
// START or END (including "N/A") leaves that side open.
func (s StationInfo) ActiveAt(t time.Time) bool {
	if s.Start != nil && t.Before(*s.Start) {
		return false
	}
	if s.End != nil && t.After(*s.End) {
		return false
	}
	return true
}

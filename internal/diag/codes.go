package diag

import (
	"fmt"
)

// Severity orders diagnostics. A run fails when any diagnostic is SevError.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{SevInfo: "INFO", SevWarning: "WARNING", SevError: "ERROR"}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

type Code uint16

const (
	UnknownCode Code = 0

	// Header recognition
	HdrInfo          Code = 1000
	HdrMalformedStub Code = 1001
	HdrSkippedStub   Code = 1002
	HdrBadBound      Code = 1003
	HdrLongSymbol    Code = 1004

	// Stub table invariants
	StbInfo              Code = 2000
	StbDuplicateSymbol   Code = 2001
	StbDuplicateFunction Code = 2002
	StbBoundTooLow       Code = 2003
	StbDuplicateIndex    Code = 2004

	// Emission
	EmtInfo        Code = 3000
	EmtOffsetRange Code = 3001

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002

	// Project manifest
	PrjInfo            Code = 5000
	PrjBadManifest     Code = 5001
	PrjDuplicateTarget Code = 5002
	PrjOutputConflict  Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	HdrInfo:              "Header information",
	HdrMalformedStub:     "Malformed stub declaration",
	HdrSkippedStub:       "Stub declaration skipped",
	HdrBadBound:          "Invalid MAX_ZIS_STUBS value",
	HdrLongSymbol:        "Stub symbol exceeds the label field",
	StbInfo:              "Stub table information",
	StbDuplicateSymbol:   "Duplicate stub symbol",
	StbDuplicateFunction: "Duplicate function name",
	StbBoundTooLow:       "MAX_ZIS_STUBS too low",
	StbDuplicateIndex:    "Duplicate stub index",
	EmtInfo:              "Emitter information",
	EmtOffsetRange:       "Slot offset out of range",
	IOInfo:               "I/O information",
	IOLoadFileError:      "I/O load file error",
	IOWriteError:         "I/O write error",
	PrjInfo:              "Project information",
	PrjBadManifest:       "Invalid zisstub.toml",
	PrjDuplicateTarget:   "Duplicate target name",
	PrjOutputConflict:    "Conflicting target output",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("HDR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STB%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

// Severity is the severity a code is reported with. The x000 codes of each
// family are informational; skipped and truncated stubs only warn.
func (c Code) Severity() Severity {
	switch {
	case c == HdrSkippedStub, c == HdrLongSymbol:
		return SevWarning
	case c != UnknownCode && c%1000 == 0:
		return SevInfo
	}
	return SevError
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

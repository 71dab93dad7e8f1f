package stubs

import (
	"regexp"
	"strconv"
)

var (
	stubDeclRE  = regexp.MustCompile(`^#define\s+ZIS_STUB_(?P<symbol>\S+)\s+(?P<index>[0-9]{1,8})\s*/\*\s*(?P<function>\S+)(?P<mapped>\s+mapped)?\s*\*/\s*$`)
	boundDeclRE = regexp.MustCompile(`^#define\s+MAX_ZIS_STUBS\s+(?P<max>[0-9]+)\s*$`)

	// stubKeywordRE marks lines that claim to be stub declarations.
	stubKeywordRE = regexp.MustCompile(`^#define\s+ZIS_STUB_`)

	stubSymbolGroup   = stubDeclRE.SubexpIndex("symbol")
	stubIndexGroup    = stubDeclRE.SubexpIndex("index")
	stubFunctionGroup = stubDeclRE.SubexpIndex("function")
	stubMappedGroup   = stubDeclRE.SubexpIndex("mapped")
	boundMaxGroup     = boundDeclRE.SubexpIndex("max")
)

// DeclKind classifies a header line.
type DeclKind uint8

const (
	// DeclNone is any line the generator does not care about.
	DeclNone DeclKind = iota
	// DeclBound is a MAX_ZIS_STUBS definition.
	DeclBound
	// DeclStub is a complete ZIS_STUB_ definition.
	DeclStub
	// DeclMalformed starts like a stub definition but lacks the required shape.
	DeclMalformed
)

func (k DeclKind) String() string {
	switch k {
	case DeclNone:
		return "none"
	case DeclBound:
		return "bound"
	case DeclStub:
		return "stub"
	case DeclMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Decl is the result of matching one line.
type Decl struct {
	Kind     DeclKind
	Symbol   string
	Index    int
	Function string
	Mapped   bool

	// Bound holds the MAX_ZIS_STUBS value; BoundErr is set when the
	// literal does not fit an int.
	Bound    int
	BoundErr error
}

// Match classifies a single header line. Stub lines are tried first, so a
// line is never both.
func Match(line string) Decl {
	if m := stubDeclRE.FindStringSubmatch(line); m != nil {
		// at most 8 digits, always fits
		index, _ := strconv.Atoi(m[stubIndexGroup])
		return Decl{
			Kind:     DeclStub,
			Symbol:   m[stubSymbolGroup],
			Index:    index,
			Function: m[stubFunctionGroup],
			Mapped:   m[stubMappedGroup] != "",
		}
	}
	if stubKeywordRE.MatchString(line) {
		return Decl{Kind: DeclMalformed}
	}
	if m := boundDeclRE.FindStringSubmatch(line); m != nil {
		bound, err := strconv.Atoi(m[boundMaxGroup])
		return Decl{Kind: DeclBound, Bound: bound, BoundErr: err}
	}
	return Decl{Kind: DeclNone}
}

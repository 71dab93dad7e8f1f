package stubs

import (
	"fmt"
	"strings"

	"github.com/zowe/zss/internal/source"
)

// Entry is one recognised stub declaration.
type Entry struct {
	Symbol   string // trampoline name, exported via ENTRY
	Index    int    // slot in the stub vector; slot 0 is reserved
	Function string // name of the real implementation
	Mapped   bool   // alias already established elsewhere, no ALIAS emitted
	Span     source.Span
}

// DispatchMode selects how a trampoline locates the stub vector.
type DispatchMode uint8

const (
	// DispatchR12 walks from the LE CAA in GPR12 to the RLE anchor.
	DispatchR12 DispatchMode = iota + 1
	// DispatchZVTE walks CVT -> ECVT -> CSRCTABL -> ZVT -> first ZVTE.
	DispatchZVTE
)

func (m DispatchMode) String() string {
	switch m {
	case DispatchR12:
		return "r12"
	case DispatchZVTE:
		return "zvte"
	default:
		return "unknown"
	}
}

// ParseDispatchMode converts a command-line token; empty means r12.
func ParseDispatchMode(s string) (DispatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "r12":
		return DispatchR12, nil
	case "zvte":
		return DispatchZVTE, nil
	default:
		return 0, fmt.Errorf("unknown dispatch mode %s", s)
	}
}

// OutputMode selects which artifact the emitter produces.
type OutputMode uint8

const (
	// OutputASM produces HLASM trampolines.
	OutputASM OutputMode = iota + 1
	// OutputInit produces C statements filling the stub vector.
	OutputInit
)

func (m OutputMode) String() string {
	switch m {
	case OutputASM:
		return "asm"
	case OutputInit:
		return "init"
	default:
		return "unknown"
	}
}

// ParseOutputMode converts a command word (asm|init).
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asm":
		return OutputASM, nil
	case "init":
		return OutputInit, nil
	default:
		return 0, fmt.Errorf("unknown command %s", s)
	}
}

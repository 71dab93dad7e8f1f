package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding selects how header bytes are decoded before line splitting.
type Encoding uint8

const (
	// EncodingUTF8 reads the header as-is (ASCII/UTF-8).
	EncodingUTF8 Encoding = iota
	// EncodingEBCDIC decodes the header from IBM code page 1047,
	// the default code page of z/OS UNIX files.
	EncodingEBCDIC
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf8"
	case EncodingEBCDIC:
		return "ebcdic"
	default:
		return "unknown"
	}
}

// ParseEncoding converts a flag or config value to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8", "ascii":
		return EncodingUTF8, nil
	case "ebcdic", "ibm1047", "ibm-1047", "cp1047":
		return EncodingEBCDIC, nil
	default:
		return EncodingUTF8, fmt.Errorf("invalid encoding: %q (expected: utf8|ebcdic)", s)
	}
}

func (e Encoding) decode(r io.Reader) io.Reader {
	if e == EncodingEBCDIC {
		return transform.NewReader(r, charmap.CodePage1047.NewDecoder())
	}
	return r
}

package fuzztests

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addHeaderSeeds(f)
	f.Add([]byte{})
	f.Add([]byte("#define MAX_ZIS_STUBS 10\n#define ZIS_STUB_FOO 1 /* fooImpl */\n"))
	f.Add([]byte("#define ZIS_STUB_BAR 0 /* barImpl mapped */\n"))
	f.Add([]byte("#define MAX_ZIS_STUBS 2\n#define ZIS_STUB_A 1 /* f */\n#define ZIS_STUB_B 1 /* g */\n"))
	f.Add([]byte("#define ZIS_STUB_FOO 1\r\n#define MAX_ZIS_STUBS 99999999999999999999\r\n"))
}

// addHeaderSeeds adds the shipped header whole and in slices, so mutations
// start from realistic declarations.
func addHeaderSeeds(f *testing.F) {
	path := filepath.Join("..", "stubs", "testdata", "zisstubs.h")
	// #nosec G304 -- path is a fixed repository location
	src, err := os.ReadFile(path)
	if err != nil {
		return
	}
	f.Add(clampSeed(src))
	lines := bytes.SplitAfter(src, []byte{'\n'})
	const chunk = 40
	for i := 0; i < len(lines); i += chunk {
		end := min(i+chunk, len(lines))
		f.Add(clampSeed(bytes.Join(lines[i:end], nil)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

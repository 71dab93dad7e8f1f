package project

import (
	"bufio"
	"bytes"
	"strings"
)

// anyOrdinal matches every occurrence of an array table.
const anyOrdinal = -1

// keyPos is where a key (or, with an empty key, a table header) appears in
// zisstub.toml.
type keyPos struct {
	table   string
	ordinal int
	key     string
	line    int
}

// keyLocator maps manifest keys back to their 1-based lines so semantic
// errors can point at the offending key. It understands the subset of TOML
// zisstub.toml uses: [table] and [[table]] headers followed by key = value
// lines. Anything else is ignored and reports line 0.
type keyLocator struct {
	positions []keyPos
}

func newKeyLocator(data []byte) keyLocator {
	var (
		loc     keyLocator
		table   string
		ordinal int
		counts  = make(map[string]int)
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "" || strings.HasPrefix(text, "#"):
			continue
		case strings.HasPrefix(text, "[["):
			end := strings.Index(text, "]]")
			if end < 0 {
				continue
			}
			table = strings.TrimSpace(text[2:end])
			ordinal = counts[table]
			counts[table]++
		case strings.HasPrefix(text, "["):
			end := strings.IndexByte(text, ']')
			if end < 0 {
				continue
			}
			table = strings.TrimSpace(text[1:end])
			ordinal = 0
		default:
			eq := strings.IndexByte(text, '=')
			if eq <= 0 {
				continue
			}
			key := strings.Trim(strings.TrimSpace(text[:eq]), `"'`)
			loc.positions = append(loc.positions, keyPos{table: table, ordinal: ordinal, key: key, line: n})
			continue
		}
		loc.positions = append(loc.positions, keyPos{table: table, ordinal: ordinal, line: n})
	}
	return loc
}

// line returns the line of key in the ordinal-th occurrence of table, or of
// the table header when key is empty. A key missing from its table falls back
// to the header line; an unknown table gives 0.
func (l keyLocator) line(table string, ordinal int, key string) int {
	header := 0
	for _, p := range l.positions {
		if p.table != table || (ordinal != anyOrdinal && p.ordinal != ordinal) {
			continue
		}
		if p.key == key {
			return p.line
		}
		if p.key == "" && header == 0 {
			header = p.line
		}
	}
	return header
}

package stubs

import (
	"errors"
	"io"
)

// Generate runs one pass: prologue, a block per entry in header order,
// epilogue. onEntry, if set, sees every entry after it is written.
// Output already written is not rolled back on error. Generate does not
// close sc.
func Generate(sc *Scanner, em *Emitter, onEntry func(Entry)) (int, error) {
	if err := em.Prologue(); err != nil {
		return 0, err
	}
	n := 0
	for {
		e, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if err := em.Entry(e); err != nil {
			return n, err
		}
		n++
		if onEntry != nil {
			onEntry(e)
		}
	}
	return n, em.Epilogue()
}

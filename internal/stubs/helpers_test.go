package stubs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zowe/zss/internal/diag"
	"github.com/zowe/zss/internal/source"
)

// closeTracker counts Close calls on the in-memory header.
type closeTracker struct {
	*strings.Reader
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func newTestScanner(t *testing.T, header string, opts ScanOptions) (*Scanner, *closeTracker, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	r := &closeTracker{Reader: strings.NewReader(header)}
	lr := fs.Reader("zisstubs.h", r, source.EncodingUTF8)
	return NewScanner(lr, opts), r, fs
}

// generateString runs a full pass and returns the artifact text.
func generateString(t *testing.T, header string, out OutputMode, dispatch DispatchMode) (string, error) {
	t.Helper()
	sc, _, _ := newTestScanner(t, header, ScanOptions{})
	defer sc.Close()
	var buf bytes.Buffer
	em, err := NewEmitter(&buf, out, dispatch)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	_, err = Generate(sc, em, nil)
	return buf.String(), err
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func newBagReporter() (*diag.Bag, diag.Reporter) {
	bag := diag.NewBag(0)
	return bag, diag.BagReporter{Bag: bag}
}

func spanAt(line uint32) source.Span {
	return source.Span{Start: line * 10, End: line*10 + 5}
}

package source

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"fortio.org/safecast"
)

const maxLineBytes = 1 << 20

// Line is one header line with its terminator stripped.
type Line struct {
	Num  uint32 // 1-based
	Text string
	Span Span
}

// LineReader streams a header one line at a time. Each line read is appended
// to the backing File so diagnostics can quote it later. The reader must be
// closed on every exit path.
type LineReader struct {
	fs     *FileSet
	id     FileID
	sc     *bufio.Scanner
	closer io.Closer
	sum    hash.Hash
	num    uint32
	off    uint32
	closed bool
}

// Open opens path for streaming and registers it in the FileSet.
func (fileSet *FileSet) Open(path string, enc Encoding) (*LineReader, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	flags := FileFlags(0)
	if enc == EncodingEBCDIC {
		flags |= FileEBCDIC
	}
	return fileSet.newLineReader(path, f, f, enc, flags), nil
}

// Reader streams an in-memory or already-open reader as a virtual file.
// Closing the LineReader closes r when r implements io.Closer.
func (fileSet *FileSet) Reader(name string, r io.Reader, enc Encoding) *LineReader {
	var closer io.Closer
	if c, ok := r.(io.Closer); ok {
		closer = c
	}
	flags := FileVirtual
	if enc == EncodingEBCDIC {
		flags |= FileEBCDIC
	}
	return fileSet.newLineReader(name, r, closer, enc, flags)
}

func (fileSet *FileSet) newLineReader(path string, r io.Reader, closer io.Closer, enc Encoding, flags FileFlags) *LineReader {
	id := fileSet.reserve(path, flags)
	sum := sha256.New()
	sc := bufio.NewScanner(enc.decode(io.TeeReader(r, sum)))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	if enc == EncodingEBCDIC {
		sc.Split(scanEBCDICLines)
	}
	return &LineReader{
		fs:     fileSet,
		id:     id,
		sc:     sc,
		closer: closer,
		sum:    sum,
	}
}

// File returns the ID the streamed header was registered under.
func (lr *LineReader) File() FileID {
	return lr.id
}

// Next returns the next line, or io.EOF when the input is exhausted.
func (lr *LineReader) Next() (Line, error) {
	if lr.closed {
		return Line{}, io.EOF
	}
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return Line{}, fmt.Errorf("read line %d: %w", lr.num+1, err)
		}
		lr.finish()
		return Line{}, io.EOF
	}

	text := lr.sc.Text()
	f := lr.fs.Get(lr.id)
	if lr.num == 0 && strings.HasPrefix(text, "\uFEFF") {
		text = strings.TrimPrefix(text, "\uFEFF")
		f.Flags |= FileHadBOM
	}
	if strings.HasSuffix(text, "\r") {
		text = strings.TrimSuffix(text, "\r")
		f.Flags |= FileNormalizedCRLF
	}

	width, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return Line{}, fmt.Errorf("line %d too long: %w", lr.num+1, err)
	}
	next, err := nextLineOffset(lr.off, width)
	if err != nil {
		return Line{}, fmt.Errorf("line %d: header too large: %w", lr.num+1, err)
	}
	lr.num++
	line := Line{
		Num:  lr.num,
		Text: text,
		Span: Span{File: lr.id, Start: lr.off, End: lr.off + width},
	}

	f.Content = append(f.Content, text...)
	f.LineIdx = append(f.LineIdx, lr.off+width)
	f.Content = append(f.Content, '\n')
	lr.off = next
	return line, nil
}

// nextLineOffset returns the offset of the line after one of width bytes
// starting at off. Spans are uint32, so the sum must fit.
func nextLineOffset(off, width uint32) (uint32, error) {
	return safecast.Conv[uint32](uint64(off) + uint64(width) + 1)
}

func (lr *LineReader) finish() {
	f := lr.fs.Get(lr.id)
	copy(f.Hash[:], lr.sum.Sum(nil))
}

// Close releases the underlying reader. Safe to call more than once.
func (lr *LineReader) Close() error {
	if lr.closed {
		return nil
	}
	lr.closed = true
	if lr.closer != nil {
		return lr.closer.Close()
	}
	return nil
}

// scanEBCDICLines splits on LF and on NEL, which IBM-1047 maps its
// newline byte 0x15 to.
func scanEBCDICLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	lf := bytes.IndexByte(data, '\n')
	nel := bytes.Index(data, []byte("\u0085"))
	switch {
	case lf >= 0 && (nel < 0 || lf < nel):
		return lf + 1, data[:lf], nil
	case nel >= 0:
		return nel + 2, data[:nel], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// HashFile returns the SHA-256 of the raw bytes at path.
func HashFile(path string) ([32]byte, error) {
	var out [32]byte
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, err
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

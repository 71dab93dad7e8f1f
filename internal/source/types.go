package source

type (
	// FileID uniquely identifies a header within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

// NoFile marks spans of diagnostics that have no source position, such as
// I/O failures. FileSet.Get returns nil for it.
const NoFile FileID = ^FileID(0)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // не с диска
	FileHadBOM
	FileNormalizedCRLF
	// FileEBCDIC marks a header decoded from IBM-1047.
	FileEBCDIC
)

// File captures metadata and content for a single header.
// For streamed files Content and LineIdx grow as lines are read.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

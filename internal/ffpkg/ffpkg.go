// Package ffpkg implements the FFPKG container format: an arbitrary image
// blob followed by a trailer that carries a set of small auxiliary files.
// The trailer is purely additive, so tools that only understand the image
// keep working, while FFPKG-aware readers locate the auxiliary files by
// walking backward from the end of the file.
package ffpkg

// Magic is the 5-byte sentinel that terminates every container.
const Magic = "ffpkg"

// Version is the trailer format version written by this package.
const Version uint16 = 1

const (
	// TitleIDLen is the exact length of the footer's title identifier.
	// Shorter values are never padded and longer ones never truncated.
	TitleIDLen = 9

	// FooterSize is the fixed tail of every trailer:
	// file_count (4) | title_id (9) | version (2) | magic (5).
	FooterSize = 4 + TitleIDLen + 2 + len(Magic)

	fileSizeFieldLen = 8
	pathLenFieldLen  = 2

	// path_len is a uint16 that counts the trailing NUL as well.
	maxPathBytes = 0xFFFF - 1
)

// Entry is one auxiliary file carried in the trailer.
type Entry struct {
	Path string
	Data []byte
}

// Trailer is the decoded tail of a container. Entries appear in the same
// order they were encoded in.
type Trailer struct {
	TitleID string
	Version uint16
	Entries []Entry

	// ImageSize is the number of bytes that belong to the image, i.e. the
	// offset at which the trailer starts.
	ImageSize int64
	// Size is the total trailer length in bytes, footer included.
	Size int64
}

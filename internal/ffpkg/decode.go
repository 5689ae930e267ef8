package ffpkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrBadMagic           = errors.New("bad magic")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrCorrupt            = errors.New("corrupt entry")
)

// DecodeTrailer parses the trailer of a container by walking backward from
// the end of r. size must be the total length of r.
//
// The format has no length-of-trailer field or checksum, so a truncated
// trailer is only detected when a field would move the cursor past the start
// of the file; that case surfaces as ErrCorrupt.
func DecodeTrailer(r io.ReaderAt, size int64) (*Trailer, error) {
	if size < int64(FooterSize) {
		return nil, fmt.Errorf("%w: file too small for footer (%d bytes)", ErrBadMagic, size)
	}
	foot := make([]byte, FooterSize)
	if _, err := r.ReadAt(foot, size-int64(FooterSize)); err != nil {
		return nil, fmt.Errorf("read footer: %w", err)
	}
	if string(foot[FooterSize-len(Magic):]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, foot[FooterSize-len(Magic):])
	}
	version := binary.LittleEndian.Uint16(foot[4+TitleIDLen : 4+TitleIDLen+2])
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	titleID := string(foot[4 : 4+TitleIDLen])
	count := binary.LittleEndian.Uint32(foot[0:4])

	cursor := size - int64(FooterSize)
	var entries []Entry
	for i := uint32(0); i < count; i++ {
		var err error
		var e Entry
		e, cursor, err = decodeEntryAt(r, cursor)
		if err != nil {
			return nil, fmt.Errorf("entry %d of %d: %w", count-i, count, err)
		}
		entries = append(entries, e)
	}
	// Walking backward visited the records last-first; restore encode order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return &Trailer{
		TitleID:   titleID,
		Version:   version,
		Entries:   entries,
		ImageSize: cursor,
		Size:      size - cursor,
	}, nil
}

// decodeEntryAt reads the record whose last byte sits at cursor-1 and
// returns the new cursor, which points at the first byte of the record.
func decodeEntryAt(r io.ReaderAt, cursor int64) (Entry, int64, error) {
	cursor -= pathLenFieldLen
	if cursor < 0 {
		return Entry{}, 0, fmt.Errorf("%w: path length field out of file", ErrCorrupt)
	}
	var field [8]byte
	if _, err := r.ReadAt(field[:pathLenFieldLen], cursor); err != nil {
		return Entry{}, 0, fmt.Errorf("read path length: %w", err)
	}
	pathLen := int64(binary.LittleEndian.Uint16(field[:pathLenFieldLen]))
	if pathLen == 0 {
		return Entry{}, 0, fmt.Errorf("%w: zero path length", ErrCorrupt)
	}

	cursor -= pathLen
	if cursor < 0 {
		return Entry{}, 0, fmt.Errorf("%w: path field out of file", ErrCorrupt)
	}
	pathBuf := make([]byte, pathLen)
	if _, err := r.ReadAt(pathBuf, cursor); err != nil {
		return Entry{}, 0, fmt.Errorf("read path: %w", err)
	}
	if pathBuf[pathLen-1] != 0 {
		return Entry{}, 0, fmt.Errorf("%w: path missing NUL terminator", ErrCorrupt)
	}

	cursor -= fileSizeFieldLen
	if cursor < 0 {
		return Entry{}, 0, fmt.Errorf("%w: file size field out of file", ErrCorrupt)
	}
	if _, err := r.ReadAt(field[:], cursor); err != nil {
		return Entry{}, 0, fmt.Errorf("read file size: %w", err)
	}
	fileSize := binary.LittleEndian.Uint64(field[:])
	if fileSize > uint64(cursor) {
		return Entry{}, 0, fmt.Errorf("%w: file size %d overruns start of file", ErrCorrupt, fileSize)
	}

	cursor -= int64(fileSize)
	data := make([]byte, fileSize)
	if fileSize > 0 {
		if _, err := r.ReadAt(data, cursor); err != nil {
			return Entry{}, 0, fmt.Errorf("read file data: %w", err)
		}
	}
	return Entry{Path: string(pathBuf[:pathLen-1]), Data: data}, cursor, nil
}

// Open decodes the trailer of the container file at path.
func Open(path string) (*Trailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return DecodeTrailer(f, info.Size())
}

package ffpkg

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrTitleIDLength   = errors.New("invalid title id length")
	ErrTitleIDNotASCII = errors.New("title id is not ASCII")
	ErrPathEmpty       = errors.New("entry path is empty")
	ErrPathNotASCII    = errors.New("non-ASCII path")
	ErrPathTooLong     = errors.New("entry path too long")
)

// EncodeEntry renders one (path, content) pair into its on-disk record.
// The fields are written forward but consumed backward, so a reader at the
// end of the record sees:
//
//	path_len (LE16) | path + NUL | file_size (LE64) | file_data
//
// path must be non-empty ASCII with forward-slash separators; anything else
// is rejected rather than transformed.
func EncodeEntry(path string, data []byte) ([]byte, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(data)+fileSizeFieldLen+len(path)+1+pathLenFieldLen)
	buf = append(buf, data...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(data)))
	buf = append(buf, path...)
	buf = append(buf, 0x00)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(path)+1))
	return buf, nil
}

// EncodeTrailer assembles the complete trailer for the given entries:
// every encoded record in caller order, then the fixed 20-byte footer.
// Zero entries is valid and yields just the footer.
//
// The assembler does not sort; callers that need reproducible output must
// order entries by path first (source.List does).
func EncodeTrailer(entries []Entry, titleID string) ([]byte, error) {
	if err := CheckTitleID(titleID); err != nil {
		return nil, err
	}
	var buf []byte
	for _, e := range entries {
		rec, err := EncodeEntry(e.Path, e.Data)
		if err != nil {
			return nil, fmt.Errorf("encode entry %q: %w", e.Path, err)
		}
		buf = append(buf, rec...)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entries)))
	buf = append(buf, titleID...)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = append(buf, Magic...)
	return buf, nil
}

// CheckTitleID reports whether id fits the footer's fixed 9-byte field.
func CheckTitleID(id string) error {
	if len(id) != TitleIDLen {
		return fmt.Errorf("%w: need exactly %d characters, got %d", ErrTitleIDLength, TitleIDLen, len(id))
	}
	for i := 0; i < len(id); i++ {
		if id[i] == 0 || id[i] > 0x7F {
			return fmt.Errorf("%w: %q", ErrTitleIDNotASCII, id)
		}
	}
	return nil
}

func checkPath(path string) error {
	if path == "" {
		return ErrPathEmpty
	}
	if len(path) > maxPathBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPathTooLong, len(path), maxPathBytes)
	}
	for i := 0; i < len(path); i++ {
		if path[i] == 0 || path[i] > 0x7F {
			return fmt.Errorf("%w: %q", ErrPathNotASCII, path)
		}
	}
	return nil
}

package ffpkg

import (
	"fmt"
	"os"
)

// Create assembles the trailer for entries, appends it to the image file at
// imagePath and renames the result to outPath. The image bytes are never
// read or rewritten.
//
// All validation happens before the image is opened, so a failed call leaves
// the file byte-for-byte as found. An empty outPath, or one equal to
// imagePath, finalizes the container in place.
func Create(imagePath, outPath, titleID string, entries []Entry) error {
	trailer, err := EncodeTrailer(entries, titleID)
	if err != nil {
		return err
	}
	if err := Append(imagePath, trailer); err != nil {
		return err
	}
	if outPath == "" || outPath == imagePath {
		return nil
	}
	if err := os.Rename(imagePath, outPath); err != nil {
		return fmt.Errorf("finalize container: %w", err)
	}
	return nil
}

// Append writes an already-assembled trailer to the end of the file at path.
// The file is opened for append, never truncate.
func Append(path string, trailer []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	if _, err := f.Write(trailer); err != nil {
		f.Close()
		return fmt.Errorf("append trailer: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync container: %w", err)
	}
	return f.Close()
}

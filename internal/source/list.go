// Package source turns a directory tree into the ordered entry set consumed
// by the trailer assembler.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"example.com/ffpkggate/internal/ffpkg"
)

// List walks dir on fsys and returns one entry per regular file. Entry paths
// are the directory's base name plus the file's relative path, normalized to
// forward slashes, so walking "sce_sys" yields "sce_sys/icon0.png" and so on.
//
// The result is sorted by full path. That sort is the determinism contract:
// identical trees always produce identical entry order, and therefore
// byte-identical trailers, regardless of walk order.
func List(fsys afero.Fs, dir string) ([]ffpkg.Entry, error) {
	base := filepath.Base(filepath.Clean(dir))
	var entries []ffpkg.Entry
	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read source file %s: %w", path, err)
		}
		entries = append(entries, ffpkg.Entry{
			Path: filepath.ToSlash(filepath.Join(base, rel)),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

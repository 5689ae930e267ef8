package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// saveUploadedFile copies one multipart part to dest, creating parent
// directories as needed.
func saveUploadedFile(fh *multipart.FileHeader, dest string) (int64, error) {
	if fh == nil {
		return 0, fmt.Errorf("nil file header")
	}
	src, err := fh.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		os.Remove(dest)
		return 0, err
	}
	return n, out.Close()
}

// sanitizeRelPath normalizes an uploaded filename to a safe relative path.
// Absolute paths and anything escaping the staging directory are rejected.
func sanitizeRelPath(name string) (string, error) {
	p := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if p == "" {
		return "", fmt.Errorf("empty file name")
	}
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("absolute path %q not allowed", name)
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes the staging directory", name)
	}
	return clean, nil
}

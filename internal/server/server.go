// Package server exposes FFPKG packaging over HTTP for the ffpkgd daemon.
package server

import (
	"os"
	"path/filepath"
)

const defaultMaxUploadMB = 512

// Options configures server creation.
type Options struct {
	// StorageDir is where per-request job directories are staged.
	// Defaults to the system temp directory.
	StorageDir string
	// MaxUploadMB bounds the size of a multipart packaging request.
	MaxUploadMB int
	// AuxDirName is the default directory prefix for uploaded auxiliary
	// files when a request does not name one. Defaults to "sce_sys".
	AuxDirName string
}

// Server stages uploaded images and auxiliary files into per-job work
// directories and builds containers from them. Each job owns its staging
// directory exclusively for the duration of the request.
type Server struct {
	workDir    string
	maxUpload  int64
	auxDirName string
}

// NewServer constructs a Server rooted at a temporary workspace directory.
func NewServer(opts Options) (*Server, error) {
	storageDir := opts.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(storageDir, "ffpkgd-")
	if err != nil {
		return nil, err
	}
	maxUploadMB := opts.MaxUploadMB
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	auxDirName := opts.AuxDirName
	if auxDirName == "" {
		auxDirName = "sce_sys"
	}
	return &Server{
		workDir:    workDir,
		maxUpload:  int64(maxUploadMB) << 20,
		auxDirName: auxDirName,
	}, nil
}

// Close removes any temporary state associated with the server.
func (s *Server) Close() error {
	if s == nil || s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

func (s *Server) newJobDir() (string, error) {
	return os.MkdirTemp(s.workDir, "job-")
}

func (s *Server) jobPath(jobDir string, parts ...string) string {
	return filepath.Join(append([]string{jobDir}, parts...)...)
}

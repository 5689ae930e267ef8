package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/afero"

	"example.com/ffpkggate/internal/common"
	"example.com/ffpkggate/internal/ffpkg"
	"example.com/ffpkggate/internal/report"
	"example.com/ffpkggate/internal/source"
)

// handlePackage builds a container from a multipart request carrying the
// image (part "image"), the auxiliary files (parts "aux", filenames are
// paths relative to the auxiliary directory) and the form values "title"
// and optionally "dir".
//
// All validation happens before anything is staged; an invalid request
// never creates a job directory.
func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart: %v", err))
		return
	}
	if r.MultipartForm == nil {
		writeError(w, http.StatusBadRequest, "no multipart body")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if err := ffpkg.CheckTitleID(title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	auxDir := strings.TrimSpace(r.FormValue("dir"))
	if auxDir == "" {
		auxDir = s.auxDirName
	}
	if cleaned, err := sanitizeRelPath(auxDir); err != nil || strings.Contains(cleaned, "/") {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid auxiliary directory name %q", auxDir))
		return
	}
	images := r.MultipartForm.File["image"]
	if len(images) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one image part is required")
		return
	}
	auxParts := r.MultipartForm.File["aux"]
	auxPaths := make([]string, len(auxParts))
	for i, fh := range auxParts {
		rel, err := sanitizeRelPath(fh.Filename)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("aux file: %v", err))
			return
		}
		auxPaths[i] = rel
	}

	jobDir, err := s.newJobDir()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("stage job: %v", err))
		return
	}
	defer os.RemoveAll(jobDir)

	imagePath := s.jobPath(jobDir, "image.img")
	imageSize, err := saveUploadedFile(images[0], imagePath)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("stage image: %v", err))
		return
	}
	auxRoot := s.jobPath(jobDir, auxDir)
	if err := os.MkdirAll(auxRoot, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("stage aux dir: %v", err))
		return
	}
	for i, fh := range auxParts {
		if _, err := saveUploadedFile(fh, s.jobPath(jobDir, auxDir, auxPaths[i])); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("stage aux file %s: %v", fh.Filename, err))
			return
		}
	}

	entries, err := source.List(afero.NewOsFs(), auxRoot)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list aux files: %v", err))
		return
	}
	containerPath := s.jobPath(jobDir, title+".ffpkg")
	if err := ffpkg.Create(imagePath, containerPath, title, entries); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("build container: %v", err))
		return
	}
	common.Logf("packaged %s: image %s, %d aux files", title, common.FormatBytes(imageSize), len(entries))

	f, err := os.Open(containerPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("open container: %v", err))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("stat container: %v", err))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+".ffpkg"))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	if _, err := io.Copy(w, f); err != nil {
		common.Logf("send container %s: %v", title, err)
	}
}

// handleInspect decodes the trailer of an uploaded container (part
// "container") and responds with its contents listing.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart: %v", err))
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["container"]) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one container part is required")
		return
	}

	jobDir, err := s.newJobDir()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("stage job: %v", err))
		return
	}
	defer os.RemoveAll(jobDir)

	containerPath := s.jobPath(jobDir, "upload.ffpkg")
	if _, err := saveUploadedFile(r.MultipartForm.File["container"][0], containerPath); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("stage container: %v", err))
		return
	}
	info, err := report.Inspect(containerPath)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("decode trailer: %v", err))
		return
	}
	// The staging path is meaningless to the caller.
	info.Path = r.MultipartForm.File["container"][0].Filename
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

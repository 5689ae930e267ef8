// Package report renders human-readable summaries of FFPKG containers.
package report

import (
	"encoding/json"
	"os"

	"example.com/ffpkggate/internal/common"
	"example.com/ffpkggate/internal/ffpkg"
)

// EntryInfo is one auxiliary file as listed in a report.
type EntryInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// ContainerInfo summarizes a decoded container for reporting.
type ContainerInfo struct {
	Path        string      `json:"path"`
	TitleID     string      `json:"titleId"`
	Version     uint16      `json:"version"`
	ImageSize   int64       `json:"imageSize"`
	TrailerSize int64       `json:"trailerSize"`
	Sha256      string      `json:"sha256"`
	Entries     []EntryInfo `json:"entries"`
}

// Inspect decodes the container at path and hashes the whole file.
func Inspect(path string) (ContainerInfo, error) {
	tr, err := ffpkg.Open(path)
	if err != nil {
		return ContainerInfo{}, err
	}
	sha, _, err := common.Sha256OfFile(path)
	if err != nil {
		return ContainerInfo{}, err
	}
	info := ContainerInfo{
		Path:        path,
		TitleID:     tr.TitleID,
		Version:     tr.Version,
		ImageSize:   tr.ImageSize,
		TrailerSize: tr.Size,
		Sha256:      sha,
		Entries:     make([]EntryInfo, 0, len(tr.Entries)),
	}
	for _, e := range tr.Entries {
		info.Entries = append(info.Entries, EntryInfo{Path: e.Path, Size: int64(len(e.Data))})
	}
	return info, nil
}

func SaveContentsJSON(info ContainerInfo, out string) error {
	b, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

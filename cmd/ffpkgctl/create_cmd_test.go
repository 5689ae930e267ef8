package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"example.com/ffpkggate/internal/ffpkg"
)

func TestCreateCmdBuildsContainer(t *testing.T) {
	root := t.TempDir()
	auxDir := filepath.Join(root, "sce_sys")
	if err := os.MkdirAll(filepath.Join(auxDir, "trophy"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(auxDir, "param.json"), []byte(`{"title":"snake"}`), 0o644); err != nil {
		t.Fatalf("WriteFile param: %v", err)
	}
	if err := os.WriteFile(filepath.Join(auxDir, "trophy", "trophy.trp"), []byte("trp"), 0o644); err != nil {
		t.Fatalf("WriteFile trophy: %v", err)
	}
	image := bytes.Repeat([]byte{0x5A}, 1024)
	imagePath := filepath.Join(root, "snake.img")
	if err := os.WriteFile(imagePath, image, 0o644); err != nil {
		t.Fatalf("WriteFile image: %v", err)
	}
	outPath := filepath.Join(root, "snake.ffpkg")

	createCmd([]string{
		"--title", "PPSA10240",
		"--dir", auxDir,
		"--in", imagePath,
		"--out", outPath,
	})

	tr, err := ffpkg.Open(outPath)
	if err != nil {
		t.Fatalf("Open output: %v", err)
	}
	if tr.TitleID != "PPSA10240" {
		t.Fatalf("TitleID = %q", tr.TitleID)
	}
	if tr.ImageSize != int64(len(image)) {
		t.Fatalf("ImageSize = %d, want %d", tr.ImageSize, len(image))
	}
	want := []string{"sce_sys/param.json", "sce_sys/trophy/trophy.trp"}
	if len(tr.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(tr.Entries), len(want))
	}
	for i, path := range want {
		if tr.Entries[i].Path != path {
			t.Fatalf("entry %d = %q, want %q", i, tr.Entries[i].Path, path)
		}
	}
	if _, err := os.Stat(imagePath); !os.IsNotExist(err) {
		t.Fatalf("input image still present after finalize: %v", err)
	}
}

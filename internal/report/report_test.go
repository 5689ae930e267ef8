package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"example.com/ffpkggate/internal/ffpkg"
)

func buildContainer(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "game.img")
	if err := os.WriteFile(imagePath, bytes.Repeat([]byte{0x42}, 4096), 0o644); err != nil {
		t.Fatalf("WriteFile image: %v", err)
	}
	outPath := filepath.Join(dir, "game.ffpkg")
	entries := []ffpkg.Entry{
		{Path: "sce_sys/icon0.png", Data: bytes.Repeat([]byte{1}, 100)},
		{Path: "sce_sys/param.json", Data: []byte(`{"title":"demo"}`)},
	}
	if err := ffpkg.Create(imagePath, outPath, "PPSA10240", entries); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return outPath
}

func TestInspect(t *testing.T) {
	path := buildContainer(t)
	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.TitleID != "PPSA10240" {
		t.Fatalf("TitleID = %q", info.TitleID)
	}
	if info.ImageSize != 4096 {
		t.Fatalf("ImageSize = %d, want 4096", info.ImageSize)
	}
	if len(info.Entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(info.Entries))
	}
	if info.Entries[0].Path != "sce_sys/icon0.png" || info.Entries[0].Size != 100 {
		t.Fatalf("entry 0 = %+v", info.Entries[0])
	}
	if len(info.Sha256) != 64 {
		t.Fatalf("Sha256 = %q", info.Sha256)
	}
}

func TestSaveContentsJSON(t *testing.T) {
	path := buildContainer(t)
	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	out := filepath.Join(t.TempDir(), "contents.json")
	if err := SaveContentsJSON(info, out); err != nil {
		t.Fatalf("SaveContentsJSON: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("PPSA10240")) {
		t.Fatalf("JSON output missing title id")
	}
}

func TestSaveContentsPDF(t *testing.T) {
	path := buildContainer(t)
	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	out := filepath.Join(t.TempDir(), "contents.pdf")
	if err := SaveContentsPDF(info, out); err != nil {
		t.Fatalf("SaveContentsPDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
}

func TestVerificationQR(t *testing.T) {
	png, err := VerificationQR("PPSA10240", "deadbeef", 128)
	if err != nil {
		t.Fatalf("VerificationQR: %v", err)
	}
	if !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("output does not look like a PNG")
	}
	if _, err := VerificationQR("   ", "", 128); err == nil {
		t.Fatalf("empty title id accepted")
	}
}

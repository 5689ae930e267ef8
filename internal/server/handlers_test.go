package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/ffpkggate/internal/ffpkg"
	"example.com/ffpkggate/internal/report"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	s, err := NewServer(Options{StorageDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, NewRouter(s)
}

type part struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts []part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField %s: %v", k, err)
		}
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		if err != nil {
			t.Fatalf("CreateFormFile %s: %v", p.filename, err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatalf("write part %s: %v", p.filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestPackageHandler(t *testing.T) {
	_, router := newTestServer(t)

	image := bytes.Repeat([]byte{0xEE}, 2048)
	body, contentType := multipartBody(t,
		map[string]string{"title": "PPSA10240"},
		[]part{
			{field: "image", filename: "snake.img", data: image},
			{field: "aux", filename: "param.json", data: []byte(`{"title":"snake"}`)},
			{field: "aux", filename: "trophy/trophy.trp", data: []byte("trp")},
			{field: "aux", filename: "icon0.png", data: []byte{0x89, 'P', 'N', 'G'}},
		})

	req := httptest.NewRequest(http.MethodPost, "/api/package", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	container := rec.Body.Bytes()
	if !bytes.Equal(container[:len(image)], image) {
		t.Fatalf("image bytes were modified")
	}
	tr, err := ffpkg.DecodeTrailer(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		t.Fatalf("DecodeTrailer: %v", err)
	}
	if tr.TitleID != "PPSA10240" {
		t.Fatalf("TitleID = %q", tr.TitleID)
	}
	want := []string{"sce_sys/icon0.png", "sce_sys/param.json", "sce_sys/trophy/trophy.trp"}
	if len(tr.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(tr.Entries), len(want))
	}
	for i, path := range want {
		if tr.Entries[i].Path != path {
			t.Fatalf("entry %d = %q, want %q", i, tr.Entries[i].Path, path)
		}
	}
}

func TestPackageHandlerValidation(t *testing.T) {
	_, router := newTestServer(t)

	tests := []struct {
		name   string
		fields map[string]string
		parts  []part
	}{
		{
			name:   "short title",
			fields: map[string]string{"title": "SHORT"},
			parts:  []part{{field: "image", filename: "a.img", data: []byte("x")}},
		},
		{
			name:   "missing image",
			fields: map[string]string{"title": "PPSA10240"},
		},
		{
			name:   "path traversal",
			fields: map[string]string{"title": "PPSA10240"},
			parts: []part{
				{field: "image", filename: "a.img", data: []byte("x")},
				{field: "aux", filename: "../escape.txt", data: []byte("y")},
			},
		},
		{
			name:   "aux dir with separator",
			fields: map[string]string{"title": "PPSA10240", "dir": "a/b"},
			parts:  []part{{field: "image", filename: "a.img", data: []byte("x")}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tc.fields, tc.parts)
			req := httptest.NewRequest(http.MethodPost, "/api/package", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestInspectHandler(t *testing.T) {
	_, router := newTestServer(t)

	trailer, err := ffpkg.EncodeTrailer([]ffpkg.Entry{{Path: "a.txt", Data: []byte("hi")}}, "PPSA10240")
	if err != nil {
		t.Fatalf("EncodeTrailer: %v", err)
	}
	container := append([]byte("imagebytes"), trailer...)

	body, contentType := multipartBody(t, nil, []part{{field: "container", filename: "snake.ffpkg", data: container}})
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var info report.ContainerInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if info.TitleID != "PPSA10240" || info.ImageSize != int64(len("imagebytes")) {
		t.Fatalf("info = %+v", info)
	}
	if len(info.Entries) != 1 || info.Entries[0].Path != "a.txt" {
		t.Fatalf("entries = %+v", info.Entries)
	}
	if info.Path != "snake.ffpkg" {
		t.Fatalf("Path = %q, want upload filename", info.Path)
	}
}

func TestInspectHandlerRejectsGarbage(t *testing.T) {
	_, router := newTestServer(t)

	body, contentType := multipartBody(t, nil, []part{{field: "container", filename: "junk.bin", data: []byte("not a container")}})
	req := httptest.NewRequest(http.MethodPost, "/api/inspect", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	_, router := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q", resp.Status)
	}
}

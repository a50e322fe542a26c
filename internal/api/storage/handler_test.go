package storage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/khabzox/fast-food/internal/api"
	"github.com/khabzox/fast-food/internal/api/storage"
	"github.com/khabzox/fast-food/internal/database"
	"github.com/khabzox/fast-food/internal/domain"
	"github.com/khabzox/fast-food/internal/store"
	"github.com/khabzox/fast-food/internal/testhelpers"
)

const filesURL = "/v1/storage/buckets/assets/files"

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testhelpers.NewTestDB(t)

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := store.New(db)
	mux := http.NewServeMux()
	storage.RegisterRoutes(mux, s)

	handler := api.Chain(mux, api.RequestID(), api.JSONContentType())
	return httptest.NewServer(handler)
}

// upload posts a multipart file. An empty contentType leaves the part without
// a Content-Type header.
func upload(t *testing.T, srv *httptest.Server, fileID, name, contentType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileId", fileID); err != nil {
		t.Fatalf("write field: %v", err)
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	resp, err := http.Post(srv.URL+filesURL, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

func decodeFile(t *testing.T, resp *http.Response) domain.File {
	t.Helper()
	var f domain.File
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return f
}

func TestCreateEndpoint(t *testing.T) {
	srv := setupServer(t)
	defer srv.Close()

	resp := upload(t, srv, domain.UniqueID, "burger.jpg", "image/jpeg", []byte("jpeg-bytes"))
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	f := decodeFile(t, resp)
	if f.ID == "" || f.ID == domain.UniqueID {
		t.Errorf("expected generated ID, got %q", f.ID)
	}
	if f.Name != "burger.jpg" {
		t.Errorf("expected name=burger.jpg, got %q", f.Name)
	}
	if f.MimeType != "image/jpeg" {
		t.Errorf("expected mimeType=image/jpeg, got %q", f.MimeType)
	}
	if f.SizeOriginal != int64(len("jpeg-bytes")) {
		t.Errorf("expected sizeOriginal=%d, got %d", len("jpeg-bytes"), f.SizeOriginal)
	}
	if f.Signature == "" {
		t.Error("expected signature to be set")
	}
}

func TestCreateEndpointSniffsMimeType(t *testing.T) {
	srv := setupServer(t)
	defer srv.Close()

	for _, ct := range []string{"", "application/octet-stream"} {
		resp := upload(t, srv, domain.UniqueID, "image", ct, pngHeader)
		f := decodeFile(t, resp)
		_ = resp.Body.Close()
		if f.MimeType != "image/png" {
			t.Errorf("content type %q: expected sniffed image/png, got %q", ct, f.MimeType)
		}
	}
}

func TestCreateEndpointErrors(t *testing.T) {
	srv := setupServer(t)
	defer srv.Close()

	resp := upload(t, srv, "dup", "a.jpg", "image/jpeg", []byte("a"))
	_ = resp.Body.Close()

	tests := []struct {
		name       string
		fileID     string
		content    []byte
		wantStatus int
		wantType   string
	}{
		{"empty file", domain.UniqueID, nil, http.StatusBadRequest, api.TypeFileEmpty},
		{"missing fileId", "", []byte("x"), http.StatusBadRequest, api.TypeArgumentInvalid},
		{"duplicate", "dup", []byte("x"), http.StatusConflict, api.TypeFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := upload(t, srv, tt.fileID, "f.jpg", "image/jpeg", tt.content)
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			var e api.Error
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if e.Type != tt.wantType {
				t.Errorf("expected type %s, got %s", tt.wantType, e.Type)
			}
		})
	}
}

func TestViewEndpoint(t *testing.T) {
	srv := setupServer(t)
	defer srv.Close()

	resp := upload(t, srv, "logo", "logo.png", "image/png", pngHeader)
	_ = resp.Body.Close()

	resp, err := http.Get(srv.URL + filesURL + "/logo/view")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected Content-Type image/png, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(body, pngHeader) {
		t.Error("view body does not match uploaded content")
	}
}

func TestGetListDeleteEndpoints(t *testing.T) {
	srv := setupServer(t)
	defer srv.Close()

	for _, id := range []string{"one", "two"} {
		resp := upload(t, srv, id, id+".jpg", "image/jpeg", []byte(id))
		_ = resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + filesURL + "/one")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	f := decodeFile(t, resp)
	_ = resp.Body.Close()
	if f.Name != "one.jpg" {
		t.Errorf("expected name=one.jpg, got %q", f.Name)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+filesURL+"/one", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + filesURL)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var list domain.FileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || len(list.Files) != 1 || list.Files[0].ID != "two" {
		t.Errorf("expected only file two, got total=%d files=%+v", list.Total, list.Files)
	}

	resp2, err := http.Get(srv.URL + filesURL + "/one/view")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	defer func() { _ = resp2.Body.Close() }()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for deleted file, got %d", resp2.StatusCode)
	}
}

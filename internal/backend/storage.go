package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khabzox/fast-food/internal/domain"
)

// InputFile is the payload of an upload.
type InputFile struct {
	Name     string
	MimeType string // sniffed from Data when empty
	Data     []byte
}

func (c *Client) filesURL(bucketID string) string {
	return c.path("storage", "buckets", bucketID, "files")
}

// ListFiles returns one page of files from a bucket.
func (c *Client) ListFiles(ctx context.Context, bucketID string, queries ...string) (*domain.FileList, error) {
	var list domain.FileList
	if err := c.doJSON(ctx, http.MethodGet, withQueries(c.filesURL(bucketID), queries), nil, &list); err != nil {
		return nil, fmt.Errorf("list files in %s: %w", bucketID, err)
	}
	return &list, nil
}

// CreateFile uploads a file as multipart form data. Pass Unique as fileID to
// let the server pick one.
func (c *Client) CreateFile(ctx context.Context, bucketID, fileID string, in InputFile) (*domain.File, error) {
	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = mimetype.Detect(in.Data).String()
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("fileId", fileID); err != nil {
		return nil, fmt.Errorf("write fileId field: %w", err)
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(in.Name)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(in.Data); err != nil {
		return nil, fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var f domain.File
	if err := c.do(ctx, http.MethodPost, c.filesURL(bucketID), &buf, mw.FormDataContentType(), &f); err != nil {
		return nil, fmt.Errorf("upload file %s to %s: %w", in.Name, bucketID, err)
	}
	return &f, nil
}

// DeleteFile deletes a file from a bucket.
func (c *Client) DeleteFile(ctx context.Context, bucketID, fileID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.path("storage", "buckets", bucketID, "files", fileID), nil, nil); err != nil {
		return fmt.Errorf("delete file %s in %s: %w", fileID, bucketID, err)
	}
	return nil
}

// FileViewURL returns the public URL serving a stored file's content.
func (c *Client) FileViewURL(bucketID, fileID string) string {
	return c.path("storage", "buckets", bucketID, "files", fileID, "view") +
		"?" + url.Values{"project": {c.projectID}}.Encode()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

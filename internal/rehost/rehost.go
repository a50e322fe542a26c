// Package rehost copies externally hosted images into the platform's file
// storage so the app does not depend on third-party hosts.
package rehost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/khabzox/fast-food/internal/backend"
	"github.com/khabzox/fast-food/internal/domain"
)

// DefaultMaxSize bounds the size of a fetched image.
const DefaultMaxSize = 10 << 20

// fallbackMimeType is used when neither the response nor the content
// identify the image.
const fallbackMimeType = "image/jpeg"

// Headers sent with every fetch. Some image hosts reject clients that do not
// look like a browser.
var browserHeaders = map[string]string{
	"User-Agent":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":        "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
	"Cache-Control": "no-cache",
}

// ErrEmptyURL is returned in a Result for an empty source URL.
var ErrEmptyURL = errors.New("empty source url")

// Uploader stores files and computes their public URLs. *backend.Client
// implements it.
type Uploader interface {
	CreateFile(ctx context.Context, bucketID, fileID string, in backend.InputFile) (*domain.File, error)
	FileViewURL(bucketID, fileID string) string
}

// Config holds Rehoster configuration.
type Config struct {
	BucketID   string
	HTTPClient *http.Client     // default: 30s timeout
	MaxSize    int64            // default DefaultMaxSize
	Now        func() time.Time // default time.Now, used for fallback file names
}

// Rehoster fetches images and uploads them to a bucket.
type Rehoster struct {
	uploader Uploader
	bucketID string
	client   *http.Client
	maxSize  int64
	now      func() time.Time
}

// New creates a Rehoster uploading to cfg.BucketID.
func New(uploader Uploader, cfg Config) *Rehoster {
	r := &Rehoster{
		uploader: uploader,
		bucketID: cfg.BucketID,
		client:   cfg.HTTPClient,
		maxSize:  cfg.MaxSize,
		now:      cfg.Now,
	}
	if r.client == nil {
		r.client = &http.Client{Timeout: 30 * time.Second}
	}
	if r.maxSize <= 0 {
		r.maxSize = DefaultMaxSize
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Result is the outcome of a Rehost call. URL is always usable: the hosted
// copy on success, the source URL otherwise.
type Result struct {
	SourceURL string `json:"sourceUrl"`
	URL       string `json:"url"`
	FileID    string `json:"fileId,omitempty"`
	Err       error  `json:"-"`
}

// Rehosted reports whether URL points at an uploaded copy.
func (r Result) Rehosted() bool {
	return r.Err == nil && r.FileID != ""
}

// Rehost fetches sourceURL and uploads it under a fresh id. It never fails:
// any error is logged and recorded in the Result, whose URL then falls back
// to sourceURL.
func (r *Rehoster) Rehost(ctx context.Context, sourceURL string) Result {
	if sourceURL == "" {
		return Result{Err: ErrEmptyURL}
	}

	slog.Info("rehosting image", "url", sourceURL)

	f, err := r.rehost(ctx, sourceURL)
	if err != nil {
		slog.Warn("image rehost failed, keeping source url", "url", sourceURL, "error", err)
		return Result{SourceURL: sourceURL, URL: sourceURL, Err: err}
	}

	hosted := r.uploader.FileViewURL(r.bucketID, f.ID)
	slog.Info("image rehosted", "url", sourceURL, "file_id", f.ID, "size", f.SizeOriginal, "mime_type", f.MimeType)
	return Result{SourceURL: sourceURL, URL: hosted, FileID: f.ID}
}

func (r *Rehoster) rehost(ctx context.Context, sourceURL string) (*domain.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("image fetched", "url", sourceURL, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes", r.maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("image is empty")
	}

	in := backend.InputFile{
		Name:     FileName(sourceURL, r.now()),
		MimeType: MimeType(resp.Header.Get("Content-Type"), data),
		Data:     data,
	}
	f, err := r.uploader.CreateFile(ctx, r.bucketID, backend.NewID(), in)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return f, nil
}

// FileName derives an upload name from the last path segment of rawURL,
// ignoring any query string. URLs without a usable segment get a
// timestamped name.
func FileName(rawURL string, now time.Time) string {
	if u, err := url.Parse(rawURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return fmt.Sprintf("image-%d.jpg", now.UnixMilli())
}

// MimeType picks the MIME type of an image from its Content-Type header,
// then its content, then falls back to image/jpeg.
func MimeType(contentType string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if detected := mimetype.Detect(data); !detected.Is("application/octet-stream") {
		mt, _, _ := strings.Cut(detected.String(), ";")
		return mt
	}
	return fallbackMimeType
}

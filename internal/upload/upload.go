// Package upload stores payment proof images and hands back public links.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxSize is the largest accepted proof image, 5 MB.
const MaxSize = 5 * 1024 * 1024

// ErrMissingToken means no Drive access token reached the upload, neither
// with the request nor from configuration.
var ErrMissingToken = errors.New("drive access token required")

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// Result is where the stored image can be reached.
type Result struct {
	URL           string `json:"url"`
	ViewLink      string `json:"viewLink,omitempty"`
	ThumbnailLink string `json:"thumbnailLink,omitempty"`
}

// Uploader stores a validated image and returns its public links. The token
// is the caller-supplied Drive access token; backends with their own
// credentials ignore it.
type Uploader interface {
	Upload(ctx context.Context, token, filename, contentType string, data []byte) (*Result, error)
}

// TokenFromRequest resolves the Drive access token a request carries:
// the drive_access_token cookie, then the Authorization bearer header,
// then the accessToken form field. Empty when the request carries none.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("drive_access_token"); err == nil && c.Value != "" {
		return c.Value
	}
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && tok != "" {
		return tok
	}
	return r.FormValue("accessToken")
}

// Validate rejects a proof image before any network round trip: it must be
// non-empty, at most MaxSize, and an image by MIME type or file extension.
func Validate(filename, contentType string, size int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxSize {
		return fmt.Errorf("file is %d bytes, limit is %d", size, MaxSize)
	}
	if _, ok := imageTypes[strings.ToLower(contentType)]; ok {
		return nil
	}
	if imageExts[strings.ToLower(filepath.Ext(filename))] {
		return nil
	}
	return fmt.Errorf("unsupported file type %q", contentType)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectName builds a collision-safe stored name from the original one.
func ObjectName(filename string, now time.Time) string {
	base := filepath.Base(filename)
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "bukti.jpg"
	}
	return fmt.Sprintf("ekantin_%d_%s", now.UnixMilli(), base)
}

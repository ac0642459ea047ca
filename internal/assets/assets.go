// Package assets uploads binary objects (avatars, cover images) to an
// S3-compatible store and returns stable public URLs.
package assets

import (
	"context"
	"io"
)

// Uploader stores a binary asset and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

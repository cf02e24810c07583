// internal/app/system/assets/assets.go
//
// Package assets stores uploaded job logos.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
)

// MaxLogoBytes bounds a logo upload.
const MaxLogoBytes = limits.MaxLogoFile

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Upload is a stored logo.
type Upload struct {
	Path        string
	URL         string
	ContentType string
	Size        int64
}

// PutLogo validates an image upload and stores it at a unique path of the
// form logos/YYYY/MM/<uuid>-<name>.
func PutLogo(ctx context.Context, store storage.Store, filename string, r io.Reader) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxLogoBytes+1))
	if err != nil {
		return Upload{}, apperr.Validation("could not read logo", nil)
	}
	if len(data) == 0 {
		return Upload{}, apperr.Validation("logo is empty", map[string]string{"logo": "is required"})
	}
	if len(data) > MaxLogoBytes {
		return Upload{}, apperr.Validation("logo is too large", map[string]string{"logo": "must be at most 2 MB"})
	}
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return Upload{}, apperr.Validation("logo must be an image", map[string]string{"logo": "png, jpeg, gif or webp required"})
	}

	name := SanitizeFilename(filename)
	if filepath.Ext(name) == "" {
		name += ext
	}
	now := time.Now().UTC()
	p := fmt.Sprintf("logos/%04d/%02d/%s-%s", now.Year(), now.Month(), uuid.New().String()[:8], name)

	if err := store.Put(ctx, p, bytes.NewReader(data), &storage.PutOptions{ContentType: contentType}); err != nil {
		return Upload{}, apperr.Dependency("failed to store logo", err)
	}
	return Upload{Path: p, URL: store.URL(p), ContentType: contentType, Size: int64(len(data))}, nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filepath.ToSlash(filename))
	if filename == "." || filename == "/" {
		filename = ""
	}
	out := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "logo"
	}
	if len(out) > 100 {
		ext := filepath.Ext(string(out))
		if ext != "" && len(ext) < 10 {
			out = append(out[:100-len(ext)], ext...)
		} else {
			out = out[:100]
		}
	}
	return string(out)
}

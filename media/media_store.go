// Package media stores files uploaded by users (videos, profile pictures) and
// turns their storage keys into URLs a client can fetch.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	VideoPrefix      = "videos"
	ProfilePicPrefix = "profile_pics"
)

type MediaStore interface {
	// Store writes body under key and returns the key it was stored under.
	Store(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	GetUrlFromKey(key string) string
	CleanUp()
}

// NewKey builds a unique key in the namespace prefix for an uploaded file
// called fileName: <prefix>/<unix-nanos>-<base name>.
func NewKey(prefix string, fileName string, now time.Time) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s/%d-%s", prefix, now.UnixNano(), name)
}

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
}

// IsAllowedFile reports whether fileName has an image or video extension the
// server accepts for upload.
func IsAllowedFile(fileName string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(fileName))]
}

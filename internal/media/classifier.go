// Package media is the sticker conversion core: it classifies input media,
// extracts a representative frame, fits it onto the square canvas, encodes the
// static WebP, and drives the external transcoder for animated WebM output.
package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fleveque/sticker-service/internal/model"
)

// Recognized still-image inputs. Anything not listed (and not vector, video or
// GIF) is rejected.
var stillMIMETypes = map[string]struct{}{
	"image/jpeg":     {},
	"image/jpg":      {},
	"image/png":      {},
	"image/webp":     {},
	"image/tiff":     {},
	"image/bmp":      {},
	"image/x-ms-bmp": {},
}

var stillExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".tif":  {},
	".tiff": {},
	".bmp":  {},
}

// videoExtensions also accepts .avi, which the upload filter always allowed.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".avi":  {},
}

// Classify maps a declared MIME type and filename to a MediaKind.
// Both inputs may be empty or wrong, so each rule checks either one:
// the extension is the fallback when the MIME type is missing and vice versa.
// Precedence: vector, video, animated raster, still raster.
func Classify(mimeType, filename string) (model.MediaKind, error) {
	mt := normalizeMIME(mimeType)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mt == "image/svg+xml" || ext == ".svg":
		return model.KindVector, nil
	case strings.HasPrefix(mt, "video/") || has(videoExtensions, ext):
		return model.KindVideo, nil
	case mt == "image/gif" || ext == ".gif":
		return model.KindRasterAnimated, nil
	case has(stillMIMETypes, mt) || has(stillExtensions, ext):
		return model.KindRasterStill, nil
	}

	return "", fmt.Errorf("%w: mime %q, extension %q", ErrUnsupportedFormat, mimeType, ext)
}

// Sniff detects the MIME type from the content itself. It is used when the
// caller supplied neither a usable MIME type nor a filename.
func Sniff(data []byte) string {
	return normalizeMIME(mimetype.Detect(data).String())
}

// isGeneric reports whether a declared MIME type says nothing about the content.
func isGeneric(mimeType string) bool {
	mt := normalizeMIME(mimeType)
	return mt == "" || mt == "application/octet-stream" || mt == "binary/octet-stream"
}

// normalizeMIME lowercases and strips parameters ("image/svg+xml; charset=utf-8").
func normalizeMIME(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

func has(set map[string]struct{}, key string) bool {
	if key == "" {
		return false
	}
	_, ok := set[key]
	return ok
}

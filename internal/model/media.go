// Package model defines the core data types for the sticker service.
// Every value here lives for a single conversion or render call; nothing is
// shared between concurrent requests.
package model

// MediaKind is the decoding strategy chosen for an input asset.
// Go doesn't have enums, so we use a typed string with explicit constants.
type MediaKind string

const (
	KindVector         MediaKind = "vector"
	KindRasterStill    MediaKind = "raster_still"
	KindRasterAnimated MediaKind = "raster_animated"
	KindVideo          MediaKind = "video"
)

// IsMotion reports whether the kind normally routes to the animated transcoder.
func (k MediaKind) IsMotion() bool {
	return k == KindRasterAnimated || k == KindVideo
}

// Container identifies the serialized output format of a sticker.
type Container string

const (
	ContainerStaticImage   Container = "static_image"   // WebP
	ContainerAnimatedVideo Container = "animated_video" // WebM (VP9 + alpha)
)

// ContentType returns the MIME type for the container.
func (c Container) ContentType() string {
	if c == ContainerAnimatedVideo {
		return "video/webm"
	}
	return "image/webp"
}

// Extension returns the file extension, including the dot.
func (c Container) Extension() string {
	if c == ContainerAnimatedVideo {
		return ".webm"
	}
	return ".webp"
}

// MediaAsset is the raw input handed over by a caller (chat bot, HTTP client, CLI).
// It is never mutated by the conversion core.
type MediaAsset struct {
	Data     []byte
	MimeType string
	Filename string // optional
}

// StickerOutput is the finished canonical asset. Ownership of Data passes to the caller.
type StickerOutput struct {
	Data       []byte
	Container  Container
	IsAnimated bool
}

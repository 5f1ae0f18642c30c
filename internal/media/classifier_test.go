package media

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleveque/sticker-service/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		filename string
		want     model.MediaKind
	}{
		{"svg mime", "image/svg+xml", "", model.KindVector},
		{"svg mime with params", "image/svg+xml; charset=utf-8", "", model.KindVector},
		{"svg extension upper case", "", "Logo.SVG", model.KindVector},
		{"vector beats video", "image/svg+xml", "clip.mp4", model.KindVector},
		{"video mime", "video/mp4", "", model.KindVideo},
		{"matroska mime", "video/x-matroska", "", model.KindVideo},
		{"mov extension", "", "clip.mov", model.KindVideo},
		{"avi extension", "", "clip.avi", model.KindVideo},
		{"video beats gif", "video/quicktime", "funny.gif", model.KindVideo},
		{"gif mime", "image/gif", "", model.KindRasterAnimated},
		{"gif extension", "", "funny.gif", model.KindRasterAnimated},
		{"gif beats still", "image/gif", "frame.png", model.KindRasterAnimated},
		{"png mime", "image/png", "", model.KindRasterStill},
		{"jpeg extension", "", "photo.JPG", model.KindRasterStill},
		{"generic mime with webp name", "application/octet-stream", "photo.webp", model.KindRasterStill},
		{"tiff", "image/tiff", "scan.tif", model.KindRasterStill},
		{"bmp alias", "image/x-ms-bmp", "", model.KindRasterStill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.mime, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Same input, same answer.
			again, err := Classify(tt.mime, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestClassify_Unsupported(t *testing.T) {
	tests := []struct {
		mime     string
		filename string
	}{
		{"", ""},
		{"text/plain", "notes.txt"},
		{"application/pdf", "doc.pdf"},
		{"application/octet-stream", "archive.zip"},
		{"image/heic", "IMG_0001.HEIC"},
	}

	for _, tt := range tests {
		t.Run(tt.mime+"|"+tt.filename, func(t *testing.T) {
			_, err := Classify(tt.mime, tt.filename)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestSniff(t *testing.T) {
	pngData := encodePNG(t, solidImage(4, 4, color.White))
	gifData := encodeGIF(t, 4, 4, 10, color.RGBA{R: 255, A: 255})

	assert.Equal(t, "image/png", Sniff(pngData))
	assert.Equal(t, "image/gif", Sniff(gifData))
	assert.Equal(t, "text/plain", Sniff([]byte("just some words")))
	assert.True(t, bytes.HasPrefix(pngData, []byte("\x89PNG")))
}

func TestIsGeneric(t *testing.T) {
	assert.True(t, isGeneric(""))
	assert.True(t, isGeneric("application/octet-stream"))
	assert.True(t, isGeneric("  Application/Octet-Stream  "))
	assert.False(t, isGeneric("image/png"))
}

package media

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleveque/sticker-service/internal/storage"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

// encodeGIF builds an animation with one solid frame per color, delay in
// hundredths of a second.
func encodeGIF(t *testing.T, w, h, delay int, colors ...color.Color) []byte {
	t.Helper()
	palette := color.Palette{color.Black, color.White}
	palette = append(palette, colors...)

	anim := &gif.GIF{}
	for _, c := range colors {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		idx := uint8(palette.Index(c))
		for i := range frame.Pix {
			frame.Pix[i] = idx
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))
	return buf.Bytes()
}

// pngHeaderOnly returns a PNG that declares a w×h RGBA image but carries no
// pixel data: signature, IHDR and IEND only.
func pngHeaderOnly(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		buf.WriteString(typ)
		buf.Write(data)
		_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // color type RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

// gifHeaderOnly returns a GIF whose logical screen is w×h with no frames.
func gifHeaderOnly(w, h uint16) []byte {
	b := []byte("GIF89a")
	b = binary.LittleEndian.AppendUint16(b, w)
	b = binary.LittleEndian.AppendUint16(b, h)
	b = append(b, 0, 0, 0) // no global color table, background, aspect
	return append(b, 0x3b)
}

func newTestScratch(t *testing.T) *storage.Scratch {
	t.Helper()
	s, err := storage.NewScratch(filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)
	return s
}

func requireEmptyScratch(t *testing.T, s *storage.Scratch) {
	t.Helper()
	entries, err := s.Entries()
	require.NoError(t, err)
	require.Empty(t, entries, "scratch files left behind")
}

// writeScript creates an executable shell script standing in for ffmpeg.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script transcoders need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// requireBinary skips the test unless name is on PATH.
func requireBinary(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not installed", name)
	}
	return path
}

package media

import (
	"context"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleveque/sticker-service/internal/model"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
  <rect x="0" y="0" width="100" height="50" fill="#00ff00"/>
</svg>`

func TestExtract_GIFFirstFrame(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	data := encodeGIF(t, 20, 10, 10, red, blue)

	ex := NewExtractor(Capabilities{}, nil, 0, nil)
	frame, err := ex.Extract(context.Background(), data, model.KindRasterAnimated, ".gif", 512)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 20, 10), frame.Bounds())
	assert.Equal(t, red, frame.RGBAAt(5, 5))
}

func TestExtract_Still(t *testing.T) {
	data := encodePNG(t, solidImage(30, 40, color.RGBA{G: 128, A: 255}))

	ex := NewExtractor(Capabilities{}, nil, 0, nil)
	frame, err := ex.Extract(context.Background(), data, model.KindRasterStill, ".png", 512)
	require.NoError(t, err)
	assert.Equal(t, 30, frame.Bounds().Dx())
	assert.Equal(t, 40, frame.Bounds().Dy())
}

func TestExtract_SVGRasterizedAtCanvasSize(t *testing.T) {
	ex := NewExtractor(Capabilities{VectorRendering: true}, nil, 0, nil)
	frame, err := ex.Extract(context.Background(), []byte(testSVG), model.KindVector, ".svg", 512)
	require.NoError(t, err)

	assert.Equal(t, 512, frame.Bounds().Dx())
	assert.Equal(t, 256, frame.Bounds().Dy())

	px := frame.RGBAAt(256, 128)
	assert.Equal(t, uint8(255), px.A)
	assert.Greater(t, px.G, uint8(200))
}

func TestExtract_RejectsOversizedHeaders(t *testing.T) {
	ex := NewExtractor(Capabilities{}, nil, 0, nil)
	ctx := context.Background()

	png := pngHeaderOnly(30000, 30000)
	require.Less(t, len(png), 100)

	_, err := ex.Extract(ctx, png, model.KindRasterStill, ".png", 512)
	require.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "pixel limit")

	_, err = DecodeImage(png)
	require.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "pixel limit")

	_, err = ex.Extract(ctx, gifHeaderOnly(60000, 60000), model.KindRasterAnimated, ".gif", 512)
	require.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "pixel limit")
}

func TestExtract_ConfigurablePixelBudget(t *testing.T) {
	ex := NewExtractor(Capabilities{}, nil, 0, nil)
	ex.SetMaxPixels(100)
	ctx := context.Background()

	_, err := ex.Extract(ctx, encodePNG(t, solidImage(10, 10, color.White)), model.KindRasterStill, ".png", 512)
	require.NoError(t, err)

	_, err = ex.Extract(ctx, encodePNG(t, solidImage(11, 10, color.White)), model.KindRasterStill, ".png", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)

	_, err = ex.Extract(ctx, encodeGIF(t, 20, 10, 10, color.RGBA{R: 255, A: 255}), model.KindRasterAnimated, ".gif", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestExtract_CapabilityErrors(t *testing.T) {
	ex := NewExtractor(Capabilities{}, nil, 0, nil)
	ctx := context.Background()

	_, err := ex.Extract(ctx, []byte(testSVG), model.KindVector, ".svg", 512)
	assert.ErrorIs(t, err, ErrVectorRenderingDisabled)

	_, err = ex.Extract(ctx, []byte("not really a video"), model.KindVideo, ".mp4", 512)
	assert.ErrorIs(t, err, ErrVideoDecodingDisabled)
}

func TestExtract_DecodeFailures(t *testing.T) {
	ex := NewExtractor(Capabilities{VectorRendering: true}, nil, 0, nil)
	ctx := context.Background()

	_, err := ex.Extract(ctx, nil, model.KindRasterStill, "", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)

	_, err = ex.Extract(ctx, []byte("definitely not a png"), model.KindRasterStill, ".png", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)

	_, err = ex.Extract(ctx, []byte("GIF89a garbage"), model.KindRasterAnimated, ".gif", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)

	_, err = ex.Extract(ctx, []byte("<svg"), model.KindVector, ".svg", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

func TestExtract_VideoFirstFrame(t *testing.T) {
	ffmpeg := requireBinary(t, "ffmpeg")

	src := filepath.Join(t.TempDir(), "clip.mp4")
	gen := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=c=red:s=64x32:d=1",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p", src)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("ffmpeg cannot generate a test clip: %v: %s", err, out)
	}
	data, err := os.ReadFile(src)
	require.NoError(t, err)

	scratch := newTestScratch(t)
	caps := Capabilities{VideoDecoding: true, TranscoderPath: ffmpeg}
	ex := NewExtractor(caps, scratch, 20*time.Second, nil)

	frame, err := ex.Extract(context.Background(), data, model.KindVideo, ".mp4", 512)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 32), frame.Bounds())
	assert.Greater(t, frame.RGBAAt(32, 16).R, uint8(200))

	requireEmptyScratch(t, scratch)
}

func TestExtract_VideoFailureCleansUp(t *testing.T) {
	// Arguments are -hide_banner -loglevel error -i <input> ...
	bin := writeScript(t, "echo \"invalid data found in $(basename \"$5\")\" >&2\nexit 1\n")

	scratch := newTestScratch(t)
	caps := Capabilities{VideoDecoding: true, TranscoderPath: bin}
	ex := NewExtractor(caps, scratch, 5*time.Second, nil)

	_, err := ex.Extract(context.Background(), []byte("garbage"), model.KindVideo, "", 512)
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.Contains(t, err.Error(), "invalid data found in frame_")
	assert.Contains(t, err.Error(), ".mp4")

	requireEmptyScratch(t, scratch)
}

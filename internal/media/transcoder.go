package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/storage"
)

// DefaultTranscodeTimeout bounds one ffmpeg run. The bot never had one; a
// stuck process would otherwise hold a worker forever.
const DefaultTranscodeTimeout = 60 * time.Second

// TranscodeParams controls the animated output.
type TranscodeParams struct {
	MaxSeconds int
	MaxSide    int
	FPS        int
	Bitrate    string
}

// DefaultTranscodeParams matches the video sticker limits: 3s, 512px, 30fps, 300k.
func DefaultTranscodeParams() TranscodeParams {
	return TranscodeParams{
		MaxSeconds: 3,
		MaxSide:    512,
		FPS:        30,
		Bitrate:    "300k",
	}
}

func (p TranscodeParams) withDefaults() TranscodeParams {
	d := DefaultTranscodeParams()
	if p.MaxSeconds <= 0 {
		p.MaxSeconds = d.MaxSeconds
	}
	if p.MaxSide <= 0 {
		p.MaxSide = d.MaxSide
	}
	if p.FPS <= 0 {
		p.FPS = d.FPS
	}
	if strings.TrimSpace(p.Bitrate) == "" {
		p.Bitrate = d.Bitrate
	}
	return p
}

// Filter returns the ffmpeg video filter: scale to fit (aspect preserved),
// pad to a centered square with transparent fill, then resample to FPS.
// format=rgba before pad gives the padding a real alpha channel.
func (p TranscodeParams) Filter() string {
	s := p.MaxSide
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease:flags=lanczos,"+
			"format=rgba,"+
			"pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=0x00000000,"+
			"fps=%d",
		s, s, s, s, p.FPS)
}

// BuildTranscodeArgs assembles the ffmpeg command line: quiet, overwrite,
// duration cap, no audio, the fit filter, VP9 with alpha at a fixed bitrate.
func BuildTranscodeArgs(in, out string, p TranscodeParams) []string {
	p = p.withDefaults()
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", in,
		"-t", strconv.Itoa(p.MaxSeconds),
		"-an",
		"-vf", p.Filter(),
		"-c:v", "libvpx-vp9",
		"-pix_fmt", "yuva420p",
		"-b:v", p.Bitrate,
		out,
	}
}

// Transcoder turns video and animated input into a looping WebM sticker by
// running ffmpeg. Runs go through a bounded worker pool so request goroutines
// never block on the process directly, and a slow transcode can only occupy
// one worker.
type Transcoder struct {
	bin     string
	params  TranscodeParams
	timeout time.Duration
	scratch *storage.Scratch
	pool    pond.ResultPool[[]byte]
	logger  *zap.Logger
}

// TranscoderOptions configures a Transcoder. Zero values pick defaults.
type TranscoderOptions struct {
	Params  TranscodeParams
	Timeout time.Duration
	Workers int
}

// NewTranscoder creates a Transcoder. bin may be empty: every call then fails
// with ErrMissingTranscoder.
func NewTranscoder(bin string, scratch *storage.Scratch, opts TranscoderOptions, logger *zap.Logger) *Transcoder {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTranscodeTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transcoder{
		bin:     bin,
		params:  opts.Params.withDefaults(),
		timeout: opts.Timeout,
		scratch: scratch,
		pool:    pond.NewResultPool[[]byte](opts.Workers),
		logger:  logger.Named("transcoder"),
	}
}

// Params returns the effective output parameters.
func (t *Transcoder) Params() TranscodeParams {
	return t.params
}

// Running returns the number of busy workers; Waiting the queued runs.
func (t *Transcoder) Running() int64  { return t.pool.RunningWorkers() }
func (t *Transcoder) Waiting() uint64 { return t.pool.WaitingTasks() }

// Close waits for in-flight runs and stops the pool.
func (t *Transcoder) Close() {
	t.pool.StopAndWait()
}

// Transcode converts data into WebM bytes. mimeType and filename only pick the
// scratch input extension, which helps ffmpeg detect the container.
func (t *Transcoder) Transcode(ctx context.Context, data []byte, mimeType, filename string) ([]byte, error) {
	if t.bin == "" {
		return nil, fmt.Errorf("%w: configure transcoder.ffmpeg_bin or install ffmpeg", ErrMissingTranscoder)
	}

	task := t.pool.SubmitErr(func() ([]byte, error) {
		return t.run(ctx, data, mimeType, filename)
	})

	// A queued task observes the same ctx and bails out before touching disk.
	select {
	case <-task.Done():
	case <-ctx.Done():
		return nil, &TranscodeError{
			ExitCode: -1,
			TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      ctx.Err(),
		}
	}
	return task.Wait()
}

func (t *Transcoder) run(ctx context.Context, data []byte, mimeType, filename string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TranscodeError{ExitCode: -1, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	in, err := t.scratch.WriteTemp("in", inputExtension(mimeType, filename), data)
	if err != nil {
		return nil, &TranscodeError{ExitCode: -1, Err: err}
	}
	out := t.scratch.Path("sticker", ".webm")

	// Deferred so it also runs on timeout and cancellation. It fires after the
	// output has been read into memory below.
	defer func() {
		if err := t.scratch.Remove(in, out); err != nil {
			t.logger.Warn("removing scratch files", zap.Error(err))
		}
	}()

	if err := runProcess(ctx, t.bin, BuildTranscodeArgs(in, out, t.params), nil); err != nil {
		t.logger.Warn("ffmpeg failed",
			zap.String("input", filepath.Base(in)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := os.ReadFile(out)
	if err != nil || len(result) == 0 {
		if err == nil {
			err = errors.New("empty output file")
		}
		return nil, &TranscodeError{ExitCode: 0, Err: fmt.Errorf("no output produced: %w", err)}
	}

	t.logger.Debug("transcoded",
		zap.Int("input_bytes", len(data)),
		zap.Int("output_bytes", len(result)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// inputExtension picks the scratch input suffix: the filename's extension if
// present, otherwise a guess from the MIME type.
func inputExtension(mimeType, filename string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		return ext
	}
	mt := normalizeMIME(mimeType)
	switch {
	case strings.HasPrefix(mt, "video/"):
		return ".mp4"
	case mt == "image/gif":
		return ".gif"
	default:
		return ".mp4"
	}
}

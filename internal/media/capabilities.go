package media

import (
	"os"
	"os/exec"
	"strings"
)

// Capabilities lists the optional features available to the conversion core.
// Each operation checks its flag and fails with a named error instead of
// degrading silently.
type Capabilities struct {
	VectorRendering bool   `json:"vector_rendering"`
	VideoDecoding   bool   `json:"video_decoding"`
	TranscoderPath  string `json:"transcoder_path,omitempty"`
}

// HasTranscoder reports whether an ffmpeg binary was located.
func (c Capabilities) HasTranscoder() bool {
	return c.TranscoderPath != ""
}

// DetectCapabilities resolves the transcoder and combines it with the
// configured feature switches. Video frame decoding shells out to the same
// binary, so it is only available when a transcoder was found.
func DetectCapabilities(vectorEnabled, videoEnabled bool, ffmpegBin string) Capabilities {
	bin := LocateTranscoder(ffmpegBin)
	return Capabilities{
		VectorRendering: vectorEnabled,
		VideoDecoding:   videoEnabled && bin != "",
		TranscoderPath:  bin,
	}
}

// LocateTranscoder finds an ffmpeg binary. A configured value wins when it
// points at an existing file or resolves on PATH; otherwise PATH is searched
// for "ffmpeg". Returns "" when nothing usable exists.
func LocateTranscoder(configured string) string {
	if bin := normalizeBinPath(configured); bin != "" {
		if found := resolveBin(bin); found != "" {
			return found
		}
	}
	for _, name := range []string{"ffmpeg", "ffmpeg.exe"} {
		if found, err := exec.LookPath(name); err == nil {
			return found
		}
	}
	return ""
}

// normalizeBinPath strips quotes that often survive .env files and converts
// Windows separators.
func normalizeBinPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.ReplaceAll(s, `\`, "/")
}

func resolveBin(bin string) string {
	// A bare name like "ffmpeg" is looked up on PATH.
	if !strings.ContainsRune(bin, '/') {
		if found, err := exec.LookPath(bin); err == nil {
			return found
		}
		return ""
	}
	info, err := os.Stat(bin)
	if err != nil || info.IsDir() {
		return ""
	}
	return bin
}

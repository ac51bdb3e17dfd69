package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

const maxStderrBytes = 16 * 1024

var ErrNotFound = errors.New("ffprobe binary not found")

type FFprobe struct {
	binary string
	logger *slog.Logger
}

// NewFFprobe resolves binary on PATH, falling back to "ffprobe" when empty.
func NewFFprobe(binary string, logger *slog.Logger) (*FFprobe, error) {
	if binary == "" {
		binary = "ffprobe"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, binary)
	}
	return &FFprobe{binary: path, logger: logging.OrDiscard(logger)}, nil
}

func (f *FFprobe) Probe(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, f.binary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		f.logger.Warn("ffprobe failed",
			"exit_code", exitCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"stderr_tail", strings.TrimSpace(stderr.String()),
		)
		return nil, fmt.Errorf("ffprobe: %w", err)
	}

	result, err := parseOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}

	f.logger.Debug("ffprobe succeeded",
		"duration_ms", time.Since(start).Milliseconds(),
		"media_duration", result.Duration,
	)
	return result, nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
		BitRate  string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		SampleRate   string `json:"sample_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

func parseOutput(data []byte) (*Result, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	r := &Result{
		Duration: parseFloat(out.Format.Duration),
		Bitrate:  int64(parseFloat(out.Format.BitRate)),
	}

	videoSeen, audioSeen := false, false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if videoSeen {
				continue
			}
			videoSeen = true
			r.Codec = s.CodecName
			r.Width = s.Width
			r.Height = s.Height
			r.FrameRate = parseRate(s.AvgFrameRate)
			if r.FrameRate == 0 {
				r.FrameRate = parseRate(s.RFrameRate)
			}
			if r.Duration == 0 {
				r.Duration = parseFloat(s.Duration)
			}
		case "audio":
			if audioSeen {
				continue
			}
			audioSeen = true
			r.AudioCodec = s.CodecName
			r.SampleRate = int(parseFloat(s.SampleRate))
			if r.Duration == 0 {
				r.Duration = parseFloat(s.Duration)
			}
		}
	}

	if !videoSeen && !audioSeen {
		return nil, errors.New("no audio or video streams")
	}
	return r, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRate reads ffprobe's "num/den" rational.
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return parseFloat(num) / d
}

type limitedWriter struct {
	w     io.Writer
	limit int
	n     int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.n
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		lw.w.Write(p[:remaining])
		lw.n += remaining
		return len(p), nil
	}
	n, err := lw.w.Write(p)
	lw.n += n
	return len(p), err
}

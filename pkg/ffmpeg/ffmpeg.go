// Package ffmpeg builds and runs the ffmpeg invocation that composes the
// final order video.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// stderrTail bounds how much ffmpeg output is kept for error messages.
const stderrTail = 2048

const overlayFilter = "[0:v]scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2,setpts=PTS-STARTPTS[bg];" +
	"[1:v]scale=720:-1,setsar=1,setpts=PTS-STARTPTS[face];" +
	"[bg][face]overlay=(W-w)/2:(H-h)/3:enable='between(t,0,15)'[video]"

var encodeArgs = []string{
	"-c:v", "libx264",
	"-preset", "veryfast",
	"-crf", "21",
	"-c:a", "aac",
	"-b:a", "192k",
	"-movflags", "+faststart",
	"-shortest",
}

type ComposeOptions struct {
	// Background is optional; without it the animation is used as is.
	Background string
	Animation  string
	Audio      string
	Output     string
}

// ComposeArgs returns the ffmpeg arguments for opts. Input order is
// background (if any), animation, audio.
func ComposeArgs(opts ComposeOptions) []string {
	args := []string{"-y"}

	if opts.Background != "" {
		args = append(args,
			"-i", opts.Background,
			"-i", opts.Animation,
			"-i", opts.Audio,
			"-filter_complex", overlayFilter,
			"-map", "[video]",
			"-map", "2:a:0",
		)
	} else {
		args = append(args,
			"-i", opts.Animation,
			"-i", opts.Audio,
			"-map", "0:v:0",
			"-map", "1:a:0",
		)
	}

	args = append(args, encodeArgs...)
	return append(args, opts.Output)
}

type Runner interface {
	Run(ctx context.Context, args []string) error
}

type execRunner struct {
	binary string
}

// NewRunner runs the ffmpeg binary found on PATH, or binary when set.
func NewRunner(binary string) Runner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &execRunner{binary: binary}
}

func (r *execRunner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)

	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	zap.L().Debug("running ffmpeg", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())
	}
	return nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= b.max {
		b.buf = append(b.buf[:0], p[n-b.max:]...)
		return n, nil
	}
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return n, nil
}

// String drops a rune cut in half by the window.
func (b *tailBuffer) String() string {
	s := b.buf
	for len(s) > 0 && !utf8.RuneStart(s[0]) {
		s = s[1:]
	}
	return strings.TrimSpace(string(s))
}

// Package composer downloads the generated clips of an order and merges them
// with the voice-over into the final video.
package composer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"luxlife-studio/pkg/client"
	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/errutil"
	"luxlife-studio/pkg/ffmpeg"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	backgroundFile = "background.mp4"
	animationFile  = "animation.mp4"
	partialFile    = "composed.partial.mp4"
	composedFile   = "composed.mp4"
)

type Downloader interface {
	Download(ctx context.Context, url string, w io.Writer) error
}

type Composer struct {
	downloader Downloader
	runner     ffmpeg.Runner
	scratchDir string
}

var Module = fx.Module("composer", fx.Provide(NewFromConfig))

func NewFromConfig(cfg *config.Config) *Composer {
	return New(
		client.NewHTTP("media", 5*time.Minute, 0),
		ffmpeg.NewRunner(""),
		cfg.Worker.ScratchDir,
	)
}

func New(d Downloader, r ffmpeg.Runner, scratchDir string) *Composer {
	return &Composer{downloader: d, runner: r, scratchDir: scratchDir}
}

// NewScratch allocates the working directory for orderID.
func (c *Composer) NewScratch(orderID string) (*Scratch, error) {
	return NewScratch(c.scratchDir, orderID)
}

// Compose renders the final video into the scratch directory and returns
// its path. backgroundURL may be empty.
func (c *Composer) Compose(ctx context.Context, scratch *Scratch, backgroundURL, animationURL, audioPath string) (string, error) {
	opts := ffmpeg.ComposeOptions{
		Animation: scratch.Path(animationFile),
		Audio:     audioPath,
		Output:    scratch.Path(partialFile),
	}
	if backgroundURL != "" {
		opts.Background = scratch.Path(backgroundFile)
	}
	defer removeQuietly(opts.Background, opts.Animation)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.fetch(gctx, animationURL, opts.Animation) })
	if opts.Background != "" {
		g.Go(func() error { return c.fetch(gctx, backgroundURL, opts.Background) })
	}
	if err := g.Wait(); err != nil {
		return "", &errutil.CompositionError{Err: err}
	}

	if err := c.runner.Run(ctx, ffmpeg.ComposeArgs(opts)); err != nil {
		removeQuietly(opts.Output)
		return "", &errutil.CompositionError{Err: err}
	}

	final := scratch.Path(composedFile)
	if err := os.Rename(opts.Output, final); err != nil {
		removeQuietly(opts.Output)
		return "", &errutil.CompositionError{Err: err}
	}
	return final, nil
}

func (c *Composer) fetch(ctx context.Context, url, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := c.downloader.Download(ctx, url, f); err != nil {
		return fmt.Errorf("download %s: %w", dst, err)
	}
	return f.Sync()
}

func removeQuietly(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("failed to remove temp file", zap.String("path", p), zap.Error(err))
		}
	}
}

package composer

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Scratch is the private working directory of one order execution.
type Scratch struct {
	dir string
}

// NewScratch creates a fresh directory under base (os.TempDir when empty).
func NewScratch(base, orderID string) (*Scratch, error) {
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(base, "order-"+orderID+"-")
	if err != nil {
		return nil, err
	}
	return &Scratch{dir: dir}, nil
}

func (s *Scratch) Dir() string { return s.dir }

func (s *Scratch) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Release removes the directory and everything in it.
func (s *Scratch) Release() {
	if s == nil || s.dir == "" {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		zap.L().Warn("failed to remove scratch directory", zap.String("dir", s.dir), zap.Error(err))
	}
}

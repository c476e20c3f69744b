package scratch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"github.com/yokitheyo/fileconverter/internal/config"
	"github.com/yokitheyo/fileconverter/internal/domain"
)

// Workspace hands out one private directory per conversion.
type Workspace struct {
	basePath string
}

func NewWorkspace(cfg *config.ScratchConfig) (*Workspace, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("BaseDir is empty, set scratch.base_dir in config or env")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	zlog.Logger.Info().Str("base_dir", cfg.BaseDir).Msg("scratch workspace initialized")
	return &Workspace{basePath: cfg.BaseDir}, nil
}

func (w *Workspace) Open(ctx context.Context) (domain.ScratchDir, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(w.basePath, uuid.New().String())
	if err := os.Mkdir(path, 0o700); err != nil {
		zlog.Logger.Error().Err(err).Str("path", path).Msg("failed to create scratch dir")
		return nil, fmt.Errorf("create scratch dir %s: %w", path, err)
	}
	return &Dir{path: path}, nil
}

type Dir struct {
	path string
	once sync.Once
	err  error
}

func (d *Dir) Root() string {
	return d.path
}

func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.Base(name))
}

func (d *Dir) Save(ctx context.Context, name string, reader io.Reader) (string, error) {
	if reader == nil {
		zlog.Logger.Error().Str("filename", name).Msg("reader is nil")
		return "", fmt.Errorf("reader is nil")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := d.Path(name)
	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to create file")
		return "", fmt.Errorf("create file %s: %w", fullPath, err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", fullPath).Msg("failed to write file")
		return "", fmt.Errorf("write file %s: %w", fullPath, err)
	}
	if written == 0 {
		zlog.Logger.Error().Str("path", fullPath).Msg("no bytes written to file")
		return "", fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}

	zlog.Logger.Debug().
		Str("path", fullPath).
		Int64("bytes", written).
		Msg("scratch file saved")

	return fullPath, nil
}

// Close removes the directory and everything in it. Safe to call twice.
func (d *Dir) Close() error {
	d.once.Do(func() {
		if err := os.RemoveAll(d.path); err != nil {
			zlog.Logger.Error().Err(err).Str("path", d.path).Msg("failed to remove scratch dir")
			d.err = fmt.Errorf("remove scratch dir %s: %w", d.path, err)
			return
		}
		zlog.Logger.Debug().Str("path", d.path).Msg("scratch dir removed")
	})
	return d.err
}

package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/probe"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var (
	ErrNotFound       = errors.New("media not found")
	ErrUnsupported    = errors.New("unsupported media type")
	ErrNotRegularFile = errors.New("path is not a regular file")
)

type MediaService interface {
	Import(ctx context.Context, path string) (*Media, error)
	ImportFolder(ctx context.Context, dir string) ([]*Media, error)
	Get(ctx context.Context, id string) (*Media, error)
	List(ctx context.Context) ([]*Media, error)
	Remove(ctx context.Context, id string) error
	Resolve(ctx context.Context, id string) (string, bool)
}

type Service struct {
	repo   Repository
	prober probe.Prober
	logger *slog.Logger
}

func NewService(repo Repository, prober probe.Prober, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		prober: prober,
		logger: logging.WithComponent(logging.OrDiscard(logger), "library"),
	}
}

// Import probes path and stores it. A path already in the library returns
// the existing record.
func (s *Service) Import(ctx context.Context, path string) (*Media, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if !IsMediaFile(absPath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(absPath))
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegularFile
	}

	existing, err := s.repo.GetMediaByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	result, err := s.prober.Probe(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filepath.Base(absPath), err)
	}

	m := &Media{
		ID:        timeline.NewID(),
		Path:      absPath,
		Filename:  filepath.Base(absPath),
		Size:      info.Size(),
		Duration:  result.Duration,
		Width:     result.Width,
		Height:    result.Height,
		FrameRate: result.FrameRate,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateMedia(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("media imported",
		"media_id", m.ID,
		"path", logging.SanitizePath(absPath),
		"size", humanize.Bytes(uint64(m.Size)),
		"duration", m.Duration,
	)
	return m, nil
}

// ImportFolder imports every media file under dir, skipping hidden
// directories. Files that fail to import are logged and skipped.
func (s *Service) ImportFolder(ctx context.Context, dir string) ([]*Media, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory")
	}

	var paths []string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if !d.IsDir() && IsMediaFile(d.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	imported := make([]*Media, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return imported, err
		}
		m, err := s.Import(ctx, p)
		if err != nil {
			s.logger.Warn("failed to import media", "path", logging.SanitizePath(p), "error", err)
			continue
		}
		imported = append(imported, m)
	}

	s.logger.Info("folder imported", "path", logging.SanitizePath(dir), "count", len(imported))
	return imported, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Media, error) {
	m, err := s.repo.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*Media, error) {
	return s.repo.ListMedia(ctx)
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteMedia(ctx, id)
}

// Resolve maps a media id to its file path. It satisfies export.MediaResolver
// when bound with a context.
func (s *Service) Resolve(ctx context.Context, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	m, err := s.repo.GetMedia(ctx, id)
	if err != nil || m == nil {
		return "", false
	}
	return m.Path, true
}

// ForgetPath removes the media stored for path, if any. It reports whether a
// record was removed.
func (s *Service) ForgetPath(ctx context.Context, path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	m, err := s.repo.GetMediaByPath(ctx, abs)
	if err != nil || m == nil {
		return false, err
	}
	if err := s.repo.DeleteMedia(ctx, m.ID); err != nil {
		return false, err
	}
	s.logger.Info("media forgotten", "media_id", m.ID, "path", logging.SanitizePath(abs))
	return true, nil
}

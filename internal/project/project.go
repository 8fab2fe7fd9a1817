// Package project opens a site checkout for the kosh commands: its
// configuration, content tree and render cache.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/loader"
)

// ErrConfig marks failures caused by the configuration, not the content.
var ErrConfig = errors.New("invalid configuration")

// Options are the command-line overrides of kosh.yaml.
type Options struct {
	ConfigPath    string
	BaseURL       string
	ContentDir    string
	Workers       int
	IncludeDrafts bool
	NoCache       bool
}

type Project struct {
	Config      *config.Config
	Dir         string // directory holding kosh.yaml
	ContentRoot string // absolute content directory
	Fs          afero.Fs
	Logger      *slog.Logger
}

// Open loads the configuration at opts.ConfigPath on the OS filesystem.
func Open(opts Options, logger *slog.Logger) (*Project, error) {
	return OpenFs(afero.NewOsFs(), opts, logger)
}

// OpenFs is Open with the content tree read from fsys. The configuration
// file is always read from disk.
func OpenFs(fsys afero.Fs, opts Options, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultFile
	}

	cfg, err := config.LoadWith(opts.ConfigPath, func(c *config.Config) {
		if opts.BaseURL != "" {
			c.BaseURL = opts.BaseURL
		}
		if opts.ContentDir != "" {
			c.ContentDir = opts.ContentDir
		}
		if opts.Workers > 0 {
			c.Build.Workers = opts.Workers
		}
		if opts.IncludeDrafts {
			c.IncludeDrafts = true
		}
		if opts.NoCache {
			c.Build.CacheDir = ""
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	dir, err := filepath.Abs(filepath.Dir(opts.ConfigPath))
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}
	return &Project{
		Config:      cfg,
		Dir:         dir,
		ContentRoot: resolve(dir, cfg.ContentDir),
		Fs:          fsys,
		Logger:      logger,
	}, nil
}

func resolve(dir, configured string) string {
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(dir, configured)
}

// Path resolves a configured path against the project directory.
func (pr *Project) Path(configured string) string {
	return resolve(pr.Dir, configured)
}

// Documents walks the content directory.
func (pr *Project) Documents(ctx context.Context) ([]library.Document, error) {
	if ok, err := afero.DirExists(pr.Fs, pr.ContentRoot); err != nil || !ok {
		return nil, fmt.Errorf("%w: content directory %s does not exist", ErrConfig, pr.ContentRoot)
	}
	return loader.New(pr.Fs, pr.Config, pr.Logger).Load(ctx, pr.ContentRoot)
}

// OpenCache opens the render cache, or returns nil when cache_dir is unset.
func (pr *Project) OpenCache() (*cache.Manager, error) {
	if pr.Config.Build.CacheDir == "" {
		return nil, nil
	}
	return cache.Open(pr.Path(pr.Config.Build.CacheDir), pr.Config.Build.CacheDBTimeout)
}

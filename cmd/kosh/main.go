package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/internal/build"
	"github.com/Kush-Singh-26/koshgraph/internal/check"
	"github.com/Kush-Singh-26/koshgraph/internal/clean"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
	"github.com/Kush-Singh-26/koshgraph/internal/tree"
)

const (
	exitFailed = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "kosh",
		Usage: "Build a site content graph from a markdown tree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.DefaultFile,
				Sources: cli.EnvVars("KOSH_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Override base_url",
				Sources: cli.EnvVars("KOSH_BASE_URL"),
			},
			&cli.StringFlag{
				Name:  "content",
				Usage: "Override content_dir",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Render workers, 0 means one per CPU",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "warn",
				Sources: cli.EnvVars("KOSH_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Build the site and write its manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Manifest path", Value: build.DefaultManifest},
					&cli.BoolFlag{Name: "drafts", Usage: "Include draft documents"},
					&cli.BoolFlag{Name: "no-cache", Usage: "Ignore the render cache"},
				},
				Action: runBuild,
			},
			{
				Name:  "check",
				Usage: "Build without writing output and report problems",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "strict", Usage: "Fail on warnings too"},
					&cli.BoolFlag{Name: "drafts", Usage: "Include draft documents"},
				},
				Action: runCheck,
			},
			{
				Name:   "tree",
				Usage:  "Print the section tree",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "drafts", Usage: "Include draft documents"}},
				Action: runTree,
			},
			{
				Name:  "clean",
				Usage: "Remove the manifest and the render cache",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Manifest path", Value: build.DefaultManifest},
					&cli.BoolFlag{Name: "keep-cache", Usage: "Only remove the manifest"},
				},
				Action: runClean,
			},
			cacheCommand(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		if errors.Is(err, project.ErrConfig) {
			os.Exit(exitConfig)
		}
		os.Exit(exitFailed)
	}
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, fmt.Errorf("%w: log level: %w", project.ErrConfig, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// open builds the project from the global flags and the command's own.
func open(cmd *cli.Command) (*project.Project, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	return project.Open(project.Options{
		ConfigPath:    cmd.String("config"),
		BaseURL:       cmd.String("base-url"),
		ContentDir:    cmd.String("content"),
		Workers:       int(cmd.Int("workers")),
		IncludeDrafts: cmd.Bool("drafts"),
		NoCache:       cmd.Bool("no-cache"),
	}, logger)
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	p, err := open(cmd)
	if err != nil {
		return err
	}
	fmt.Println("🔨 Building site...")
	_, err = build.Run(ctx, p, build.Options{Output: cmd.String("out")})
	return err
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	p, err := open(cmd)
	if err != nil {
		return err
	}
	fmt.Println("🔍 Checking site...")
	_, err = check.Run(ctx, p, check.Options{Strict: cmd.Bool("strict")})
	return err
}

func runTree(ctx context.Context, cmd *cli.Command) error {
	p, err := open(cmd)
	if err != nil {
		return err
	}
	root, err := tree.Load(ctx, p)
	if err != nil {
		return err
	}
	tree.Print(os.Stdout, root)
	return nil
}

func runClean(_ context.Context, cmd *cli.Command) error {
	p, err := open(cmd)
	if err != nil {
		return err
	}
	return clean.Run(p, clean.Options{
		Manifest:  cmd.String("out"),
		KeepCache: cmd.Bool("keep-cache"),
	})
}

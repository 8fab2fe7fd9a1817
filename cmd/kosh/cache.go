package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
)

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or reset the render cache",
		Commands: []*cli.Command{
			{Name: "stats", Usage: "Show cache statistics", Action: cacheStats},
			{Name: "clear", Usage: "Drop every cached render", Action: cacheClear},
		},
	}
}

func openCache(cmd *cli.Command) (*cache.Manager, error) {
	p, err := open(cmd)
	if err != nil {
		return nil, err
	}
	cm, err := p.OpenCache()
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if cm == nil {
		return nil, fmt.Errorf("no cache_dir configured in %s", cmd.String("config"))
	}
	return cm, nil
}

func cacheStats(_ context.Context, cmd *cli.Command) error {
	cm, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cm.Close() }()

	stats, err := cm.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Location:        %s\n", cm.Path())
	fmt.Printf("Schema Version:  %d\n", stats.SchemaVersion)
	fmt.Printf("Renders:         %d (%d compressed)\n", stats.Entries, stats.Compressed)
	fmt.Printf("Store Size:      %.2f MB\n", float64(stats.StoredBytes)/(1024*1024))
	fmt.Printf("Build Count:     %d\n", stats.BuildCount)
	if stats.LastBuildTime > 0 {
		fmt.Printf("Last Build:      %s\n", time.Unix(stats.LastBuildTime, 0).Format(time.RFC3339))
	} else {
		fmt.Printf("Last Build:      never\n")
	}
	return nil
}

func cacheClear(_ context.Context, cmd *cli.Command) error {
	cm, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = cm.Close() }()

	fmt.Println("🗑️  Clearing cached renders...")
	if err := cm.Reset(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("✅ Cache cleared")
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crateful/unbox/internal/cache"
	"github.com/crateful/unbox/internal/config"
	"github.com/crateful/unbox/internal/domain"
	"github.com/crateful/unbox/internal/engine/sevenzip"
	"github.com/crateful/unbox/internal/engine/streamer"
	"github.com/crateful/unbox/internal/fetcher"
	"github.com/crateful/unbox/internal/history"
	"github.com/crateful/unbox/internal/orchestrator"
	"github.com/crateful/unbox/internal/session"
	"github.com/crateful/unbox/internal/worker"
)

func Execute() error {
	rootCmd := &cobra.Command{Use: "unbox", Short: "Inspect and extract archives"}
	rootCmd.AddCommand(
		newLsCmd(),
		newCatCmd(),
		newProbeCmd(),
		newHistoryCmd(),
		newClearCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

func newWorker() (*worker.Worker, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	hist, err := history.NewSQLite(cfg.HistoryDB)
	if err != nil {
		return nil, nil, nil, err
	}

	stream := streamer.New()
	command := sevenzip.New(cfg.TempDir, cfg.InlineLimit(), cfg.SevenZipPath)
	orc := orchestrator.New(stream, command,
		orchestrator.NewPolicy(cfg.EngineOrder), session.NewManager())

	w := worker.New(orc, hist, stream, command)
	return w, cfg, func() { hist.Close() }, nil
}

// openRequest turns a local path or URL argument into an extract request.
// URLs are downloaded through the disk cache so repeated inspections skip
// the network.
func openRequest(ctx context.Context, cfg *config.Config, arg, password string) (*domain.Request, func(), error) {
	path := arg

	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		resolved, err := fetchThroughCache(ctx, cfg, arg)
		if err != nil {
			return nil, nil, err
		}
		path = resolved
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	req := &domain.Request{
		Stream:   f,
		FileName: filepath.Base(path),
		Size:     info.Size(),
		Password: password,
	}
	return req, func() { f.Close() }, nil
}

func fetchThroughCache(ctx context.Context, cfg *config.Config, url string) (string, error) {
	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		return "", err
	}

	key := fetcher.Key(url)
	if c.Has(key) {
		return c.GetPath(key), nil
	}

	ftch := fetcher.New(cfg.TempDir, time.Duration(cfg.FetchTimeout)*time.Minute)
	result := ftch.Fetch(ctx, url)
	if result.Error != nil {
		return "", fmt.Errorf("download failed: %w", result.Error)
	}

	return c.Store(key, result.Path)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kerbaras/mangapdf/pkg/app"
	"github.com/kerbaras/mangapdf/pkg/config"
	"github.com/kerbaras/mangapdf/pkg/integrations"
	"github.com/kerbaras/mangapdf/pkg/services"
	"github.com/kerbaras/mangapdf/pkg/sources"
)

func parseTitleID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", services.ErrInvalidTitleID, arg)
	}
	return id, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newToolchain(cfg *config.Config, logger *slog.Logger) integrations.Toolchain {
	if cfg.Backend == config.BackendPDFCPU {
		return integrations.NewNativeTools()
	}
	tools := integrations.NewExternalTools()
	tools.Logger = logger
	return tools
}

func newPipeline(cfg *config.Config, logger *slog.Logger) *services.Pipeline {
	source := sources.NewDMZJ(cfg.API)
	fetcher := services.NewFetcher(source, services.RetryPolicy{
		Attempts:  uint(cfg.Retries),
		Delay:     cfg.RetryDelay,
		MaxJitter: cfg.RetryDelay,
	}, logger)
	downloader := services.NewDownloader(nil, services.DownloaderOptions{
		RetryDelay: pageRetryDelay,
		RateLimit:  cfg.Rate,
	}, logger)

	opts := services.PipelineOptions{
		Output:      cfg.Output,
		Jobs:        cfg.Jobs,
		Retries:     cfg.Retries,
		Pause:       cfg.Pause,
		PageCounter: integrations.PDFPageCounter{},
	}
	if device, ok := integrations.GetDevice(cfg.Device); ok {
		logger.Info("optimizing pages", "device", device.Name, "width", device.Width, "height", device.Height)
		opts.Optimizer = integrations.NewPageOptimizer(device.OptimizeSettings())
	}

	return services.NewPipeline(fetcher, downloader, newToolchain(cfg, logger), opts, logger)
}

func runDownload(cmd *cobra.Command, arg, cfgFile string) error {
	// Invalid input fails before any network activity.
	titleID, err := parseTitleID(arg)
	if err != nil {
		return err
	}

	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load(cfgFile)
	if err != nil {
		return err
	}

	// The TUI owns the terminal; logs would tear its frames.
	logOut := cmd.ErrOrStderr()
	if cfg.TUI && !cfg.Verbose {
		logOut = io.Discard
	}
	logger := newLogger(logOut, cfg.Verbose)
	if path := loader.ConfigFileUsed(); path != "" {
		logger.Debug("using config file", "path", path)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline := newPipeline(cfg, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	if cfg.TUI {
		go func() {
			defer wg.Done()
			if err := app.NewApp(pipeline.Progress(), cancel).Run(ctx); err != nil {
				logger.Debug("progress view stopped", "error", err)
			}
		}()
	} else {
		go func() {
			defer wg.Done()
			app.NewConsole(cmd.OutOrStdout()).Run(pipeline.Progress())
		}()
	}

	logger.Info("manga", "id", titleID)
	result, err := pipeline.Run(ctx, titleID)
	pipeline.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	if cfg.TUI {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d pages, %d chapters)\n", result.Output, result.Pages, len(result.Bookmarks))
	}
	return nil
}

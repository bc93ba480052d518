package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"github.com/riskibarqy/kicker-league/internal/app"
	"github.com/riskibarqy/kicker-league/internal/config"
	"github.com/riskibarqy/kicker-league/internal/observability"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
	"github.com/riskibarqy/kicker-league/internal/usecase"
)

type options struct {
	season     int
	placement  string
	history    string
	paths      []string
	continueOn bool
	resync     bool
	resyncYear int
	dryRun     bool
	workers    int
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger, os.Stdout); err != nil {
		logger.Error("sync run failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.IntVar(&opts.season, "season", 0, "print the season ranking for this year after importing")
	fs.StringVar(&opts.placement, "placement", "", "print the combined placement of this tournament export id")
	fs.StringVar(&opts.history, "history", "", "print the rating history of this player")
	fs.BoolVar(&opts.continueOn, "keep-going", false, "exit 0 even when some exports fail")
	fs.BoolVar(&opts.resync, "resync", false, "re-apply the payloads already stored before anything else")
	fs.IntVar(&opts.resyncYear, "resync-year", 0, "limit -resync to tournaments created in this year")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "with -resync, validate stored payloads without writing")
	fs.IntVar(&opts.workers, "workers", 0, "override SYNC_WORKERS")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] <export.json|dir>...\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.paths = fs.Args()
	if len(opts.paths) == 0 && !opts.resync && opts.season == 0 && opts.placement == "" && opts.history == "" {
		fs.Usage()
		return options{}, errors.New("nothing to do")
	}
	return opts, nil
}

func run(ctx context.Context, cfg config.Config, opts options, logger *logging.Logger, out io.Writer) error {
	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	if opts.workers > 0 {
		cfg.SyncWorkers = opts.workers
	}
	svc, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer svc.Close()

	if opts.resync {
		res, err := svc.Resync.Resync(ctx, usecase.ResyncInput{
			Year:       opts.resyncYear,
			MaxWorkers: cfg.SyncWorkers,
			DryRun:     opts.dryRun,
		})
		if err != nil {
			return fmt.Errorf("resync: %w", err)
		}
		if err := writeJSON(out, res); err != nil {
			return err
		}
		if res.FailedCount > 0 && !opts.continueOn {
			return fmt.Errorf("%d of %d stored tournaments failed to resync", res.FailedCount, res.TournamentCount)
		}
	}

	if len(opts.paths) > 0 {
		items, err := collectItems(opts.paths)
		if err != nil {
			return err
		}
		report, err := svc.Batch.SyncMany(ctx, items)
		if err != nil {
			return fmt.Errorf("import exports: %w", err)
		}
		if err := writeJSON(out, report); err != nil {
			return err
		}
		if failed := report.FailedSources(); len(failed) > 0 && !opts.continueOn {
			return fmt.Errorf("%d of %d exports failed: %s", len(failed), len(items), strings.Join(failed, ", "))
		}
	}

	if opts.season != 0 {
		view, err := svc.Ranking.SeasonView(ctx, opts.season)
		if err != nil {
			return fmt.Errorf("season %d: %w", opts.season, err)
		}
		if err := writeJSON(out, view); err != nil {
			return err
		}
	}
	if opts.placement != "" {
		results, err := svc.Ranking.TournamentPlacement(ctx, opts.placement)
		if err != nil {
			return fmt.Errorf("placement %s: %w", opts.placement, err)
		}
		if err := writeJSON(out, results); err != nil {
			return err
		}
	}
	if opts.history != "" {
		history, err := svc.Rating.PlayerHistory(ctx, opts.history)
		if err != nil {
			return fmt.Errorf("history %s: %w", opts.history, err)
		}
		if err := writeJSON(out, history); err != nil {
			return err
		}
	}
	return nil
}

// collectItems expands directories to the *.json files they hold, sorted so
// that imports are submitted in a stable order.
func collectItems(paths []string) ([]usecase.BatchItem, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}

	items := make([]usecase.BatchItem, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		items = append(items, usecase.BatchItem{Source: f, Raw: raw})
	}
	return items, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// Command voxelfix repairs stored voxel tiles.
//
//	voxelfix [flags] tile_key...
//	voxelfix -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/voxelfix/internal/batch"
	"github.com/banshee-data/voxelfix/internal/config"
	"github.com/banshee-data/voxelfix/internal/monitoring"
	"github.com/banshee-data/voxelfix/internal/repair"
	"github.com/banshee-data/voxelfix/internal/volumestore"
	"github.com/banshee-data/voxelfix/internal/version"
	"github.com/banshee-data/voxelfix/internal/voxel"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath      string
	store           string
	dir             string
	db              string
	workers         int
	backend         string
	logFile         string
	continueOnError bool
	list            bool
	showVersion     bool
	verbose         bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("voxelfix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "repair config file (.json or .toml); compiled defaults if empty")
	fs.StringVar(&o.store, "store", "", "volume store kind: file or sqlite (overrides config)")
	fs.StringVar(&o.dir, "dir", "", "file store directory (overrides config store_path)")
	fs.StringVar(&o.db, "db", "", "sqlite store database (overrides config store_path)")
	fs.IntVar(&o.workers, "workers", 0, "tiles repaired concurrently (overrides config)")
	fs.StringVar(&o.backend, "backend", "", "convert tiles to dense or octree before repair")
	fs.StringVar(&o.logFile, "log-file", "", "also write logs to this size-rotated file")
	fs.BoolVar(&o.continueOnError, "continue-on-error", false, "record tiles with bad data as failed and keep going")
	fs.BoolVar(&o.list, "list", false, "list stored tiles and exit")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.BoolVar(&o.verbose, "v", false, "log per-pass summaries")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: voxelfix [flags] tile_key...\n       voxelfix -list\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return &o, fs.Args(), set, nil
}

// resolve loads the config file and applies explicit flag overrides.
func resolve(o *options, set map[string]bool) (*config.RepairConfig, error) {
	cfg := config.EmptyRepairConfig()
	if o.configPath != "" {
		loaded, err := config.LoadRepairConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if set["store"] {
		cfg.Store = &o.store
	}
	if set["workers"] {
		cfg.Workers = &o.workers
	}
	if set["backend"] {
		cfg.Backend = &o.backend
	}
	switch {
	case set["dir"] && set["db"]:
		return nil, errors.New("-dir and -db are mutually exclusive")
	case set["dir"]:
		cfg.StorePath = &o.dir
		if !set["store"] {
			cfg.Store = ptr(volumestore.KindFile)
		}
	case set["db"]:
		cfg.StorePath = &o.db
		if !set["store"] {
			cfg.Store = ptr(volumestore.KindSQLite)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ptr[T any](v T) *T { return &v }

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, keys, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	if o.showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	monitoring.SetLogger(func(format string, v ...interface{}) {
		fmt.Fprintf(stderr, format+"\n", v...)
	})
	if o.logFile != "" {
		w, err := monitoring.SetLogFile(monitoring.LogFile{Path: o.logFile, MaxSizeMB: 50, MaxBackups: 5, Compress: true})
		if err != nil {
			fmt.Fprintf(stderr, "log file: %v\n", err)
			return 1
		}
		defer w.Close()
		diag := io.Writer(nil)
		if o.verbose {
			diag = w
		}
		voxel.SetLogWriters(w, nil, nil)
		repair.SetLogWriters(w, diag, nil)
		volumestore.SetLogWriters(w, diag, nil)
	} else if o.verbose {
		voxel.SetLogWriters(stderr, nil, nil)
		repair.SetLogWriters(stderr, stderr, nil)
		volumestore.SetLogWriters(stderr, stderr, nil)
	}

	cfg, err := resolve(o, set)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	store, err := volumestore.Open(cfg.GetStore(), cfg.GetStorePath())
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer store.Close()

	if o.list {
		if err := list(store, stdout); err != nil {
			fmt.Fprintf(stderr, "list: %v\n", err)
			return 1
		}
		return 0
	}
	if len(keys) == 0 {
		fmt.Fprintln(stderr, "no tile keys given (see -h)")
		return 2
	}

	pipeline, err := repair.New(repair.ConfigFromRepair(cfg))
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	runner := &batch.Runner{
		Store:           store,
		Pipeline:        pipeline,
		Workers:         cfg.GetWorkers(),
		ContinueOnError: o.continueOnError,
	}
	if cfg.Backend != nil {
		runner.Backend = cfg.GetBackend()
		runner.MaxLeafSize = cfg.GetMaxLeafSize()
	}

	monitoring.Logf("%s: %s store at %s", version.String(), cfg.GetStore(), cfg.GetStorePath())
	sum, runErr := runner.Run(ctx, keys)
	if sum != nil {
		printSummary(sum, stdout)
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "repair: %v\n", runErr)
		return 1
	}
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

func list(store volumestore.Store, stdout io.Writer) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tBACKEND\tBOUNDS\tSIZE\tSTORED\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Key, e.Backend, e.Bounds,
			humanize.Bytes(uint64(e.RawSize)), humanize.Bytes(uint64(e.StoredSize)),
			humanize.Time(e.UpdatedAt))
	}
	return tw.Flush()
}

func printSummary(sum *batch.Summary, stdout io.Writer) {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCHANGED\tBEFORE\tAFTER\tTIME\tSTATUS")
	for _, t := range sum.Tiles {
		changed := "-"
		if t.Report != nil {
			changed = humanize.Comma(int64(t.Report.TotalChanged()))
		}
		status := "ok"
		if t.Err != nil {
			status = t.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\t%s\n",
			t.Key, changed, humanize.Bytes(uint64(t.BytesIn)), humanize.Bytes(uint64(t.BytesOut)),
			t.Duration.Round(time.Millisecond), status)
	}
	tw.Flush()
	fmt.Fprintf(stdout, "run %s: %d tiles, %d failed, %v\n", sum.RunID, len(sum.Tiles), sum.Failed, sum.Duration.Round(time.Millisecond))
}

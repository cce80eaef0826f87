// Command lat-replay runs recorded tracker events through the LAT filter
// and reports, stores, and plots the results.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sugawarayuuta/sonnet"

	"github.com/banshee-data/latfilter/internal/config"
	"github.com/banshee-data/latfilter/internal/db"
	"github.com/banshee-data/latfilter/internal/fsutil"
	"github.com/banshee-data/latfilter/internal/lat/display"
	"github.com/banshee-data/latfilter/internal/lat/eventio"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/replay"
	"github.com/banshee-data/latfilter/internal/lat/storage/sqlite"
	"github.com/banshee-data/latfilter/internal/monitoring"
	"github.com/banshee-data/latfilter/internal/version"
)

// options are the parsed command line flags.
type options struct {
	configPath  string
	eventsPath  string
	dbPath      string
	plotDir     string
	geometry    int
	workers     int
	trace       bool
	showVersion bool
	args        []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("lat-replay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "Tuning config JSON (built-in defaults when empty)")
	fs.StringVar(&o.eventsPath, "events", "", "Event JSON file, or directory of them")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database to record results in (optional)")
	fs.StringVar(&o.plotDir, "plot-dir", "", "Directory for plots of vetoed events (optional)")
	fs.IntVar(&o.geometry, "geometry", -1, "Geometry id, overriding the config and event files")
	fs.IntVar(&o.workers, "workers", 0, "Number of filter workers, overriding the config")
	fs.BoolVar(&o.trace, "trace", false, "Log per-event filter detail")
	fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.args = fs.Args()
	return o, nil
}

func loadConfig(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if o.showVersion {
		fmt.Fprintf(stdout, "lat-replay %s\n", version.String())
		return nil
	}

	if len(o.args) > 0 && o.args[0] == "migrate" {
		if o.dbPath == "" {
			return errors.New("migrate needs -db")
		}
		database, err := db.OpenDB(o.dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		return db.RunMigrateCommand(stdout, database, o.args[1:])
	}
	if len(o.args) > 0 {
		return fmt.Errorf("unknown command %q", o.args[0])
	}

	if o.eventsPath == "" {
		return errors.New("-events is required")
	}

	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.trace || cfg.GetTrace() {
		monitoring.SetTracer(monitoring.Logf)
		defer monitoring.SetTracer(nil)
	}

	fsys := fsutil.OSFileSystem{}
	file, err := eventio.ReadPath(fsys, o.eventsPath)
	if err != nil {
		return err
	}

	opts := replay.OptionsFromConfig(cfg)
	opts.Source = o.eventsPath
	if cfg.GeometryID == nil {
		opts.GeometryID = geometry.ID(file.GeometryID)
	}
	if o.geometry >= 0 {
		opts.GeometryID = geometry.ID(o.geometry)
	}
	if o.workers > 0 {
		opts.Workers = o.workers
	}
	if b, err := sonnet.Marshal(cfg); err == nil {
		opts.ConfigJSON = string(b)
	}

	runner := replay.NewRunner(opts)

	if o.dbPath != "" {
		database, err := db.Open(o.dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		runner.SetStores(sqlite.NewRunStore(database.DB), sqlite.NewEventStore(database.DB))
	}

	if o.plotDir != "" {
		geo, err := geometry.Locate(opts.GeometryID)
		if err != nil {
			return err
		}
		runner.SetPlotter(display.NewEventPlotter(fsys, geo, o.plotDir))
	}

	monitoring.Logf("replaying %d events from %s with %d workers", len(file.Events), o.eventsPath, opts.Workers)
	summary, err := runner.Run(ctx, file.Events)
	if err != nil {
		return err
	}
	summary.Print(stdout)

	if o.plotDir != "" {
		if err := fsys.MkdirAll(o.plotDir, 0o755); err != nil {
			return err
		}
		name := filepath.Join(o.plotDir, "status.html")
		err := display.SaveHTML(fsys, name, func(w io.Writer) error {
			return display.WriteStatusHTML(w, "Filter status "+filepath.Base(o.eventsPath), summary.ByStatus)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("lat-replay: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/HD-Brody/team-project-sub000/internal/aggregate"
	"github.com/HD-Brody/team-project-sub000/internal/config"
	"github.com/HD-Brody/team-project-sub000/internal/export"
	applog "github.com/HD-Brody/team-project-sub000/internal/log"
	"github.com/HD-Brody/team-project-sub000/internal/model"
	"github.com/HD-Brody/team-project-sub000/internal/project"
	"github.com/HD-Brody/team-project-sub000/internal/store/sqlite"
	"github.com/HD-Brody/team-project-sub000/internal/timeutil"
	"github.com/HD-Brody/team-project-sub000/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	verbose    bool

	initDB bool
	seed   string

	once        bool
	preview     bool
	previewType string
	user        string
	timezone    string
	courses     string
	from        string
	to          string
	out         string
}

func main() {
	flags := parseFlags()
	if flags.verbose {
		applog.SetLevel(applog.LevelDebug)
	}
	applog.Info("coursecal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		applog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	store, err := sqlite.Open(conf.Database)
	if err != nil {
		applog.Error("failed to open record store", err, "database", conf.Database)
		os.Exit(1)
	}
	defer store.Close()

	if flags.initDB {
		if err := runInit(context.Background(), store, flags.seed); err != nil {
			applog.Error("init failed", err, "database", conf.Database, "seed", flags.seed)
			os.Exit(1)
		}
		applog.Info("database initialized", "database", conf.Database)
		return
	}

	times := timeutil.Resolver{}
	exporter := &export.Exporter{
		Aggregator: aggregate.Aggregator{
			Provider:  store,
			Projector: project.Projector{Times: times},
			Times:     times,
		},
		ProductID: conf.ProductID,
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flags.once || flags.preview {
		if err := runOnce(ctx, exporter, conf, flags); err != nil {
			applog.Error("export failed", err, "user", flags.user)
			os.Exit(1)
		}
		return
	}

	applog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"database", conf.Database,
		"refresh", conf.RefreshCron,
		"feed_count", len(conf.Feeds),
	)

	if err := web.NewServer(conf, exporter).Run(ctx); err != nil {
		applog.Error("server exited", err)
		os.Exit(1)
	}
	applog.Info("coursecal exiting")
}

// runOnce executes a single export or preview for the flagged user and
// either writes the artifact to -out or prints the preview lines.
func runOnce(ctx context.Context, exporter *export.Exporter, conf *config.Config, flags flagConfig) error {
	if flags.user == "" {
		return fmt.Errorf("-user is required with -once/-preview")
	}

	req := model.ExportRequest{
		UserID:       flags.user,
		TimezoneID:   flags.timezone,
		FilenameHint: flags.user + "-calendar",
	}
	if req.TimezoneID == "" {
		req.TimezoneID = conf.Timezone
	}
	for _, id := range strings.Split(flags.courses, ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.CourseIDs = append(req.CourseIDs, id)
		}
	}
	var err error
	if req.WindowStart, err = parseBound(flags.from); err != nil {
		return fmt.Errorf("bad -from: %w", err)
	}
	if req.WindowEnd, err = parseBound(flags.to); err != nil {
		return fmt.Errorf("bad -to: %w", err)
	}

	if flags.preview {
		typ, err := parsePreviewType(flags.previewType)
		if err != nil {
			return err
		}
		lines, err := exporter.GeneratePreviewTexts(ctx, req, typ)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		applog.Info("preview generated", "user", req.UserID, "lines", len(lines))
		return nil
	}

	resp, err := exporter.ExportCalendar(ctx, req)
	if err != nil {
		return err
	}
	out := flags.out
	if out == "" {
		out = resp.Artifact.Filename
	}
	if err := os.WriteFile(out, resp.Artifact.Payload, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	applog.Info("calendar written", "path", out, "events", resp.EventCount)
	return nil
}

// parsePreviewType normalizes the -type flag and rejects values the
// preview layer does not know, matching the HTTP handler's checks.
func parsePreviewType(raw string) (model.PreviewType, error) {
	typ := model.PreviewType(strings.ToUpper(strings.TrimSpace(raw)))
	switch typ {
	case "", model.PreviewAll:
		return model.PreviewAll, nil
	case model.PreviewAssessment, model.PreviewScheduleEvent:
		return typ, nil
	}
	return "", fmt.Errorf("unknown preview type %q", raw)
}

func parseBound(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./coursecal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.BoolVar(&cfg.initDB, "init", false, "Create the database schema, load -seed data if given, and exit")
	flag.StringVar(&cfg.seed, "seed", "", "YAML seed file loaded with -init")

	flag.BoolVar(&cfg.once, "once", false, "Run one export and exit instead of serving")
	flag.BoolVar(&cfg.preview, "preview", false, "Print preview lines and exit instead of serving")
	flag.StringVar(&cfg.previewType, "type", "ALL", "Preview type: ALL, ASSESSMENT or SCHEDULE_EVENT")
	flag.StringVar(&cfg.user, "user", "", "User to export (with -once/-preview)")
	flag.StringVar(&cfg.timezone, "tz", "", "Export timezone (defaults to config timezone)")
	flag.StringVar(&cfg.courses, "courses", "", "Comma-separated course IDs (empty = all)")
	flag.StringVar(&cfg.from, "from", "", "Window start, RFC3339 (empty = unbounded)")
	flag.StringVar(&cfg.to, "to", "", "Window end, RFC3339 (empty = unbounded)")
	flag.StringVar(&cfg.out, "out", "", "Output path for the artifact (defaults to its filename)")

	flag.Parse()

	return cfg
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/fsmon/fsmon/internal/config"
	"github.com/fsmon/fsmon/internal/console"
	"github.com/fsmon/fsmon/internal/fileutil"
	"github.com/fsmon/fsmon/internal/observability"
	"github.com/fsmon/fsmon/internal/sentryext"
	"github.com/fsmon/fsmon/internal/sysinfo"
	"github.com/fsmon/fsmon/internal/version"
	"github.com/fsmon/fsmon/internal/watcher"
	"github.com/fsmon/fsmon/internal/webclient"
)

// this is set by the build script and used for sentry release tagging
var commit string

func main() {
	var roots, ignores, exts []string
	flag.Func("root",
		"Directory to watch for file changes. May be repeated.",
		func(v string) error { roots = append(roots, v); return nil })
	flag.Func("ignore",
		"Exclude files whose name contains this text. May be repeated.",
		func(v string) error { ignores = append(ignores, v); return nil })
	flag.Func("ext",
		"Only watch files with this extension, written without the dot. May be repeated.",
		func(v string) error { exts = append(exts, v); return nil })

	configPath := flag.String("config", "",
		"Path or HTTP(S) URL of a YAML configuration file. Explicit flags override it.")
	maxDepth := flag.Int("max-depth", 0,
		"Maximum directory depth to descend below each root. 0 means unlimited.")
	pollDelay := flag.Duration("poll-delay", watcher.DefaultPollDelay,
		"Pause between poll cycles, such as 500ms or 2s.")
	historySize := flag.Int("history", watcher.DefaultHistorySize,
		"Number of recent change events to retain for the final stats.")
	logFile := flag.String("log-file", "",
		"File to append the JSON activity log to instead of standard error.")
	watchLog := flag.String("watch-log", "",
		"File that gets one line appended per detected change.")
	logLevel := flag.Int("log-level", 0,
		"Specifies the log level to use for logging. -4: debug, 0: info, 4: warn, 8: error.")
	noColor := flag.Bool("no-color", false,
		"Disables colored output.")
	disableAnalytics := flag.Bool("no-observability", false,
		"Disables error reporting analytics.")
	probe := flag.Bool("probe", false,
		"Prints information about this machine as JSON and exits.")
	showVersion := flag.Bool("version", false,
		"Prints the version and exits.")

	// Custom usage function to add a header and version info
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "============================================\n")
		fmt.Fprintf(os.Stderr, "       fsmon - polling file watcher         \n")
		fmt.Fprintf(os.Stderr, "============================================\n")
		fmt.Fprintf(os.Stderr, "Version: %s\n", version.Version)
		fmt.Fprintf(os.Stderr, "Commit SHA: %s\n\n", commit)
		fmt.Fprintf(os.Stderr, "Use the following flags to configure the watcher:\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("fsmon %s\n", version.Version)
		return
	}

	if *probe {
		probePaths := roots
		if len(probePaths) == 0 {
			probePaths = []string{"/"}
		}
		info, err := json.MarshalIndent(sysinfo.Probe(probePaths), "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "fsmon: failed to marshal system info:", err)
			os.Exit(1)
		}
		fmt.Println(string(info))
		return
	}

	logWriter := io.Writer(os.Stderr)
	if *logFile != "" {
		file, err := os.OpenFile(*logFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Error("main: failed to open log file, logging to stderr",
				"error", err)
		} else {
			logWriter = file
			defer func() {
				_ = file.Close()
			}()
		}
	}
	slog.SetDefault(slog.New(
		slog.NewJSONHandler(
			logWriter,
			&slog.HandlerOptions{
				Level:     slog.Level(*logLevel),
				AddSource: false,
			},
		),
	))

	fileCfg, err := resolveConfigFile(*configPath)
	if err != nil {
		slog.Error("main: failed to load config, exiting", "error", err)
		os.Exit(1)
	}

	// set up sentry reporting
	sentryClient := sentryext.New(sentryext.Params{
		Disabled:         *disableAnalytics,
		DSN:              fileCfg.SentryDSN,
		AttachStacktrace: true,
		Release:          version.Version,
		Commit:           commit,
		Environment:      version.Environment,
	})
	defer sentryClient.Flush(2 * time.Second)

	logger := observability.NewCoreLogger(
		slog.Default(),
		&observability.CoreLoggerParams{
			Sentry: sentryClient,
			Tags:   observability.Tags{"service": "fsmon"},
		},
	)

	// The config file provides the defaults; explicit flags override it.
	cfg := fileCfg.WatchConfig()
	changeLog := fileCfg.WatchLog
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "poll-delay":
			cfg.PollDelay = *pollDelay
		case "history":
			cfg.HistorySize = *historySize
		case "watch-log":
			changeLog = *watchLog
		}
	})
	if len(roots) > 0 {
		cfg.Roots = roots
	}
	if len(ignores) > 0 {
		cfg.IgnorePatterns = ignores
	}
	if len(exts) > 0 {
		cfg.AllowedExtensions = exts
	}

	if len(cfg.Roots) == 0 {
		fmt.Fprintln(os.Stderr,
			"fsmon: at least one -root flag or a config file with roots is required")
		flag.Usage()
		os.Exit(2)
	}

	if *noColor {
		console.DisableColor()
	}

	if err := run(cfg, changeLog, logger); err != nil {
		logger.CaptureFatal(err)
		os.Exit(1)
	}
}

// resolveConfigFile loads the YAML config from a local path or URL, or
// returns an empty config when no path is given.
func resolveConfigFile(path string) (*config.File, error) {
	if path == "" {
		return &config.File{}, nil
	}

	fsys := afero.NewOsFs()

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		tmpDir, err := os.MkdirTemp("", "fsmon-config-")
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = os.RemoveAll(tmpDir)
		}()

		downloaded := filepath.Join(tmpDir, "config.yaml")
		downloader := webclient.New(webclient.Params{
			Logger: observability.NewCoreLogger(slog.Default(), nil),
		})
		if err := downloader.Download(context.Background(), path, downloaded); err != nil {
			return nil, err
		}
		path = downloaded
	}

	return config.Load(fsys, path)
}

// run polls until interrupted, printing changes as they are detected.
func run(
	cfg watcher.Config,
	changeLog string,
	logger *observability.CoreLogger,
) error {
	sched, err := watcher.New(watcher.Params{
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	printer := console.NewPrinter(os.Stdout)
	if err := sched.OnChange(watcher.KindAll, printer.Change); err != nil {
		return err
	}

	if changeLog != "" {
		fsys := afero.NewOsFs()
		if err := fsys.MkdirAll(filepath.Dir(changeLog), 0o755); err != nil {
			return fmt.Errorf("main: unable to create change log directory: %w", err)
		}

		err := sched.OnChange(watcher.KindAll, func(e watcher.ChangeEvent) {
			line := fmt.Sprintf("%s was %s", e.Path, e.Kind)
			if err := fileutil.AppendLine(fsys, changeLog, line); err != nil {
				logger.CaptureError(
					fmt.Errorf("main: failed to append to change log: %w", err))
			}
		})
		if err != nil {
			return err
		}
	}

	if err := sched.Start(); err != nil {
		return err
	}

	slog.Info(
		"main: watching",
		"roots", cfg.Roots,
		"ignore-patterns", cfg.IgnorePatterns,
		"allowed-extensions", cfg.AllowedExtensions,
		"max-depth", cfg.MaxDepth,
		"poll-delay", cfg.PollDelay.String(),
		"history-size", cfg.HistorySize,
		"change-log", changeLog,
	)

	// Disk usage is probed for the watched roots themselves.
	slog.Info("main: host", "system", sysinfo.Probe(cfg.Roots))

	// Stop cleanly on interrupt so retained stats can be reported.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	slog.Info("main: received shutdown signal", "signal", sig.String())

	sched.Stop()
	printer.Stats(sched.Stats())

	return nil
}

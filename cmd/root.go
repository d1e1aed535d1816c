package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/recall/internal/collector"
	"github.com/fakeyudi/recall/internal/config"
	"github.com/fakeyudi/recall/internal/event"
	"github.com/fakeyudi/recall/internal/gather"
	"github.com/fakeyudi/recall/internal/logging"
	"github.com/fakeyudi/recall/internal/metrics"
	"github.com/fakeyudi/recall/internal/render"
	"github.com/fakeyudi/recall/internal/timeline"
	"github.com/fakeyudi/recall/internal/tui"
)

var errInvalidDate = errors.New("Invalid date format. Please use YYYY-MM-DD.")

// cfg holds the loaded configuration, populated in PersistentPreRunE.
var cfg config.Config

var (
	configPath      string
	formatFlag      string
	plainFlag       bool
	logLevelFlag    string
	metricsTextfile string
)

var rootCmd = &cobra.Command{
	Use:   "recall [YYYY-MM-DD]",
	Short: "Summarize a day of activity from your browser, calendar, chat, code host and shell",
	Long: `recall collects what you did on a given day (default today) from every
enabled source and prints one chronological, summarized timeline.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runRecall,
}

// loadConfig reads the config file (defaults when there is none) and
// initialises logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	switch {
	case err == nil:
		cfg = *loaded
	case errors.Is(err, config.ErrNotFound) && configPath == "":
		cfg = config.Defaults()
	default:
		return fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("format") {
		cfg.Format = formatFlag
	}
	if metricsTextfile != "" {
		cfg.MetricsTextfile = metricsTextfile
	}
	level := cfg.LogLevel
	if logLevelFlag != "" {
		level = logLevelFlag
	}

	logging.Init(cmd.ErrOrStderr(), cfg.Format == "json", logging.ParseLevel(level))
	slog.Debug("config loaded", "path", configPath, "sources", len(cfg.Sources))
	return nil
}

// parseDay returns the local-time window for arg, or today when arg is "".
func parseDay(arg string, now time.Time) (event.Window, error) {
	if arg == "" {
		return event.Day(now), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, arg, now.Location())
	if err != nil {
		return event.Window{}, errInvalidDate
	}
	return event.Day(d), nil
}

func runRecall(cmd *cobra.Command, args []string) error {
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	window, err := parseDay(arg, time.Now())
	if err != nil {
		return err
	}

	collectors, warnings := collector.FromConfig(cfg.Sources)
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	out := cmd.OutOrStdout()
	if len(collectors) == 0 {
		fmt.Fprintln(out, "No collectors enabled.")
		return nil
	}

	interactive := !plainFlag && isTerminal(out)
	renderer, err := render.ForFormat(cfg.Format, interactive)
	if err != nil {
		return err
	}

	// Progress shares stdout with the console timeline; other formats keep
	// stdout clean for piping.
	progressOut := out
	if cfg.Format != "" && cfg.Format != "console" {
		progressOut = cmd.ErrOrStderr()
	}
	date := window.Start.Format(time.DateOnly)

	recorder := metrics.New()
	var (
		progress gather.Sink
		stop     = func() error { return nil }
	)
	if interactive && isTerminal(progressOut) {
		p := tui.StartProgress(progressOut, tui.Title(date))
		progress, stop = p, p.Stop
	} else {
		progress = tui.StartPlain(progressOut, tui.Title(date))
	}

	events, buildErr := timeline.Build(cmd.Context(), collectors, window, gather.MultiSink(progress, recorder))
	if err := stop(); err != nil {
		slog.Warn("progress display failed", "err", err)
	}

	if cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			slog.Warn("could not write metrics textfile", "path", cfg.MetricsTextfile, "err", err)
		}
	}

	if errors.Is(buildErr, timeline.ErrNoActivity) {
		fmt.Fprintln(out, "\nNo activity found for the specified date.")
		return nil
	}
	if buildErr != nil {
		return buildErr
	}

	rendered, err := renderer.Render(&render.Timeline{Date: window.Start, Events: events})
	if err != nil {
		return fmt.Errorf("rendering timeline: %w", err)
	}
	_, err = out.Write(rendered)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.IsInteractive(f)
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/recall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "console", "output format: console, markdown, json")
	rootCmd.Flags().BoolVar(&plainFlag, "plain", false, "disable the spinner and styling even on a terminal")
	rootCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics for this run to `path`")
}

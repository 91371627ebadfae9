// Package main provides the duty-report binary: it fetches every staff
// schedule from the school portal, caches the events and prints which break
// supervision places are covered.
package main

import (
	"context"
	"duty-report/config"
	customerrors "duty-report/errors"
	"duty-report/formatter"
	"duty-report/metrics"
	"duty-report/models"
	"duty-report/scheduler"
	"duty-report/store"
	"duty-report/wilma"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "duty-report"
	jobName = "duty_report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app is shared by every subcommand once the persistent flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	format      string
	metricsAddr string
	pushURL     string
	wait        bool

	metricsServer *http.Server
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Report break supervision coverage from the school portal",
		Long: `duty-report reads the cached staff schedules and prints, for every
break of the week, who supervises which place and which places are
left without a supervisor.

Run "duty-report update" first to fetch the schedules from the portal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.report(cmd.OutOrStdout())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(cmd.Context(), cmd.OutOrStdout())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.format, "format", "text", "Output format: text|json|csv")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	flags.StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	flags.BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")

	cmd.AddCommand(updateCmd(a), getCmd(a))
	cmd.AddCommand(versionCmd())

	return cmd
}

// versionCmd overrides the persistent hooks: it needs no config or metrics.
func versionCmd() *cobra.Command {
	noop := func(cmd *cobra.Command, args []string) error { return nil }
	return &cobra.Command{
		Use:                "version",
		Short:              "Print version information",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  noop,
		PersistentPostRunE: noop,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}

func updateCmd(a *app) *cobra.Command {
	var skipFailed bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch every schedule from the portal and overwrite the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd.Context(), cmd.OutOrStdout(), skipFailed)
		},
	}
	cmd.Flags().BoolVar(&skipFailed, "skip-failed", false, "Skip people whose schedule cannot be fetched instead of aborting")
	return cmd
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <weekday> <H:MM>",
		Short: "Print one break slot from the cache",
		Long: `Print the duties and missing places of one break.

weekday is one of ma, ti, ke, to, pe (or the full Finnish name) and the
time is the break's start, e.g. "duty-report get ti 10:15".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.slot(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func (a *app) setup() error {
	switch a.format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("format must be one of: text, json, csv (got: %s)", a.format)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.logger = config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(a.logger)

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		a.metricsServer = &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.logger.Info("metrics server listening", "addr", a.metricsAddr, "path", "/metrics")
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
	}
	return nil
}

// finish pushes metrics and, with --wait, keeps serving them until interrupted.
func (a *app) finish(ctx context.Context, out io.Writer) error {
	if a.pushURL != "" {
		if err := push.New(a.pushURL, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			a.logger.Error("push to pushgateway failed", "url", a.pushURL, "error", err)
		} else {
			a.logger.Info("metrics pushed", "url", a.pushURL)
		}
	}

	if a.metricsServer == nil {
		return nil
	}
	if a.wait {
		fmt.Fprintln(out, "\nProcess kept alive for metric scraping. Press Ctrl+C to exit.")
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return a.metricsServer.Shutdown(shutdownCtx)
}

func (a *app) coverage() (*models.Coverage, error) {
	events, err := store.Load(a.cfg.CachePath)
	if err != nil {
		return nil, err
	}
	cov, err := scheduler.BuildCoverage(events)
	if err != nil {
		return nil, fmt.Errorf("group cached events: %w", err)
	}
	return cov, nil
}

func (a *app) report(out io.Writer) error {
	cov, err := a.coverage()
	if err != nil {
		return err
	}

	switch a.format {
	case "json":
		fmt.Fprintln(out, formatter.FormatJSON(cov))
	case "csv":
		fmt.Fprint(out, formatter.FormatCSV(cov))
	default:
		fmt.Fprint(out, formatter.FormatText(cov))
	}
	return nil
}

func (a *app) slot(out io.Writer, weekdayArg, clockArg string) error {
	day, ok := models.ParseWeekday(weekdayArg)
	if !ok {
		return fmt.Errorf("%w: %q (use ma, ti, ke, to or pe)", customerrors.ErrUnknownWeekday, weekdayArg)
	}
	start, err := formatter.ParseClock(clockArg)
	if err != nil {
		return err
	}

	cov, err := a.coverage()
	if err != nil {
		return err
	}

	slot, ok := cov.Slot(day, start)
	if !ok {
		return fmt.Errorf("no supervised break starts at %s on %s", formatter.FormatMinutes(start), models.Weekdays[day])
	}
	fmt.Fprint(out, formatter.FormatSlot(models.Weekdays[day], *slot))
	return nil
}

func (a *app) update(ctx context.Context, out io.Writer, skipFailed bool) error {
	if err := a.cfg.RequireCredentials(); err != nil {
		return err
	}

	client, err := wilma.Open(ctx, a.cfg.Username, a.cfg.Password, a.cfg.Server,
		wilma.WithTimeout(a.cfg.HTTPTimeout),
		wilma.WithLogger(a.logger),
		wilma.WithWorkers(a.cfg.FetchWorkers),
	)
	if err != nil {
		return err
	}

	people, err := client.Discover(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("fetching schedules", "people", len(people), "workers", a.cfg.FetchWorkers)

	results, err := client.FetchAll(ctx, people)
	if err != nil {
		return fmt.Errorf("update interrupted, cache left unchanged: %w", err)
	}

	var events []models.Event
	skipped := 0
	for _, r := range results {
		if r.Err != nil {
			if !skipFailed {
				return fmt.Errorf("%w (rerun with --skip-failed to ignore)", r.Err)
			}
			skipped++
			continue
		}
		events = append(events, r.Events...)
	}

	if err := store.Save(a.cfg.CachePath, events); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	a.logger.Info("cache updated", "path", a.cfg.CachePath, "events", len(events), "skipped", skipped)

	cov, err := scheduler.BuildCoverage(events)
	if err != nil {
		a.logger.Warn("cached events do not form a valid week", "error", err)
		return nil
	}
	fmt.Fprintf(out, "Updated %d events from %d people, %d break slots.\n", len(events), len(people)-skipped, cov.SlotCount())
	return nil
}

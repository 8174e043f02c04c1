package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/restoctl/config"
	"github.com/s0up4200/restoctl/filter"
	"github.com/s0up4200/restoctl/iiko"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *iiko.Client
	registry *prometheus.Registry
	compiler = filter.NewCompiler(filter.WithCache(32))

	// Command flags
	outputFormat string
	filterExpr   string
	presetName   string
	showMetrics  bool

	appVersion = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "restoctl",
	Short: "Query an iiko restaurant server from the command line",
	Long: `restoctl talks to the iiko server API (resto API). It logs in with the
configured credentials, runs one request at a time on a single session and
releases the license slot again when it exits.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion sets the version reported by --version
func SetVersion(version, buildTime string) {
	appVersion = version
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	// runs on failure too, the server would otherwise keep the slot
	shutdown()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json or yaml")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "log request metrics on exit")
}

// initializeApp initializes the configuration and the iiko client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	if cmd.Flags().Changed("output") {
		format := strings.ToLower(outputFormat)
		if !config.IsOutputFormat(format) {
			return fmt.Errorf("invalid output format: %s (must be table, json or yaml)", outputFormat)
		}
		cfg.Output.Format = format
	}

	registry = prometheus.NewRegistry()
	metrics, err := iiko.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	client, err = iiko.NewClient(cfg.Server.ClientConfig(), logger,
		iiko.WithMetrics(metrics),
		iiko.WithUserAgent("restoctl/"+appVersion),
	)
	if err != nil {
		return fmt.Errorf("failed to create iiko client: %w", err)
	}

	logger.Debug().Str("url", client.BaseURL()).Str("login", cfg.Server.Login).Msg("iiko client ready")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// shutdown logs out when configured to and reports metrics
func shutdown() {
	if client == nil {
		return
	}

	if cfg.Server.LogoutOnExit && client.HasSession() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if _, err := client.Logout(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to log out of iiko server")
		} else {
			logger.Debug().Msg("Released iiko license slot")
		}
	}

	if showMetrics {
		logMetrics()
	}
}

func logMetrics() {
	families, err := registry.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to gather metrics")
		return
	}

	for _, mf := range families {
		var value float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				value += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value += float64(m.GetHistogram().GetSampleCount())
			}
		}
		logger.Info().Str("metric", mf.GetName()).Float64("value", value).Msg("Metrics")
	}
}

// addFilterFlags registers --filter and --preset on a list command
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "use a preset filter from config")
}

// applyFilter narrows records with the --filter or --preset expression
func applyFilter[T filter.Record](records []T) ([]T, error) {
	f, err := compiler.Resolve(filterExpr, presetName, cfg.Filter.Presets)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Int("records", len(records)).Msg("Applying filter")
	}
	return filter.Apply(f, records)
}

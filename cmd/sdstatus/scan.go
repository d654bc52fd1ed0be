package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nao1215/sdstatus/internal/config"
	"github.com/nao1215/sdstatus/internal/database"
	"github.com/nao1215/sdstatus/internal/directory"
	"github.com/nao1215/sdstatus/internal/log"
	"github.com/nao1215/sdstatus/internal/model"
	"github.com/nao1215/sdstatus/internal/probe"
	"github.com/nao1215/sdstatus/internal/report"
	"github.com/nao1215/sdstatus/internal/scanner"
	"github.com/nao1215/sdstatus/internal/tor"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [onion-address...]",
		Short: "Probe SecureDrop instances and report their status",
		Long: `Scan fetches the instance list from the SecureDrop directory and probes
each instance's /metadata endpoint over Tor. Explicit onion addresses can
be given as arguments to skip the directory fetch.

A failure to fetch the directory aborts the scan. A failure to probe an
individual instance does not: the instance is reported as unavailable and
the scan continues.

Examples:
  # Scan every instance in the SecureDrop directory
  sdstatus scan

  # Scan specific instances only
  sdstatus scan exampleonionaddress.onion

  # Use an external Tor proxy instead of the embedded daemon
  sdstatus scan --external-tor 127.0.0.1:9150

  # Output JSON suitable for "sdstatus l10n"
  sdstatus scan --format json --output results.json

  # Save the scan to the local history database
  sdstatus scan --save`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Tor connection flags
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address (e.g., 127.0.0.1:9150)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Scan behavior flags
	cmd.Flags().StringP("directory", "d", config.DefaultDirectoryURL,
		"SecureDrop directory API endpoint")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Maximum number of simultaneous probes")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sdstatus in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		`Output format: "json", "pp", or "markdown"`)
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("save", "s", false,
		"Save the scan to the local history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file and cobra command flags.
// File values apply first; flags the user actually set override them.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFilePath

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file is found.
	configPath := config.FindConfigFile(configFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if configFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configFilePath)
	}

	if cmd.Flags().Changed("external-tor") {
		externalTor, err := cmd.Flags().GetString("external-tor")
		if err != nil {
			return nil, err
		}
		if externalTor != "" {
			cfg.UseExternalTor = true
			cfg.ProxyAddress = externalTor
		}
	}

	if cmd.Flags().Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("directory") {
		if cfg.DirectoryURL, err = cmd.Flags().GetString("directory"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("concurrency") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("format") {
		if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
			return nil, err
		}
	}

	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	if cfg.SaveToDB, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"directoryURL", cfg.DirectoryURL,
		"targets", len(cfg.Targets),
		"useExternalTor", cfg.UseExternalTor,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	client, cleanup, err := setupTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	httpClient := client.NewHTTPClient()

	instances, err := resolveInstances(ctx, cfg, httpClient)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	if interactive {
		fmt.Fprintf(os.Stderr, "Probing %d instances (concurrency: %d)...\n", len(instances), cfg.Concurrency)
	}

	startTime := time.Now()
	s := scanner.New(
		probe.NewProber(httpClient),
		scanner.WithConcurrency(cfg.Concurrency),
		scanner.WithLogger(logger),
	)
	result := s.Scan(ctx, instances)

	if interactive {
		fmt.Fprintf(os.Stderr, "Scan completed in %s: %d of %d instances available\n\n",
			time.Since(startTime).Round(time.Millisecond), result.AvailableCount(), result.Len())
	}

	if cfg.SaveToDB {
		if err := saveScan(ctx, cfg, result, logger); err != nil {
			logger.Error("failed to save scan", "error", err)
		}
	}

	writer, closeOutput, err := newWriter(cfg, reportEcho(cfg))
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// resolveInstances returns the instances to probe: explicit targets when
// given, otherwise the directory listing.
func resolveInstances(ctx context.Context, cfg *config.Config, httpClient *http.Client) ([]model.Instance, error) {
	if len(cfg.Targets) > 0 {
		instances := make([]model.Instance, 0, len(cfg.Targets))
		for _, target := range cfg.Targets {
			normalized, err := tor.NormalizeAddress(target)
			if err != nil {
				return nil, fmt.Errorf("invalid onion address %q: %w", target, err)
			}
			instances = append(instances, model.NewInstanceFromAddress(normalized))
		}
		return instances, nil
	}

	fetcher := directory.NewFetcher(httpClient, cfg.DirectoryURL)
	instances, err := fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch directory: %w", err)
	}

	return instances, nil
}

// setupTor returns a verified Tor client and a cleanup function.
// With --external-tor the configured proxy is used; otherwise an embedded
// Tor daemon is started and torn down by the cleanup function.
func setupTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	if cfg.UseExternalTor {
		client, err := tor.NewClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}

		status := client.CheckConnection(ctx)
		if status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.ProxyAddress)
		}

		logger.Info("Tor proxy connection verified", "address", cfg.ProxyAddress)
		return client, func() {}, nil
	}

	client, embedded, err := startEmbeddedTor(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
	return client, cleanup, nil
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
// Returns the Tor client and embedded Tor manager on success.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, *tor.Embedded, error) {
	fmt.Fprintln(os.Stderr, "Starting embedded Tor daemon...")
	fmt.Fprintf(os.Stderr, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := tor.NewEmbedded(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)

	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embedded.SocksAddr(),
		"controlAddr", embedded.ControlAddr(),
	)

	client, err := embedded.NewClient(cfg.Timeout)
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	status := client.CheckConnection(ctx)
	if status != tor.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	return client, embedded, nil
}

// newWriter builds the report writer for the configured format and
// destination. The returned closer flushes the output file, if any.
//
// When echo is non-nil the report additionally goes there in readable
// form, so a file-bound scan still shows its results on the terminal.
func newWriter(cfg *config.Config, echo io.Writer) (report.Writer, func(), error) {
	output, closeOutput, err := openOutput(cfg.OutputFile)
	if err != nil {
		return nil, nil, err
	}

	writer := formatWriter(cfg, output, cfg.OutputFile == "")
	if echo != nil {
		writer = report.NewMultiWriter(writer, report.NewPPWriter(echo, report.WithVerbose(cfg.Verbose)))
	}

	return writer, closeOutput, nil
}

// formatWriter builds the writer for cfg.Format. JSON bound for a file
// is compact so it can be fed back to "sdstatus l10n" unchanged; JSON on
// stdout is indented for reading.
func formatWriter(cfg *config.Config, output io.Writer, toStdout bool) report.Writer {
	switch cfg.Format {
	case config.FormatJSON:
		if toStdout {
			return report.NewJSONWriter(output, report.WithPrettyPrint())
		}
		return report.NewJSONWriter(output)
	case config.FormatMarkdown:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewPPWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// reportEcho returns the terminal writer to mirror a file-bound report
// to, or nil when the report already goes to stdout or no terminal is
// attached.
func reportEcho(cfg *config.Config) io.Writer {
	if cfg.OutputFile == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	return os.Stdout
}

// openOutput opens the report destination: the named file, or stdout when
// path is empty. Parent directories are created as needed.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// saveScan stores the scan result in the history database.
func saveScan(ctx context.Context, cfg *config.Config, result model.ScanResult, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveScan(ctx, cfg.DirectoryURL, result)
	if err != nil {
		return err
	}

	logger.Info("scan saved to database", "id", id, "dir", cfg.DBDir)
	return nil
}

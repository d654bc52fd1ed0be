package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdstatus/internal/aggregate"
	"github.com/nao1215/sdstatus/internal/config"
	"github.com/nao1215/sdstatus/internal/database"
	"github.com/nao1215/sdstatus/internal/model"
)

// NewL10nCmd creates the l10n command.
func NewL10nCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "l10n [scan-output.json]",
		Short: "Report localization metrics from scanned metadata",
		Long: `l10n groups the instances of a previous scan by the locales they
advertise in their metadata. Unavailable instances are skipped.

The input is the JSON output of a previous "sdstatus scan --format json",
or a run from the history database with --latest or --id.

Examples:
  # Report locales from a saved scan output
  sdstatus l10n results.json

  # Report locales from the most recent saved scan
  sdstatus l10n --latest

  # Report locales from a specific run listed by "sdstatus history"
  sdstatus l10n --id 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runL10nCmd,
	}

	cmd.Flags().BoolP("latest", "l", false,
		"Read the most recent scan from the history database")
	cmd.Flags().Int64P("id", "i", 0,
		"Read the scan with the given ID from the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		`Output format: "json", "pp", or "markdown"`)
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runL10nCmd executes the l10n command.
func runL10nCmd(cmd *cobra.Command, args []string) error {
	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	if latest && id > 0 {
		return errors.New("--latest cannot be combined with --id")
	}
	if (latest || id > 0) && len(args) > 0 {
		return errors.New("--latest and --id cannot be combined with an input file")
	}
	if !latest && id == 0 && len(args) == 0 {
		return errors.New("no input: provide the JSON output of a previous scan, or use --latest or --id")
	}

	cfg := config.NewConfig()
	if cfg.Format, err = cmd.Flags().GetString("format"); err != nil {
		return err
	}
	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	result, err := loadResult(cmd, args, id, cfg)
	if err != nil {
		return err
	}

	writer, closeOutput, err := newWriter(cfg, reportEcho(cfg))
	if err != nil {
		return err
	}
	defer closeOutput()

	if _, err := writer.WriteLocales(aggregate.LocaleReport(result)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// loadResult reads the scan result from the input file or the database.
// A positive id selects that run; otherwise the most recent run is used.
func loadResult(cmd *cobra.Command, args []string, id int64, cfg *config.Config) (model.ScanResult, error) {
	if len(args) > 0 {
		result, err := model.LoadScanResult(args[0])
		if err != nil {
			return model.ScanResult{}, fmt.Errorf("failed to read scan output %s: %w", args[0], err)
		}
		return result, nil
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return model.ScanResult{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if id > 0 {
		result, err := db.ScanByID(cmd.Context(), id)
		if errors.Is(err, database.ErrNoScans) {
			return model.ScanResult{}, fmt.Errorf("no saved scan with ID %d: see \"sdstatus history\"", id)
		}
		return result, err
	}

	result, err := db.LatestScan(cmd.Context())
	if err != nil {
		if errors.Is(err, database.ErrNoScans) {
			return model.ScanResult{}, errors.New("no saved scans: run \"sdstatus scan --save\" first")
		}
		return model.ScanResult{}, err
	}

	return result, nil
}

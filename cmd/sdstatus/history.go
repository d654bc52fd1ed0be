package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sdstatus/internal/config"
	"github.com/nao1215/sdstatus/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved scans from the history database",
		Long: `history lists the scans stored with "sdstatus scan --save", newest
first. Pass an ID from the first column to "sdstatus l10n --id" to report
on that run.`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	db, err := database.Open(cfg.DBDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := db.History(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no saved scans: run \"sdstatus scan --save\" first")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-6s %-20s %7s %10s  %s\n", "ID", "TIMESTAMP", "PROBED", "AVAILABLE", "DIRECTORY")
	for _, rec := range records {
		fmt.Fprintf(out, "%-6d %-20s %7d %10d  %s\n",
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Total,
			rec.Available,
			rec.DirectoryURL,
		)
	}

	return nil
}

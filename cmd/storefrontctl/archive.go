package main

import (
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/archive"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

var (
	archiveSince string
	archiveUntil string
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Export audit log entries to the archive store",
	Long: `Export the audit log entries of a time window as gzipped JSON lines to S3,
or to the local archive directory when S3 is disabled or unreachable.

Without flags the previous UTC day is exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, until := archive.PreviousDay(time.Now())
		var err error
		if archiveSince != "" {
			if since, err = time.Parse(time.RFC3339, archiveSince); err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}
		}
		if archiveUntil != "" {
			if until, err = time.Parse(time.RFC3339, archiveUntil); err != nil {
				return fmt.Errorf("invalid --until: %w", err)
			}
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		exporter := archive.NewExporter(
			repository.NewAuditRepository(pool, logger),
			archive.NewSinkFromConfig(ctx, cfg.Archive, logger),
			logger,
		)

		report, err := exporter.Export(ctx, since, until)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveSince, "since", "", "start of the window, RFC3339 (inclusive)")
	archiveCmd.Flags().StringVar(&archiveUntil, "until", "", "end of the window, RFC3339 (exclusive)")
}

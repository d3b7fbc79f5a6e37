package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	run := func(use, short string, fn func(m migrator, ctx context.Context) error, done string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withBackend(cmd, func(ctx context.Context, b *backend) error {
					if err := fn(b.migrations, ctx); err != nil {
						return err
					}
					if done != "" {
						fmt.Fprintln(cmd.OutOrStdout(), done)
					}
					return nil
				})
			},
		}
	}

	migrate.AddCommand(
		run("up", "Apply all pending migrations", migrator.Migrate, "Migrations applied"),
		run("down", "Roll back the most recent migration", migrator.MigrateDown, "Rolled back one migration"),
		run("status", "Show applied and pending migrations", migrator.MigrationStatus, ""),
	)
	return migrate
}

func newLoginAttemptsCommand() *cobra.Command {
	attempts := &cobra.Command{
		Use:   "login-attempts",
		Short: "Inspect and prune recorded admin login attempts",
	}

	var asJSON bool
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show login attempt totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b *backend) error {
				s, err := b.attempts.Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return json.NewEncoder(out).Encode(s)
				}
				fmt.Fprintf(out, "Total:       %d\n", s.Total)
				fmt.Fprintf(out, "Successful:  %d\n", s.Successful)
				fmt.Fprintf(out, "Failed:      %d\n", s.Failed)
				fmt.Fprintf(out, "Last 24h:    %d\n", s.Recent)
				return nil
			})
		},
	}
	stats.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")

	var days int
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete login attempts older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1 (got %d)", days)
			}
			return withBackend(cmd, func(ctx context.Context, b *backend) error {
				result, err := b.attempts.PurgeOlderThan(ctx, days)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d login attempts older than %s\n",
					result.DeletedCount, result.CutoffDate.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}
	purge.Flags().IntVarP(&days, "days", "d", 90, "Retention window in days")

	attempts.AddCommand(stats, purge)
	return attempts
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolioctl %s (commit %s, built %s)\n",
				versionInfo.version, versionInfo.commit, versionInfo.date)
		},
	}
}

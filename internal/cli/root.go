package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BradenHooton/portfolio/internal/config"
	"github.com/BradenHooton/portfolio/internal/database"
	"github.com/BradenHooton/portfolio/internal/metrics"
	"github.com/BradenHooton/portfolio/internal/models"
	"github.com/BradenHooton/portfolio/internal/repositories"
	"github.com/BradenHooton/portfolio/internal/services"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	versionInfo = struct{ version, commit, date string }{"dev", "unknown", "unknown"}
)

// migrator applies the embedded goose migrations.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrateDown(ctx context.Context) error
	MigrationStatus(ctx context.Context) error
}

// attemptService is what the login-attempts commands operate on.
type attemptService interface {
	Stats(ctx context.Context) (*models.LoginAttemptStats, error)
	PurgeOlderThan(ctx context.Context, days int) (*models.PurgeResult, error)
}

// backend bundles the resources one command invocation needs.
type backend struct {
	migrations migrator
	attempts   attemptService
	close      func()
}

// openBackend connects to the database. Replaced in tests.
var openBackend = func(ctx context.Context, logger *slog.Logger) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	repo := repositories.NewLoginAttemptRepository(db)
	svc := services.NewLoginAttemptService(repo, logger, pkglogger.NewAuditLogger(logger), metrics.Noop{}, nil, cfg.LoginAttempts.ListLimit)
	return &backend{migrations: db, attempts: svc, close: db.Close}, nil
}

// NewRootCommand builds the portfolioctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Maintenance tasks for the portfolio API",
		Long: `portfolioctl runs database migrations and login-attempt maintenance
against the database configured through the same environment as the API.

Examples:
  portfolioctl migrate up                  # Apply pending migrations
  portfolioctl migrate status              # Show migration state
  portfolioctl login-attempts stats        # Totals for the monitoring page
  portfolioctl login-attempts purge -d 30  # Delete attempts older than 30 days`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newLoginAttemptsCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// SetVersion sets the version information for the CLI
func SetVersion(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func commandLogger(w io.Writer) *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return pkglogger.New(w, level)
}

func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	b, err := openBackend(ctx, commandLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}

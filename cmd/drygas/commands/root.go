// Package commands implements the drygas command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/drygas/internal/config"
	"github.com/JonMunkholm/drygas/internal/core"
	"github.com/JonMunkholm/drygas/internal/database"
	"github.com/JonMunkholm/drygas/internal/logging"
	"github.com/JonMunkholm/drygas/internal/tableio"
)

// errFindings is returned when --fail-on-diff or --fail-on-issues trips.
// The report has already been written, so nothing more is printed.
var errFindings = errors.New("findings reported")

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

// Execute runs the command line and prints a user-facing error on failure.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errFindings) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", core.FormatUserError(err))
		slog.Debug("command failed", "error", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	var (
		a             app
		logLevel      string
		maxRows       int
		workers       int
		rulesFile     string
		defaultMaster string
		nullValues    []string
	)

	root := &cobra.Command{
		Use:           "drygas",
		Short:         "Reconcile and validate bench test tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("max-rows") {
				cfg.Compare.MaxRows = maxRows
			}
			if flags.Changed("workers") {
				cfg.Compare.Workers = workers
			}
			if flags.Changed("rules") {
				cfg.Compare.RulesFile = rulesFile
			}
			if flags.Changed("default-master") {
				cfg.Compare.DefaultMaster = defaultMaster
			}
			if flags.Changed("null") {
				cfg.Compare.NullValues = nullValues
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Reports go to stdout; logs stay on stderr.
			slog.SetDefault(logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr()))
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: LOG_LEVEL)")
	pf.IntVar(&maxRows, "max-rows", 0, "cap on rows read from each table (0 = no cap)")
	pf.IntVar(&workers, "workers", 1, "goroutines per run")
	pf.StringVar(&rulesFile, "rules", "", "YAML rule set replacing the built-in rules")
	pf.StringVar(&defaultMaster, "default-master", "", "master file used when none is given")
	pf.StringSliceVar(&nullValues, "null", nil, "cell texts read as null, besides the empty cell")

	root.AddCommand(diffCmd(&a), validateCmd(&a), rulesCmd(&a))
	return root
}

// service builds a core.Service from the resolved config. The database
// pool is opened only when withDB is set and a database is configured.
func (a *app) service(ctx context.Context, withDB bool) (*core.Service, error) {
	var db tableio.Querier
	if withDB && a.cfg.Database.Enabled() {
		pool, err := database.Open(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.pool = pool
		db = pool
	}
	return core.NewService(db, a.cfg.ServiceOptions())
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
}

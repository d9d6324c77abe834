// Package cli implements the binlid command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/binlid/internal/logging"
	"github.com/mesh-intelligence/binlid/internal/paths"
	"github.com/mesh-intelligence/binlid/internal/sqlite"
	"github.com/mesh-intelligence/binlid/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dbPath    string
	logLevel  string
	jsonMode  bool
}

// app carries the state one invocation shares between commands.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
	log       *logrus.Logger
}

// NewRootCmd creates the top-level "binlid" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "binlid",
		Short: "Track where household things are stored",
		Long: `BinLid records storage spaces, the items kept in them and every move
between spaces, and finds items again with full-text search.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/binlid)")
	root.PersistentFlags().StringVar(&a.flags.dbPath, "db", "", "database file (default: $(CWD)/binlid.db)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newAddSpaceCmd(),
		a.newListSpacesCmd(),
		a.newAddItemCmd(),
		a.newListItemsCmd(),
		a.newMoveCmd(),
		a.newHistoryCmd(),
		a.newSearchCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newServeCmd(),
	)
	return root
}

// Execute runs the root command against the process arguments and returns
// the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the CLI with args, writing to stdout and stderr, and returns
// the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "binlid:", err)
	}
	return exitCode(err)
}

// setup loads .env and config.yaml and builds the logger. It runs before
// every subcommand.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := loadDotEnv(); err != nil {
		return systemErr(err)
	}

	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemErr(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = dir

	if a.cfg, err = loadConfig(dir); err != nil {
		return systemErr(err)
	}

	level := a.flags.logLevel
	if level == "" {
		level = a.cfg.GetString(cfgKeyLogLevel)
	}
	if level == "" {
		level = logging.CLILevel
		if cmd.Name() == "serve" {
			level = logging.ServerLevel
		}
	}
	if a.log, err = logging.New(level, cmd.ErrOrStderr()); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidInput, err)
	}
	return nil
}

// resolveDBPath returns the database file following the precedence:
// --db flag > config.yaml db_path > BINLID_DB env > $(CWD)/binlid.db.
func (a *app) resolveDBPath() (string, error) {
	return paths.ResolveDBPath(a.flags.dbPath, a.cfg.GetString(cfgKeyDBPath))
}

// attachBackend resolves the database path, creates a SQLite backend and
// attaches it. The caller must defer backend.Detach().
func (a *app) attachBackend() (*sqlite.Backend, error) {
	dbPath, err := a.resolveDBPath()
	if err != nil {
		return nil, systemErr(fmt.Errorf("resolve database path: %w", err))
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(a.log))
	if err := backend.Attach(types.Config{DBPath: dbPath}); err != nil {
		return nil, fmt.Errorf("attach %s: %w", dbPath, err)
	}
	return backend, nil
}

// withInventory runs fn against an attached inventory and detaches after.
func (a *app) withInventory(ctx context.Context, fn func(ctx context.Context, inv types.Inventory) error) error {
	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(ctx, backend)
}

// systemError marks a failure of the environment (filesystem, config) as
// opposed to bad input.
type systemError struct{ err error }

func (e *systemError) Error() string { return e.err.Error() }
func (e *systemError) Unwrap() error { return e.err }

func systemErr(err error) error { return &systemError{err: err} }

// exitCode maps an error to the process exit code. Storage and environment
// failures are system errors; everything else (bad arguments, unknown
// entities, integrity violations) is the user's.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *systemError
	if errors.As(err, &se) || types.KindOf(err) == types.KindStorageFailure {
		return exitSysError
	}
	return exitUserError
}

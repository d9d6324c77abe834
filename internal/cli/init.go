package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize binlid configuration and storage",
		Long: `Create the configuration directory with a default config.yaml, then create
the database and apply the schema. Running init again is harmless.`,
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	dbPath, err := a.resolveDBPath()
	if err != nil {
		return systemErr(fmt.Errorf("resolve database path: %w", err))
	}

	// Only persist a db_path the user chose explicitly.
	var configured string
	if a.flags.dbPath != "" {
		configured = dbPath
	}
	configPath := filepath.Join(a.configDir, configFileExt)
	created, err := writeConfigIfMissing(configPath, configured)
	if err != nil {
		return systemErr(err)
	}

	backend, err := a.attachBackend()
	if err != nil {
		return err
	}
	if err := backend.Detach(); err != nil {
		return err
	}

	a.log.WithField("config", configPath).WithField("created", created).Debug("init")
	if a.flags.jsonMode {
		return printJSON(cmd, map[string]string{"config": configPath, "db": dbPath})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "BinLid initialized")
	fmt.Fprintln(out, "  config:", configPath)
	fmt.Fprintln(out, "  db:    ", dbPath)
	return nil
}

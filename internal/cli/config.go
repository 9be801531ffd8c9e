package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/config"
	"github.com/example/worrybox/internal/wire"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage config.json in the settings directory",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.json with the default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := wire.Home()
			if err != nil {
				return err
			}
			path, err := initConfig(dir, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.json")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration (file, .env and environment)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd.OutOrStdout(), wire.Config())
		},
	}
}

// initConfig writes the default configuration to dir and returns its path.
// An existing file is kept unless force is set.
func initConfig(dir string, force bool) (string, error) {
	path := filepath.Join(dir, "config.json")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	cfg := config.Default()
	cfg.DataDir = dir
	if err := config.SaveConfig(dir, cfg); err != nil {
		return "", err
	}
	return path, nil
}

func printConfig(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	if shown.Store.DSN != "" {
		shown.Store.DSN = "********"
	}
	data, err := json.MarshalIndent(shown, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

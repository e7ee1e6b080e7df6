package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"idproof/internal/platform/config"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "idproof",
		Short:         "idproof orchestrates identity-proofing vendor calls",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Dotenv file loaded before configuration")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newInvokeCmd(flags))

	return cmd
}

// load reads the dotenv file, if any, and then the configuration. Variables
// already set in the environment win over the dotenv file.
func (f *rootFlags) load() (*config.Config, error) {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f.envFile, err)
		}
	}
	return config.Load(f.configPath)
}

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write .taskosaur/config.yaml in the current directory with every option
set to its default value.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := filepath.Join(config.ProjectConfigDir, "config.yaml")
	if err := config.WriteDefault(path, initForce); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("configuration already exists at %s, use --force to overwrite", path)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration file:", path)
	fmt.Fprintln(out, "Next: 'taskosaur-ai settings set ai_api_key <key>' and 'taskosaur-ai settings set ai_enabled true'")
	return nil
}

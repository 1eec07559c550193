package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage AI provider settings",
	Long: `Read and change the settings the assistant reads on every turn.

Keys:
  ai_enabled   true or false; chat is refused until this is true
  ai_api_key   provider API key (shown masked)
  ai_model     model name (default from config)
  ai_api_url   provider base URL; the host selects the request format`,
}

var settingsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show every AI setting",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one AI setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one AI setting",
	Example: `  taskosaur-ai settings set ai_enabled true
  taskosaur-ai settings set ai_api_url https://api.openai.com/v1`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove one AI setting so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsGetCmd, settingsSetCmd, settingsUnsetCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range core.EditableSettings {
		value, err := store.Get(context.Background(), key, "")
		if err != nil {
			return err
		}
		if value == "" {
			value = "(unset)"
		} else {
			value = core.DisplaySetting(key, value)
		}
		fmt.Fprintf(w, "%s\t%s\n", key, value)
	}
	return w.Flush()
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !core.IsEditableSetting(key) {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(core.EditableSettings, ", "))
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	value, err := store.Get(context.Background(), key, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), core.DisplaySetting(key, value))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])
	if err := core.ValidateSetting(key, value); err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SetSetting(context.Background(), key, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", key)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !core.IsEditableSetting(key) {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(core.EditableSettings, ", "))
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteSetting(context.Background(), key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s unset\n", key)
	return nil
}

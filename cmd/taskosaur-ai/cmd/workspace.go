package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces the assistant can resolve",
	Long: `Manage the workspace directory used to resolve workspace slugs.

The assistant lists these slugs in its prompt and checks the ones named in
navigateToWorkspace commands against them.`,
	Aliases: []string{"ws"},
}

var workspaceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a workspace",
	Example: `  taskosaur-ai workspace add "Acme Corp"
  taskosaur-ai workspace add Marketing --slug mkt --org org-1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkspaceAdd,
}

var workspaceListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List workspaces",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE:    runWorkspaceList,
}

var (
	workspaceSlug string
	workspaceOrg  string
)

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceAddCmd, workspaceListCmd)

	workspaceCmd.PersistentFlags().StringVar(&workspaceOrg, "org", "", "Organization id")
	workspaceAddCmd.Flags().StringVar(&workspaceSlug, "slug", "", "Slug (default: derived from the name)")
}

func runWorkspaceAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ws, err := store.CreateWorkspace(context.Background(), workspaceOrg, strings.Join(args, " "), workspaceSlug)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Workspace %q created (slug: %s)\n", ws.Name, ws.Slug)
	return nil
}

func runWorkspaceList(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	workspaces, err := store.ListWorkspaces(context.Background(), workspaceOrg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(workspaces) == 0 {
		fmt.Fprintln(out, "No workspaces. Use 'taskosaur-ai workspace add <name>' to create one.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tORGANIZATION")
	for _, ws := range workspaces {
		org := ws.OrganizationID
		if org == "" {
			org = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ws.Slug, ws.Name, org)
	}
	return w.Flush()
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects the assistant can resolve",
	Long: `Manage the project directory used for navigateToProject matching and
for the project slugs cached when a workspace is selected.`,
}

var projectAddCmd = &cobra.Command{
	Use:     "add <workspace-slug> <name>",
	Short:   "Register a project in a workspace",
	Example: `  taskosaur-ai project add acme "Website Redesign"`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:     "list <workspace-slug>",
	Short:   "List the projects of a workspace",
	Aliases: []string{"ls"},
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectList,
}

var projectSlug string

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd, projectListCmd)

	projectAddCmd.Flags().StringVar(&projectSlug, "slug", "", "Slug (default: derived from the name)")
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.CreateProject(context.Background(), args[0], strings.Join(args[1:], " "), projectSlug)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Project %q created in %s (slug: %s)\n", p.Name, args[0], p.Slug)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := store.ListProjects(context.Background(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintf(out, "No projects in %s.\n", args[0])
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\n", p.Slug, p.Name)
	}
	return w.Flush()
}

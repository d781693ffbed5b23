package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vk/refinery/internal/profile"
	"gopkg.in/yaml.v3"
)

func newProfilesCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		asYAML bool
	)
	cmd := &cobra.Command{
		Use:   "profiles [NAME]",
		Short: "List the built-in profile tables or show one of them",
		Long: `Without arguments, profiles lists the built-in resource profile tables.
Given a NAME, or a table file with --file, it prints the per-task profiles.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.started = true
			out := cmd.OutOrStdout()

			var (
				table *profile.Table
				err   error
			)
			switch {
			case file != "" && len(args) > 0:
				return usageError(errors.New("a table name and --file are mutually exclusive"))
			case file != "":
				table, err = profile.LoadFile(file)
			case len(args) > 0:
				table, err = profile.Load(args[0])
			default:
				return listProfiles(out)
			}
			if err != nil {
				return err
			}

			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(table); err != nil {
					return err
				}
				return enc.Close()
			}
			printProfile(out, table)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Show a profile table file instead of a built-in table.")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the table as YAML.")
	return cmd
}

func listProfiles(out io.Writer) error {
	for _, name := range profile.Names() {
		t, err := profile.Load(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == profile.DefaultName {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s %s\n", marker, name, t.Description)
	}
	return nil
}

func printProfile(out io.Writer, t *profile.Table) {
	fmt.Fprintf(out, "%s: %s\n\n", t.Name, t.Description)
	fmt.Fprintf(out, "%-12s %-7s %8s %6s\n", "TASK", "MODE", "WALL(m)", "COUNT")
	for _, kind := range t.Kinds() {
		p := t.Tasks[kind]
		fmt.Fprintf(out, "%-12s %-7s %8d %6d\n", kind, p.Mode, p.MaxWallMinutes, p.Count)
	}
}

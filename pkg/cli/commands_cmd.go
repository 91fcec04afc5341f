package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandEntry describes one CLI command for introspection output.
type CommandEntry struct {
	Path  string      `json:"path" yaml:"path"`
	Group string      `json:"group" yaml:"group"`
	Short string      `json:"short" yaml:"short"`
	Long  string      `json:"long,omitempty" yaml:"long,omitempty"`
	Args  string      `json:"args,omitempty" yaml:"args,omitempty"`
	Flags []FlagEntry `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// FlagEntry describes one CLI flag for introspection output.
type FlagEntry struct {
	Name    string `json:"name" yaml:"name"`
	Short   string `json:"shorthand,omitempty" yaml:"shorthand,omitempty"`
	Type    string `json:"type" yaml:"type"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
	Usage   string `json:"usage,omitempty" yaml:"usage,omitempty"`
}

func newCommandsCmd(a *app) *cobra.Command {
	var (
		filter string
		group  string
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List all available CLI commands with their flags and descriptions",
		Example: `  # List every command
  osident commands

  # Only the config commands, as JSON
  osident commands --group config --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := walkCommands(cmd.Root(), "")

			if group != "" {
				filtered := make([]CommandEntry, 0, len(entries))
				for _, e := range entries {
					if e.Group == group {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if filter != "" {
				lowerFilter := strings.ToLower(filter)
				filtered := make([]CommandEntry, 0, len(entries))
				for _, e := range entries {
					searchText := strings.ToLower(e.Path + " " + e.Short + " " + e.Long)
					if strings.Contains(searchText, lowerFilter) {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}

			return a.render(cmd.OutOrStdout(), entries, func() [][2]string {
				rows := make([][2]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, [2]string{e.Path, e.Short})
				}
				return rows
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Substring search across command names and descriptions")
	cmd.Flags().StringVar(&group, "group", "", "Filter by command group (e.g. config)")

	return cmd
}

// walkCommands collects the leaf commands below cmd.
func walkCommands(cmd *cobra.Command, parentPath string) []CommandEntry {
	var entries []CommandEntry

	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}

		childPath := child.Name()
		if parentPath != "" {
			childPath = parentPath + " " + child.Name()
		}

		if child.HasSubCommands() {
			entries = append(entries, walkCommands(child, childPath)...)
			continue
		}

		group, _, _ := strings.Cut(childPath, " ")
		args := ""
		if useParts := strings.Fields(child.Use); len(useParts) > 1 {
			args = strings.Join(useParts[1:], " ")
		}

		entries = append(entries, CommandEntry{
			Path:  childPath,
			Group: group,
			Short: child.Short,
			Long:  child.Long,
			Args:  args,
			Flags: collectFlags(child),
		})
	}

	return entries
}

func collectFlags(cmd *cobra.Command) []FlagEntry {
	var flags []FlagEntry
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		flags = append(flags, FlagEntry{
			Name:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		})
	})
	return flags
}

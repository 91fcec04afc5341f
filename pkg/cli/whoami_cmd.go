package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"osident/internal/config"
	"osident/internal/domain"
)

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the current user's identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWhoami(cmd, a)
		},
	}
}

func runWhoami(cmd *cobra.Command, a *app) error {
	id, err := a.source.Resolve()
	if err != nil {
		return fmt.Errorf("resolve current user: %w", err)
	}
	return a.render(cmd.OutOrStdout(), id, func() [][2]string {
		return identityRows(id)
	})
}

func identityRows(id *domain.UserIdentity) [][2]string {
	name, ok := id.Username()
	if !ok {
		name = "-"
	}
	uidLabel, gidLabel := "UID", "GID"
	if id.PrimaryID().Kind() == domain.PrincipalSID || id.Partial() {
		uidLabel, gidLabel = "USER SID", "GROUP SID"
	}
	rows := [][2]string{
		{"USERNAME", name},
		{uidLabel, orDash(id.PrimaryID().String())},
		{gidLabel, orDash(id.PrimaryGroupID().String())},
		{"GROUPS", orDash(joinIDs(id.GroupIDs(), ","))},
	}
	if id.Partial() {
		rows = append(rows, [2]string{"PARTIAL", "true"})
	}
	return rows
}

func newGroupsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "Print the current user's group IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.source.Resolve()
			if err != nil {
				return fmt.Errorf("resolve current user: %w", err)
			}
			groups := id.GroupIDs()
			out := cmd.OutOrStdout()
			switch a.format(out) {
			case config.OutputJSON:
				return printJSON(out, groups)
			case config.OutputYAML:
				return printYAML(out, groups)
			default:
				for _, g := range groups {
					if _, err := fmt.Fprintln(out, g.String()); err != nil {
						return err
					}
				}
				return nil
			}
		},
	}
}

func newIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the identity on one line, like id(1)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.source.Resolve()
			if err != nil {
				return fmt.Errorf("resolve current user: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatID(id))
			return err
		},
	}
}

// formatID renders uid=1000(alice) gid=1000 groups=20,1000.
func formatID(id *domain.UserIdentity) string {
	var b strings.Builder
	b.WriteString("uid=")
	b.WriteString(orDash(id.PrimaryID().String()))
	if name, ok := id.Username(); ok {
		fmt.Fprintf(&b, "(%s)", name)
	}
	b.WriteString(" gid=")
	b.WriteString(orDash(id.PrimaryGroupID().String()))
	if groups := id.GroupIDs(); len(groups) > 0 {
		b.WriteString(" groups=")
		b.WriteString(joinIDs(groups, ","))
	}
	return b.String()
}

func joinIDs(ids []domain.PrincipalID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, sep)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

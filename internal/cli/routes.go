package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	portalAuth "github.com/MrEthical07/portalAuth"
	"github.com/MrEthical07/portalAuth/gate"
	"github.com/MrEthical07/portalAuth/role"
)

func newRoutesCmd(a *app) *cobra.Command {
	var (
		as   string
		path string
	)
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table or explain one decision",
		Long: `routes prints the route table. With --path it prints the decision for that
path, as an anonymous visitor or, with --as, as a user holding that role.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := gate.DefaultTable()
			if path == "" {
				printRoutes(a.out, table)
				return nil
			}

			state := portalAuth.State{}
			if as != "" {
				r, err := role.Parse(as)
				if err != nil {
					return fmt.Errorf("--as %q: %w", as, err)
				}
				state.User = &portalAuth.User{ID: "preview", Role: r}
			}
			d := table.Decide(path, state)
			a.out.field("path", path)
			a.out.field("as", orDash(as))
			a.out.field("action", d.Action.String())
			if d.Target != "" {
				a.out.field("target", d.Target)
			}
			if d.Route.Pattern != "" {
				a.out.field("route", d.Route.Pattern)
			}
			for k, v := range d.Params {
				a.out.field(":"+k, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "role to evaluate as: admin, studio or user")
	cmd.Flags().StringVar(&path, "path", "", "path to evaluate")
	return cmd
}

func printRoutes(p printer, table *gate.Table) {
	rows := [][]string{{"PATTERN", "ACCESS", "ROLES", "TITLE"}}
	for _, r := range table.Routes() {
		names := make([]string, 0, len(r.Roles))
		for _, rl := range r.Roles {
			names = append(names, rl.String())
		}
		rows = append(rows, []string{r.Pattern, r.Access.String(), orDash(strings.Join(names, ",")), orDash(r.Title)})
	}
	p.table(rows)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

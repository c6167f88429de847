package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/scout/internal/errors"
	"github.com/mrz1836/scout/internal/router"
)

// AddRoutesCommand adds the routes command to the root command.
func AddRoutesCommand(root *cobra.Command, env *environment) {
	cmd := &cobra.Command{
		Use:   "routes [path]",
		Short: "List the view routes, or resolve a path to its view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				return env.reportError(resolveRoute(env, args[0]))
			}
			return listRoutes(env)
		},
	}
	root.AddCommand(cmd)
}

func listRoutes(env *environment) error {
	routes := router.Routes()
	if env.jsonOutput() {
		return env.output().JSON(routes)
	}
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		rows = append(rows, []string{r.Name, r.Pattern, r.View})
	}
	env.output().Table([]string{"NAME", "PATH", "VIEW"}, rows)
	return nil
}

func resolveRoute(env *environment, path string) error {
	m, ok := router.Resolve(path)
	if !ok {
		return fmt.Errorf("%q: %w", path, errors.ErrRouteNotFound)
	}
	if env.jsonOutput() {
		return env.output().JSON(m)
	}
	env.output().Info(fmt.Sprintf("%s -> %s (%s)", path, m.Route.View, m.Route.Name))
	for k, v := range m.Params {
		env.output().Info(fmt.Sprintf("  %s = %s", k, v))
	}
	return nil
}

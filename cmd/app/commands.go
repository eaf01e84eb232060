package main

import (
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
)

// getCommands returns every subcommand sorted by name so help output is stable.
func getCommands(version string) []*cli.Command {
	cmds := slices.Concat(getSystemCommands(version), getPrincipalCommands())
	slices.SortFunc(cmds, func(a, b *cli.Command) int {
		return strings.Compare(a.Name, b.Name)
	})
	return cmds
}

package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

// MigrateCmd implements the 'migrate' command.
type MigrateCmd struct {
	Source string `arg:"" help:"Legacy single-file configuration"`
	Target string `arg:"" help:"Target directory for the multi-file configuration"`
}

func (m *MigrateCmd) Run(g *Global, _ *CLI) error {
	res, err := repoconfig.Migrate(m.Source, m.Target)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	out := g.out()
	fmt.Fprintf(out, "Migrated %d repositories into %s\n", len(res.Repositories), m.Target)
	fmt.Fprintf(out, "  master: %s\n", filepath.Join(m.Target, res.Master))
	if res.Base != "" {
		fmt.Fprintf(out, "  shared base: %s\n", filepath.Join(m.Target, res.Base))
	}
	for _, r := range res.Repositories {
		fmt.Fprintf(out, "  - %s\n", filepath.Join(m.Target, r))
	}
	return nil
}

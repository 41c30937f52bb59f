package commands

import (
	"fmt"
)

// TestCmd implements the 'test' command.
type TestCmd struct {
	Path string `help:"Configuration path to load (defaults to the configured path)"`
}

func (t *TestCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	cfg, err := newLoader(s, t.Path, g.logger()).Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	out := g.out()
	fmt.Fprintf(out, "Successfully loaded %d repositories:\n\n", cfg.Len())
	for _, name := range cfg.Names() {
		repo := cfg.Repository(name)
		fmt.Fprintf(out, "- %s (%s)\n", name, repo.RepoType)
		fmt.Fprintf(out, "  Module categories: %d\n", repo.ModuleCategories.Len())
		fmt.Fprintf(out, "  Version configs: %d\n", len(repo.VersionConfigs))
		if len(repo.Relationships) > 0 {
			fmt.Fprintf(out, "  Relationships: %d\n", len(repo.Relationships))
		}
		fmt.Fprintln(out)
	}
	return nil
}

package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"git.home.luguber.info/inful/repotag/internal/metrics"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Repo        string `arg:"" help:"Repository name or URL"`
	File        string `arg:"" help:"Repository-relative file path"`
	RepoVersion string `name:"repo-version" help:"Repository version used to select version overrides"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	mgr, err := newManager(s, newMatcher(s), metrics.NoopRecorder{}, g.logger())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	info, ok := mgr.ModuleInfo(c.Repo, c.File, c.RepoVersion)
	if !ok {
		return fmt.Errorf("repository %q is not configured", c.Repo)
	}

	t := table.NewWriter()
	t.SetOutputMirror(g.out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"File", c.File})
	t.AppendRow(table.Row{"Repository", c.Repo})
	t.AppendRow(table.Row{"Version", orNone(c.RepoVersion)})
	t.AppendRow(table.Row{"Repo type", orNone(info.RepoType)})
	t.AppendRow(table.Row{"Categories", orNone(strings.Join(info.Categories, ", "))})
	t.AppendRow(table.Row{"Module type", orNone(info.ModuleType)})
	t.AppendRow(table.Row{"Module name", orNone(info.ModuleName)})
	t.AppendRow(table.Row{"Core", info.IsCore})
	t.AppendRow(table.Row{"Test", info.IsTest})
	t.AppendRow(table.Row{"Docs", info.IsDoc})
	t.Render()
	return nil
}

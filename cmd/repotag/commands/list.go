package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Format string `short:"f" help:"Output format" enum:"table,json" default:"table"`
	Type   string `help:"Only list repositories of this type"`
}

type listEntry struct {
	Name          string `json:"name"`
	RepoType      string `json:"repo_type"`
	Description   string `json:"description,omitempty"`
	Categories    int    `json:"module_categories"`
	Versions      int    `json:"version_configs"`
	Relationships int    `json:"relationships"`
	Source        string `json:"source,omitempty"`
}

func (l *ListCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	cfg, err := newLoader(s, "", g.logger()).Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	var repos []*repoconfig.RepositoryStructure
	if l.Type != "" {
		repos = cfg.RepositoriesByType(l.Type)
	} else {
		for _, name := range cfg.Names() {
			repos = append(repos, cfg.Repository(name))
		}
	}
	entries := make([]listEntry, 0, len(repos))
	for _, r := range repos {
		entries = append(entries, listEntry{
			Name:          r.RepoName,
			RepoType:      r.RepoType,
			Description:   r.Description,
			Categories:    r.ModuleCategories.Len(),
			Versions:      len(r.VersionConfigs),
			Relationships: len(r.Relationships),
			Source:        r.Source,
		})
	}

	if l.Format == formatJSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	t := table.NewWriter()
	t.SetOutputMirror(g.out())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Repository", "Type", "Categories", "Versions", "Description"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Name, e.RepoType, e.Categories, e.Versions, e.Description})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(entries)})
	t.Render()
	return nil
}

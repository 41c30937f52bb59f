package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"git.home.luguber.info/inful/repotag/internal/changeset"
	"git.home.luguber.info/inful/repotag/internal/logfields"
	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/tagging"
)

// TagCmd implements the 'tag' command.
type TagCmd struct {
	Input       string `short:"i" help:"Change set document (JSON or YAML); '-' reads stdin" xor:"source"`
	RepoPath    string `help:"Derive the change set from a local git repository" xor:"source" type:"path"`
	Base        string `help:"Base revision for --repo-path" default:"HEAD~1"`
	Head        string `help:"Head revision for --repo-path" default:"HEAD"`
	Repo        string `help:"Repository URL or name (overrides the change set)"`
	RepoVersion string `name:"repo-version" help:"Repository version (overrides the change set)"`
	Format      string `short:"f" help:"Output format" enum:"json,table" default:"json"`
}

func (t *TagCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	logger := g.logger()

	var provider changeset.Provider
	switch {
	case t.Input != "":
		provider = changeset.NewFileProvider(t.Input)
	case t.RepoPath != "":
		provider = &changeset.GitProvider{
			RepoPath:   t.RepoPath,
			Base:       t.Base,
			Head:       t.Head,
			Repository: changeset.Repository{CloneURL: t.Repo},
			Logger:     logger,
		}
	default:
		return fmt.Errorf("either --input or --repo-path is required")
	}

	ctx := context.Background()
	cs, err := provider.ChangeSet(ctx)
	if err != nil {
		return fmt.Errorf("read change set: %w", err)
	}
	if t.Repo != "" {
		cs.Repository.CloneURL = t.Repo
	}
	if t.RepoVersion != "" {
		cs.Version = t.RepoVersion
	}

	// Registry tagging still works without structure documents.
	var classifier tagging.Classifier
	if mgr, err := newManager(s, newMatcher(s), metrics.NoopRecorder{}, logger); err != nil {
		logger.Warn("Structure configuration unavailable", logfields.Error(err))
	} else {
		classifier = mgr
	}
	proc := tagging.NewProcessor(classifier, loadRegistries(s, logger), tagging.WithLogger(logger))
	res, err := proc.Process(ctx, cs)
	if err != nil {
		return err
	}

	if t.Format == formatTable {
		renderResult(g, res)
		return nil
	}
	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func renderResult(g *Global, res *tagging.Result) {
	out := g.out()
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Impact", "Tags", "Categories", "Module"})
	for _, name := range res.Order {
		ft := res.Files[name]
		t.AppendRow(table.Row{
			name,
			ft.Impact.String(),
			strings.Join(ft.Tags, ", "),
			strings.Join(ft.ModuleCategories, ", "),
			ft.ModuleName,
		})
	}
	t.Render()
	fmt.Fprintf(out, "\nImpact: %s\n", res.Impact)
	fmt.Fprintf(out, "Tags: %s\n", orNone(strings.Join(res.Tags, ", ")))
	if len(res.AffectedModules) > 0 {
		fmt.Fprintf(out, "Affected modules: %d\n", len(res.AffectedModules))
	}
}

package commands

import (
	"fmt"
	"io"
	"strings"

	"git.home.luguber.info/inful/repotag/internal/metrics"
	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Repository string `arg:"" help:"Repository name or URL"`
	Details    bool   `short:"d" help:"Include patterns, paths and version overrides"`
}

func (c *ShowCmd) Run(g *Global, root *CLI) error {
	s, err := root.LoadSettings()
	if err != nil {
		return err
	}
	mgr, err := newManager(s, newMatcher(s), metrics.NoopRecorder{}, g.logger())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	repo := mgr.Repository(c.Repository)
	if repo == nil {
		return fmt.Errorf("repository %q is not configured", c.Repository)
	}

	out := g.out()
	fmt.Fprintf(out, "Repository: %s\n", repo.RepoName)
	fmt.Fprintf(out, "Type: %s\n", repo.RepoType)
	if repo.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", repo.Description)
	}
	fmt.Fprintf(out, "Detection strategy: %s\n", repo.DetectionStrategy)
	fmt.Fprintf(out, "Fetch strategy: %s\n", repo.FetchStrategy)
	fmt.Fprintf(out, "Default version: %s\n", orNone(repo.DefaultVersion))
	if repo.Source != "" {
		fmt.Fprintf(out, "Source: %s\n", repo.Source)
	}

	fmt.Fprintf(out, "\nModule categories (%d):\n", repo.ModuleCategories.Len())
	for _, cat := range repo.ModuleCategories.All() {
		writeCategory(out, cat, c.Details, "  ")
	}

	if len(repo.VersionConfigs) > 0 {
		fmt.Fprintf(out, "\nVersion configs (%d):\n", len(repo.VersionConfigs))
		for _, vc := range repo.VersionConfigs {
			label := vc.Version
			if vc.VersionRange != "" {
				label += " (" + vc.VersionRange + ")"
			}
			fmt.Fprintf(out, "  - %s: %d categories\n", label, vc.ModuleCategories.Len())
			if vc.Notes != "" {
				fmt.Fprintf(out, "    notes: %s\n", vc.Notes)
			}
			if c.Details {
				for _, cat := range vc.ModuleCategories.All() {
					writeCategory(out, cat, true, "    ")
				}
			}
		}
	}

	if rel := mgr.RelatedRepositories(c.Repository); len(rel) > 0 {
		fmt.Fprintf(out, "\nRelationships:\n")
		for _, r := range rel {
			fmt.Fprintf(out, "  - %s: %s\n", r.Type, r.Target)
		}
	}

	if c.Details {
		writePaths(out, "Core paths", repo.CorePaths)
		writePaths(out, "Test paths", repo.TestPaths)
		writePaths(out, "Doc paths", repo.DocPaths)
		writePaths(out, "Exclude paths", repo.ExcludePaths)
	}
	return nil
}

func writeCategory(out io.Writer, cat *repoconfig.ModuleCategory, details bool, indent string) {
	name := cat.Name
	if cat.DisplayName != "" {
		name = fmt.Sprintf("%s (%s)", cat.DisplayName, cat.Name)
	}
	fmt.Fprintf(out, "%s- %s\n", indent, name)
	if !details {
		return
	}
	if len(cat.Paths) > 0 {
		fmt.Fprintf(out, "%s  paths: %s\n", indent, strings.Join(cat.Paths, ", "))
	}
	for _, p := range cat.Patterns {
		fmt.Fprintf(out, "%s  %s: %s\n", indent, p.Type, p.Pattern)
	}
}

func writePaths(out io.Writer, title string, paths []string) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, p := range paths {
		fmt.Fprintf(out, "  - %s\n", p)
	}
}

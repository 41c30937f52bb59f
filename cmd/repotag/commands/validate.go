package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/repotag/internal/repoconfig"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	File      string `help:"Validate a single document"`
	Directory string `help:"Validate every document below a directory (defaults to <config>/repositories)"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	validator := repoconfig.NewValidator(g.logger())
	out := g.out()

	if v.File != "" {
		report := validator.ValidateFile(v.File)
		if report.Valid() {
			fmt.Fprintf(out, "✅ %s is valid\n", v.File)
			return nil
		}
		fmt.Fprintf(out, "❌ %s has errors:\n", v.File)
		for _, issue := range report.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
		return fmt.Errorf("%s is invalid", v.File)
	}

	dir := v.Directory
	if dir == "" {
		s, err := root.LoadSettings()
		if err != nil {
			return err
		}
		dir = defaultDocumentDir(s.ConfigPath)
	}
	reports, err := validator.ValidateDirectory(dir)
	if err != nil {
		return err
	}
	valid := 0
	for _, r := range reports {
		if r.Valid() {
			valid++
		}
	}
	fmt.Fprintf(out, "\nValidation Results: %d/%d files valid\n\n", valid, len(reports))
	for _, r := range reports {
		if r.Valid() {
			continue
		}
		fmt.Fprintf(out, "❌ %s:\n", r.Path)
		for _, issue := range r.Issues {
			fmt.Fprintf(out, "  - %s\n", issue)
		}
	}
	if valid != len(reports) {
		return fmt.Errorf("%d of %d documents invalid", len(reports)-valid, len(reports))
	}
	return nil
}

// defaultDocumentDir prefers the repositories/ directory of a config root.
func defaultDocumentDir(configPath string) string {
	dir := filepath.Join(configPath, repoconfig.RepositoriesDir)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return configPath
}

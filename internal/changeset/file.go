package changeset

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// document accepts both the flat layout and the nested code_changes form.
type document struct {
	ChangeSet   `yaml:",inline"`
	CodeChanges *struct {
		Files []FileChange `yaml:"files"`
	} `yaml:"code_changes,omitempty"`
}

// FileProvider reads a change set from a JSON or YAML document. The path
// "-" reads from Stdin.
type FileProvider struct {
	Path  string
	Stdin io.Reader
}

// NewFileProvider returns a provider for path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path, Stdin: os.Stdin}
}

// ChangeSet implements Provider.
func (p *FileProvider) ChangeSet(_ context.Context) (*ChangeSet, error) {
	var (
		data []byte
		err  error
	)
	if p.Path == "-" {
		if p.Stdin == nil {
			return nil, fmt.Errorf("no input reader for change set")
		}
		data, err = io.ReadAll(p.Stdin)
	} else {
		data, err = os.ReadFile(p.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read change set %s: %w", p.Path, err)
	}
	return Decode(data)
}

// Decode parses a change set document. JSON input is accepted since it is
// valid YAML.
func Decode(data []byte) (*ChangeSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse change set: %w", err)
	}
	cs := doc.ChangeSet
	if len(cs.Files) == 0 && doc.CodeChanges != nil {
		cs.Files = doc.CodeChanges.Files
	}
	return &cs, nil
}

// Package changeset describes the files touched by a change and provides
// ways to obtain them: from a JSON or YAML document, or from a local git
// repository.
package changeset

import (
	"context"
	"slices"
)

// Status is the kind of change applied to a file.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusRemoved  Status = "removed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains([]Status{StatusAdded, StatusModified, StatusRemoved}, s)
}

// FileChange is one changed file.
type FileChange struct {
	Filename  string `json:"filename" yaml:"filename"`
	Status    Status `json:"status" yaml:"status"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
}

// Repository identifies the repository a change belongs to.
type Repository struct {
	CloneURL      string `json:"clone_url" yaml:"clone_url"`
	RepoType      string `json:"repo_type,omitempty" yaml:"repo_type,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty" yaml:"default_branch,omitempty"`
}

// ChangeSet is the set of files changed in one repository.
type ChangeSet struct {
	Repository Repository `json:"repository" yaml:"repository"`
	// Version overrides the repository version when set.
	Version string       `json:"version,omitempty" yaml:"version,omitempty"`
	Files   []FileChange `json:"files" yaml:"files"`
}

// Provider yields a change set.
type Provider interface {
	ChangeSet(ctx context.Context) (*ChangeSet, error)
}

// EffectiveVersion picks the version used for classification: the explicit
// version, then the repository version, then the default branch.
func (c *ChangeSet) EffectiveVersion() string {
	switch {
	case c.Version != "":
		return c.Version
	case c.Repository.Version != "":
		return c.Repository.Version
	default:
		return c.Repository.DefaultBranch
	}
}

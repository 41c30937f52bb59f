package changeset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/repotag/internal/logfields"
)

const (
	DefaultBase = "HEAD~1"
	DefaultHead = "HEAD"
)

// GitProvider derives a change set from the diff between two revisions of a
// local repository.
type GitProvider struct {
	RepoPath string
	Base     string
	Head     string
	// Repository fills in fields the git data cannot provide; an empty
	// CloneURL is taken from the origin remote.
	Repository Repository
	Logger     *slog.Logger
}

// ChangeSet implements Provider.
func (g *GitProvider) ChangeSet(ctx context.Context) (*ChangeSet, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := git.PlainOpenWithOptions(g.RepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	base, err := commitAt(repo, orDefault(g.Base, DefaultBase))
	if err != nil {
		return nil, err
	}
	head, err := commitAt(repo, orDefault(g.Head, DefaultHead))
	if err != nil {
		return nil, err
	}
	patch, err := base.PatchContext(ctx, head)
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", base.Hash, head.Hash, err)
	}

	cs := &ChangeSet{Repository: g.Repository}
	if cs.Repository.CloneURL == "" {
		cs.Repository.CloneURL = originURL(repo)
	}
	stats := map[string]object.FileStat{}
	for _, st := range patch.Stats() {
		stats[st.Name] = st
	}
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		fc := FileChange{Status: StatusModified}
		switch {
		case from == nil && to != nil:
			fc.Status, fc.Filename = StatusAdded, to.Path()
		case to == nil && from != nil:
			fc.Status, fc.Filename = StatusRemoved, from.Path()
		case to != nil:
			fc.Filename = to.Path()
		default:
			continue
		}
		if st, ok := stats[statName(from, to)]; ok {
			fc.Additions, fc.Deletions = st.Addition, st.Deletion
		}
		cs.Files = append(cs.Files, fc)
	}
	logger.Debug("Collected git change set",
		logfields.Repository(cs.Repository.CloneURL),
		slog.String("base", base.Hash.String()),
		slog.String("head", head.Hash.String()),
		logfields.Count(len(cs.Files)))
	return cs, nil
}

func commitAt(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("get commit object %s: %w", rev, err)
	}
	return commit, nil
}

// statName mirrors the name object.Patch.Stats reports for a file pair.
func statName(from, to diff.File) string {
	switch {
	case from == nil:
		return to.Path()
	case to == nil:
		return from.Path()
	case from.Path() != to.Path():
		return from.Path() + " => " + to.Path()
	}
	return from.Path()
}

func originURL(repo *git.Repository) string {
	remote, err := repo.Remote("origin")
	if err != nil {
		return ""
	}
	if urls := remote.Config().URLs; len(urls) > 0 {
		return urls[0]
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

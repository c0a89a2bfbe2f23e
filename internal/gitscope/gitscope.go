// Package gitscope resolves the "changed" document scope from a git work tree.
package gitscope

import (
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/vault"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// ChangedMarkdown returns the markdown files under root that are modified,
// added, renamed or untracked in the git work tree containing root. Paths
// are slash separated and relative to root. Deleted files are skipped.
func ChangedMarkdown(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to resolve vault root").Build()
	}
	if resolved, rerr := filepath.EvalSymlinks(absRoot); rerr == nil {
		absRoot = resolved
	}

	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to open git repository").
			WithContext("path", absRoot).Build()
	}

	w, err := repo.Worktree()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to get git worktree").Build()
	}

	status, err := w.Status()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryGit, "failed to get git status").Build()
	}

	repoRoot := w.Filesystem.Root()
	if resolved, rerr := filepath.EvalSymlinks(repoRoot); rerr == nil {
		repoRoot = resolved
	}

	var out []string
	for file, st := range status {
		if !changed(st) || !vault.IsMarkdown(file) {
			continue
		}
		rel, err := filepath.Rel(absRoot, filepath.Join(repoRoot, filepath.FromSlash(file)))
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

func changed(st *git.FileStatus) bool {
	if st.Worktree == git.Deleted || st.Staging == git.Deleted {
		return false
	}
	for _, code := range []git.StatusCode{st.Worktree, st.Staging} {
		switch code {
		case git.Modified, git.Added, git.Renamed, git.Copied, git.Untracked:
			return true
		}
	}
	return false
}

// GitDir returns the git directory of the repository containing start.
// Linked worktrees resolve to the common directory, where hooks live.
func GitDir(start string) (string, error) {
	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryGit, "not in a git repository").
			WithContext("path", start).Build()
	}
	fs, ok := repo.Storer.(*filesystem.Storage)
	if !ok {
		return "", ferrors.NewError(ferrors.CategoryGit, "repository has no git directory on disk").Build()
	}
	return fs.Filesystem().Root(), nil
}

// Package sync commits dashboard edits to the workspace's git repository.
package sync

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	stdsync "sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// ErrNotInRepo is returned for files outside any git worktree.
var ErrNotInRepo = errors.New("file is not inside a git repository")

// GitManager handles git operations
type GitManager struct {
	AuthorName  string
	AuthorEmail string
	// Push sends each commit to the default remote.
	Push   bool
	SSHKey string
	Logger *slog.Logger
	Now    func() time.Time

	mu stdsync.Mutex
}

// NewGitManager creates a new GitManager
func NewGitManager(authorName, authorEmail string, logger *slog.Logger) *GitManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitManager{
		AuthorName:  authorName,
		AuthorEmail: authorEmail,
		Logger:      logger,
		Now:         time.Now,
	}
}

// CommitFile commits the current content of path to the repository that
// contains it. It reports false when the file had no changes.
func (g *GitManager) CommitFile(path, message string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	r, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, fmt.Errorf("%w: %s", ErrNotInRepo, path)
		}
		return false, fmt.Errorf("failed to open repo: %w", err)
	}

	w, err := r.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	root := w.Filesystem.Root()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, fmt.Errorf("%w: %s", ErrNotInRepo, path)
	}
	rel = filepath.ToSlash(rel)

	if _, err := w.Add(rel); err != nil {
		return false, fmt.Errorf("failed to add %s: %w", rel, err)
	}
	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read status: %w", err)
	}
	if fs, ok := status[rel]; !ok || fs.Staging == git.Unmodified {
		return false, nil
	}

	if message == "" {
		message = fmt.Sprintf("Auto-sync: %s", g.Now().Format(time.RFC3339))
	}
	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  g.AuthorName,
			Email: g.AuthorEmail,
			When:  g.Now(),
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	g.Logger.Info("committed", "file", rel, "commit", hash.String()[:8])

	if g.Push {
		if err := g.push(r); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (g *GitManager) push(r *git.Repository) error {
	opts := &git.PushOptions{}
	if g.SSHKey != "" {
		publicKeys, err := ssh.NewPublicKeysFromFile("git", g.SSHKey, "")
		if err != nil {
			g.Logger.Warn("could not load SSH key, pushing without explicit auth", "key", g.SSHKey, "error", err)
		} else {
			opts.Auth = publicKeys
		}
	}

	if err := r.Push(opts); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

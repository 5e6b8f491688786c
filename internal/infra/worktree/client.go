// Package worktree provides dedicated checkouts for worktree-isolated epics.
package worktree

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tracklet/trackd/internal/domain"
)

// Client manages git worktrees under the trackd data directory.
type Client struct {
	repoRoot    string // Main repository root
	worktreeDir string // Directory where worktrees are created
}

// NewClient creates a new worktree client. worktreeDir is typically
// <dataDir>/worktrees.
func NewClient(repoRoot, worktreeDir string) *Client {
	return &Client{
		repoRoot:    repoRoot,
		worktreeDir: worktreeDir,
	}
}

// Ensure Client implements domain.WorktreeManager interface.
var _ domain.WorktreeManager = (*Client)(nil)

// branchDir normalizes a branch name into a filesystem-safe directory name.
func branchDir(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// Ensure creates a worktree for the branch, or returns the existing one.
// If the branch doesn't exist yet it is created from baseBranch.
func (c *Client) Ensure(branch, baseBranch string) (string, error) {
	path := filepath.Join(c.worktreeDir, branchDir(branch))

	exists, err := c.Exists(branch)
	if err != nil {
		return "", fmt.Errorf("check worktree exists: %w", err)
	}
	if exists {
		return path, nil
	}

	branchExists, err := c.branchExists(branch)
	if err != nil {
		return "", fmt.Errorf("check branch exists: %w", err)
	}

	var args []string
	if branchExists {
		args = []string{"worktree", "add", path, branch}
	} else {
		args = []string{"worktree", "add", "-b", branch, path, baseBranch}
	}

	out, err := c.git(args...)
	if err != nil {
		// A registered-but-missing worktree directory blocks the add; prune
		// stale entries and retry once.
		if strings.Contains(out, "already registered") {
			if _, pruneErr := c.git("worktree", "prune"); pruneErr != nil {
				return "", fmt.Errorf("prune stale worktrees: %w", pruneErr)
			}
			if out, err = c.git(args...); err != nil {
				return "", fmt.Errorf("create worktree after prune: %w: %s", err, out)
			}
			return path, nil
		}
		return "", fmt.Errorf("create worktree: %w: %s", err, out)
	}
	return path, nil
}

// Exists checks if a worktree is registered for the branch.
func (c *Client) Exists(branch string) (bool, error) {
	out, err := c.git("worktree", "list", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("list worktrees: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "branch refs/heads/"+branch {
			return true, nil
		}
	}
	return false, nil
}

// Remove deletes the worktree for a branch. The branch itself is untouched.
func (c *Client) Remove(branch string) error {
	path := filepath.Join(c.worktreeDir, branchDir(branch))
	if out, err := c.git("worktree", "remove", "--force", path); err != nil {
		return fmt.Errorf("remove worktree: %w: %s", err, out)
	}
	return nil
}

func (c *Client) branchExists(branch string) (bool, error) {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = c.repoRoot
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("check branch existence: %w", err)
}

func (c *Client) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.repoRoot
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

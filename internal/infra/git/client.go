// Package git provides the version-control adapter.
//
// All mutations shell out to the git binary with argument arrays; no shell
// interpreter is ever involved, so ticket titles flowing into branch names
// cannot inject commands.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/tracklet/trackd/internal/domain"
)

// Client executes git commands against caller-supplied working directories.
// The directory is threaded through every call rather than held as ambient
// state, so worktree-isolated epics and the main checkout never interfere.
type Client struct{}

// NewClient creates a new git client.
func NewClient() *Client {
	return &Client{}
}

// Ensure Client implements domain.Git interface.
var _ domain.Git = (*Client)(nil)

// run executes a git command in dir and returns its stdout. On failure the
// error carries git's own stderr verbatim.
func (c *Client) run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the branch HEAD points at in dir.
func (c *Client) CurrentBranch(dir string) (string, error) {
	out, err := c.run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return out, nil
}

// BranchExists checks if a local branch exists.
func (c *Client) BranchExists(dir, branch string) (bool, error) {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = dir
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	// Exit code 1 means ref not found
	if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("check branch existence: %w", err)
}

// Checkout switches dir to an existing branch.
func (c *Client) Checkout(dir, branch string) error {
	if _, err := c.run(dir, "checkout", branch); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

// CreateBranch creates branch from the current HEAD and checks it out.
func (c *Client) CreateBranch(dir, branch string) error {
	if _, err := c.run(dir, "checkout", "-b", branch); err != nil {
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch deletes a local branch.
func (c *Client) DeleteBranch(dir, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := c.run(dir, "branch", flag, branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}

// Push pushes a branch to the origin remote, setting upstream. The context
// bounds the only network-bound git operation the engine performs.
func (c *Client) Push(ctx context.Context, dir, branch string) error {
	cmd := exec.CommandContext(ctx, "git", "push", "-u", "origin", branch)
	cmd.Dir = dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("push %s: %w", branch, err)
		}
		return fmt.Errorf("push %s: %w: %s", branch, err, msg)
	}
	return nil
}

// DiffSummary reports commits and changed files on branch relative to base.
// Used for reporting only, never as a gating condition.
func (c *Client) DiffSummary(dir, base, branch string) (*domain.DiffSummary, error) {
	logOut, err := c.run(dir, "log", "--format=%s", base+".."+branch)
	if err != nil {
		return nil, fmt.Errorf("log %s..%s: %w", base, branch, err)
	}
	filesOut, err := c.run(dir, "diff", "--name-only", base+"..."+branch)
	if err != nil {
		return nil, fmt.Errorf("diff %s...%s: %w", base, branch, err)
	}
	return &domain.DiffSummary{
		Commits: splitNonEmpty(logOut),
		Files:   splitNonEmpty(filesOut),
	}, nil
}

func splitNonEmpty(out string) []string {
	if out == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/tracklet/trackd/internal/domain"
)

// VerifyWorkTree checks that dir is inside a git working tree. Verification
// goes through go-git rather than the git binary so a missing or corrupt
// repository is distinguishable from a missing git installation.
func (c *Client) VerifyWorkTree(dir string) error {
	_, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return fmt.Errorf("%s: %w", dir, domain.ErrNotGitRepository)
		}
		return fmt.Errorf("open repository %s: %w", dir, err)
	}
	return nil
}

// ListBranches returns all local branch names, via go-git refs.
func (c *Client) ListBranches(dir string) ([]string, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", dir, err)
	}
	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer iter.Close()

	var branches []string
	for {
		ref, err := iter.Next()
		if err != nil {
			break
		}
		branches = append(branches, ref.Name().Short())
	}
	return branches, nil
}

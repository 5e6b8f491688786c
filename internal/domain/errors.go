package domain

import "errors"

// Domain errors.
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrEpicNotFound        = errors.New("epic not found")
	ErrProjectNotFound     = errors.New("project not found")
	ErrFindingNotFound     = errors.New("finding not found")
	ErrProjectPathMissing  = errors.New("project path does not exist")
	ErrNotGitRepository    = errors.New("project path is not a git working tree")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidSeverity     = errors.New("invalid finding severity")
	ErrFindingAlreadyFixed = errors.New("finding already fixed")
	ErrReviewGateBlocked   = errors.New("open blocking findings prevent human review")
	ErrTooFewDemoSteps     = errors.New("demo script requires at least 3 verification steps")
	ErrEpicBranchMissing   = errors.New("recorded epic branch no longer exists; re-run epic initialization")
	ErrNoTrunkBranch       = errors.New("no trunk branch found (tried main, master)")
	ErrEmptyTitle          = errors.New("title cannot be empty")
	ErrNotInitialized      = errors.New("trackd not initialized (run 'trackd init' first)")
	ErrAlreadyInitialized  = errors.New("trackd already initialized")
)

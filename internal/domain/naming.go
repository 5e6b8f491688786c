package domain

import (
	"path/filepath"
	"strings"
)

const (
	branchPrefix     = "feature/"
	epicBranchPrefix = "feature/epic-"
	shortIDLen       = 8
	maxSlugLen       = 50
)

// ShortID returns the first 8 characters of an entity id. Branch names embed
// this rather than the full uuid; other tooling greps for the format.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// Slugify normalizes a title into a branch-safe slug of at most 50
// characters. Titles flow into branch names via argument-array git
// invocations only, so the slug is a readability concern, not an escaping
// one.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// TicketBranchName returns the branch name for a standalone ticket.
// Format: feature/<8-char-id>-<slug>
func TicketBranchName(ticketID, title string) string {
	return branchPrefix + ShortID(ticketID) + "-" + Slugify(title)
}

// EpicBranchName returns the shared branch name for an epic.
// Format: feature/epic-<8-char-id>-<slug>
func EpicBranchName(epicID, title string) string {
	return epicBranchPrefix + ShortID(epicID) + "-" + Slugify(title)
}

// DataDir returns the trackd data directory for a project root.
func DataDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".trackd")
}

// StorePath returns the path to the SQLite database.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, "trackd.db")
}

// LockPath returns the path to the advisory process lock file.
func LockPath(dataDir string) string {
	return filepath.Join(dataDir, "trackd.lock")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "trackd.log")
}

// TicketLogPath returns the path to a ticket's log file.
func TicketLogPath(dataDir, ticketID string) string {
	return filepath.Join(dataDir, "logs", "ticket-"+ShortID(ticketID)+".log")
}

package domain

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		expect string
	}{
		{"simple", "Add login form", "add-login-form"},
		{"punctuation", "Fix: crash on start!", "fix-crash-on-start"},
		{"unicode", "Support émojis 🎉 in titles", "support-mojis-in-titles"},
		{"leading symbols", "  [WIP] cleanup", "wip-cleanup"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.expect {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.expect)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	slug := Slugify(strings.Repeat("very long title ", 10))
	if len(slug) > 50 {
		t.Errorf("slug length = %d, want <= 50", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("slug %q ends with hyphen", slug)
	}
}

func TestTicketBranchName(t *testing.T) {
	got := TicketBranchName("a1b2c3d4-0000-0000-0000-000000000000", "Add login form")
	want := "feature/a1b2c3d4-add-login-form"
	if got != want {
		t.Errorf("TicketBranchName = %q, want %q", got, want)
	}

	// Deterministic: same inputs, same branch.
	again := TicketBranchName("a1b2c3d4-0000-0000-0000-000000000000", "Add login form")
	if got != again {
		t.Errorf("TicketBranchName not deterministic: %q != %q", got, again)
	}
}

func TestEpicBranchName(t *testing.T) {
	got := EpicBranchName("deadbeef-0000-0000-0000-000000000000", "Auth overhaul")
	want := "feature/epic-deadbeef-auth-overhaul"
	if got != want {
		t.Errorf("EpicBranchName = %q, want %q", got, want)
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID(abc) = %q", got)
	}
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("ShortID = %q, want 01234567", got)
	}
}

package domain

import "testing"

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		to     Status
		expect bool
	}{
		// From backlog
		{"backlog -> ready", StatusBacklog, StatusReady, true},
		{"backlog -> in_progress", StatusBacklog, StatusInProgress, true},
		{"backlog -> ai_review", StatusBacklog, StatusAIReview, false},
		{"backlog -> done", StatusBacklog, StatusDone, false},

		// From ready
		{"ready -> in_progress", StatusReady, StatusInProgress, true},
		{"ready -> backlog", StatusReady, StatusBacklog, true},
		{"ready -> human_review", StatusReady, StatusHumanReview, false},

		// From in_progress
		{"in_progress -> ai_review", StatusInProgress, StatusAIReview, true},
		{"in_progress -> human_review", StatusInProgress, StatusHumanReview, false},
		{"in_progress -> done", StatusInProgress, StatusDone, false},
		{"in_progress -> backlog", StatusInProgress, StatusBacklog, false},

		// From ai_review (fix loop back to in_progress)
		{"ai_review -> in_progress", StatusAIReview, StatusInProgress, true},
		{"ai_review -> human_review", StatusAIReview, StatusHumanReview, true},
		{"ai_review -> done", StatusAIReview, StatusDone, false},

		// From human_review
		{"human_review -> done", StatusHumanReview, StatusDone, true},
		{"human_review -> in_progress", StatusHumanReview, StatusInProgress, true},
		{"human_review -> ai_review", StatusHumanReview, StatusAIReview, false},

		// From done (terminal)
		{"done -> backlog", StatusDone, StatusBacklog, false},
		{"done -> in_progress", StatusDone, StatusInProgress, false},
		{"done -> done", StatusDone, StatusDone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.CanTransitionTo(tt.to)
			if got != tt.expect {
				t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.expect)
			}
		})
	}
}

func TestStatus_CanStartWork(t *testing.T) {
	tests := []struct {
		status Status
		expect bool
	}{
		{StatusBacklog, true},
		{StatusReady, true},
		{StatusAIReview, true},
		{StatusInProgress, false},
		{StatusHumanReview, false},
		{StatusDone, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.CanStartWork(); got != tt.expect {
				t.Errorf("CanStartWork(%s) = %v, want %v", tt.status, got, tt.expect)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", s)
		}
	}
	if Status("archived").IsValid() {
		t.Error("IsValid(archived) = true, want false")
	}
}

func TestPhase_IsValid(t *testing.T) {
	for _, p := range []Phase{PhaseImplementation, PhaseAIReview, PhaseHumanReview} {
		if !p.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", p)
		}
	}
	if Phase("review").IsValid() {
		t.Error("IsValid(review) = true, want false")
	}
}

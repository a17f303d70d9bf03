package model

import "time"

// BranchKey identifies the unit of mutual exclusion for runs
type BranchKey struct {
	Repository string // Full name, e.g. owner/repo
	Branch     string
}

func (k BranchKey) String() string {
	return k.Repository + "@" + k.Branch
}

// RunRequest describes one pipeline run
type RunRequest struct {
	Key      BranchKey
	CloneURL string
	SHA      string
	Identity *BotIdentity
}

// Outcome is the terminal state of a pipeline run
type Outcome string

const (
	OutcomePushed   Outcome = "pushed"
	OutcomeNoOp     Outcome = "noop"
	OutcomeConflict Outcome = "conflict"
	OutcomeFailed   Outcome = "failed"
)

// Reaction returns the terminal reaction reporting the outcome
func (o Outcome) Reaction() ReactionContent {
	switch o {
	case OutcomePushed:
		return ReactionThumbsUp
	case OutcomeNoOp:
		return ReactionThumbsDown
	default:
		return ReactionConfused
	}
}

// RunResult is returned by the pipeline instead of an error for expected outcomes
type RunResult struct {
	Outcome  Outcome
	Err      error // set for OutcomeConflict and OutcomeFailed
	Duration time.Duration
}

package model

import (
	"fmt"
	"time"
)

// InstallationToken is a short-lived access token scoped to one installation
type InstallationToken struct {
	InstallationID int64
	Token          string `masq:"secret"`
	ExpiresAt      time.Time
}

// BotIdentity is the git identity used for commits and pushes
type BotIdentity struct {
	Name  string
	Email string
	Token string `masq:"secret"`
}

// NoReplyEmail returns the GitHub no-reply address of an account
func NoReplyEmail(userID int64, login string) string {
	return fmt.Sprintf("%d+%s@users.noreply.github.com", userID, login)
}

// PullRequest holds the fields of a pull request the pipeline needs
type PullRequest struct {
	Number              int
	HeadRef             string
	HeadSHA             string
	HeadRepo            Repository
	BaseRepo            Repository
	MaintainerCanModify bool
}

// AllowsModification reports whether the bot may push to the head branch.
// Same-repository branches are always writable; forks only when the author
// allows edits by maintainers.
func (pr *PullRequest) AllowsModification() bool {
	if pr.HeadRepo.ID == pr.BaseRepo.ID {
		return true
	}
	return pr.MaintainerCanModify
}

// User is a GitHub account
type User struct {
	ID    int64
	Login string
}

// ReactionContent is the emoji of a comment reaction
type ReactionContent string

const (
	ReactionEyes       ReactionContent = "eyes"
	ReactionThumbsUp   ReactionContent = "+1"
	ReactionThumbsDown ReactionContent = "-1"
	ReactionHooray     ReactionContent = "hooray"
	ReactionConfused   ReactionContent = "confused"
)

// Reaction is an existing reaction on a comment
type Reaction struct {
	ID      int64
	User    string
	Content ReactionContent
}

package model

import "time"

// CommentAction is the action of an issue_comment webhook
type CommentAction string

const (
	CommentCreated CommentAction = "created"
	CommentEdited  CommentAction = "edited"
	CommentDeleted CommentAction = "deleted"
)

// IssueState is the state of the issue or pull request a comment belongs to
type IssueState string

const (
	IssueOpen   IssueState = "open"
	IssueClosed IssueState = "closed"
)

// Repository identifies a GitHub repository
type Repository struct {
	ID       int64
	Owner    string
	Name     string
	FullName string
	CloneURL string
}

// CommentEvent represents an issue_comment webhook received from GitHub
type CommentEvent struct {
	ID                string        // Retrieved from X-GitHub-Delivery header
	Action            CommentAction // created, edited or deleted
	CommentID         int64
	Body              string
	PreviousBody      *string // Body before an edit, nil if the body was not changed
	Author            string
	AuthorAssociation AuthorAssociation
	IssueNumber       int
	IsPullRequest     bool
	IssueState        IssueState
	Repository        Repository
	InstallationID    int64
	ReceivedAt        time.Time
}

package model

import "strings"

// TriggerPhrase is the exact comment body that starts a run
const TriggerPhrase = "/spotless"

// CommentEventType is the only webhook category carrying commands
const CommentEventType = "issue_comment"

// AuthorAssociation is the relationship of a commenter to the repository
type AuthorAssociation string

const (
	AssociationCollaborator         AuthorAssociation = "COLLABORATOR"
	AssociationContributor          AuthorAssociation = "CONTRIBUTOR"
	AssociationFirstTimer           AuthorAssociation = "FIRST_TIMER"
	AssociationFirstTimeContributor AuthorAssociation = "FIRST_TIME_CONTRIBUTOR"
	AssociationMannequin            AuthorAssociation = "MANNEQUIN"
	AssociationMember               AuthorAssociation = "MEMBER"
	AssociationNone                 AuthorAssociation = "NONE"
	AssociationOwner                AuthorAssociation = "OWNER"
)

// CanRunCommand reports whether the association is trusted to run the command
func (a AuthorAssociation) CanRunCommand() bool {
	switch a {
	case AssociationOwner, AssociationMember, AssociationCollaborator:
		return true
	default:
		return false
	}
}

// RejectReason explains why an event is not an actionable command
type RejectReason string

const (
	ReasonNone           RejectReason = ""
	ReasonUnhandledEvent RejectReason = "unhandled_event"
	ReasonNotPullRequest RejectReason = "not_pull_request"
	ReasonDeleted        RejectReason = "deleted"
	ReasonNoTrigger      RejectReason = "no_trigger"
	ReasonUnchangedEdit  RejectReason = "unchanged_edit"
	ReasonClosed         RejectReason = "closed"
	ReasonUnauthorized   RejectReason = "unauthorized"
)

// Decision is the result of command classification
type Decision struct {
	Actionable bool
	Reason     RejectReason
}

func accept() Decision {
	return Decision{Actionable: true}
}

func reject(r RejectReason) Decision {
	return Decision{Reason: r}
}

// ClassifyCategory checks the X-GitHub-Event header value
func ClassifyCategory(eventType string) Decision {
	if eventType != CommentEventType {
		return reject(ReasonUnhandledEvent)
	}
	return accept()
}

// Classify decides whether the comment is the supported command
func (e *CommentEvent) Classify() Decision {
	if !e.IsPullRequest {
		return reject(ReasonNotPullRequest)
	}

	switch e.Action {
	case CommentDeleted:
		return reject(ReasonDeleted)
	case CommentCreated, CommentEdited:
	default:
		return reject(ReasonNoTrigger)
	}

	if strings.TrimSpace(e.Body) != TriggerPhrase {
		return reject(ReasonNoTrigger)
	}

	// An edit only retriggers when it changes the body into the phrase
	if e.Action == CommentEdited {
		if e.PreviousBody == nil || strings.TrimSpace(*e.PreviousBody) == TriggerPhrase {
			return reject(ReasonUnchangedEdit)
		}
	}

	if e.IssueState != IssueOpen {
		return reject(ReasonClosed)
	}

	if !e.AuthorAssociation.CanRunCommand() {
		return reject(ReasonUnauthorized)
	}

	return accept()
}

package github

import (
	"context"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
)

// EventProcessor processes GitHub webhook events
type EventProcessor struct {
	commandUC interfaces.CommandUseCase
	now       func() time.Time
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(commandUC interfaces.CommandUseCase) *EventProcessor {
	return &EventProcessor{
		commandUC: commandUC,
		now:       time.Now,
	}
}

// ProcessEvent processes a decoded GitHub webhook payload
func (p *EventProcessor) ProcessEvent(ctx context.Context, deliveryID string, payload any) error {
	switch e := payload.(type) {
	case *github.IssueCommentEvent:
		event, err := p.commentEvent(deliveryID, e)
		if err != nil {
			return err
		}
		return p.commandUC.HandleComment(ctx, event)

	default:
		ctxlog.From(ctx).Info("Ignoring unsupported payload", "delivery_id", deliveryID)
		return nil
	}
}

// commentEvent extracts the fields used by the command from an issue_comment payload
func (p *EventProcessor) commentEvent(deliveryID string, e *github.IssueCommentEvent) (*model.CommentEvent, error) {
	if e.Issue == nil || e.Comment == nil || e.Repo == nil {
		return nil, goerr.New("missing issue, comment or repository in issue_comment event",
			goerr.V("delivery_id", deliveryID),
			goerr.T(types.ErrTagInvalidPayload),
		)
	}

	repo := e.GetRepo()
	event := &model.CommentEvent{
		ID:                deliveryID,
		Action:            model.CommentAction(e.GetAction()),
		CommentID:         e.GetComment().GetID(),
		Body:              e.GetComment().GetBody(),
		Author:            e.GetComment().GetUser().GetLogin(),
		AuthorAssociation: model.AuthorAssociation(strings.ToUpper(e.GetComment().GetAuthorAssociation())),
		IssueNumber:       e.GetIssue().GetNumber(),
		IsPullRequest:     e.GetIssue().IsPullRequest(),
		IssueState:        model.IssueState(e.GetIssue().GetState()),
		Repository: model.Repository{
			ID:       repo.GetID(),
			Owner:    repo.GetOwner().GetLogin(),
			Name:     repo.GetName(),
			FullName: repo.GetFullName(),
			CloneURL: repo.GetCloneURL(),
		},
		InstallationID: e.GetInstallation().GetID(),
		ReceivedAt:     p.now(),
	}

	if body := e.GetChanges().GetBody(); body != nil {
		event.PreviousBody = body.From
	}

	if event.Repository.Owner == "" || event.Repository.Name == "" {
		return nil, goerr.New("missing repository owner or name",
			goerr.V("delivery_id", deliveryID),
			goerr.V("full_name", event.Repository.FullName),
			goerr.T(types.ErrTagInvalidPayload),
		)
	}

	return event, nil
}

package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// reporter keeps at most one reaction of the bot on the triggering comment
type reporter struct {
	client    interfaces.GitHubClient
	owner     string
	repo      string
	commentID int64
	botLogin  string
}

func newReporter(client interfaces.GitHubClient, event *model.CommentEvent, identity *model.BotIdentity) *reporter {
	return &reporter{
		client:    client,
		owner:     event.Repository.Owner,
		repo:      event.Repository.Name,
		commentID: event.CommentID,
		botLogin:  identity.Name,
	}
}

// React removes previous reactions of the bot and posts content. Removal is
// best-effort; only a failure to post is returned.
func (x *reporter) React(ctx context.Context, content model.ReactionContent) error {
	logger := ctxlog.From(ctx)

	reactions, err := x.client.ListCommentReactions(ctx, x.owner, x.repo, x.commentID)
	if err != nil {
		logger.Warn("Failed to list reactions", "error", err)
	}

	for _, r := range reactions {
		if r.User != x.botLogin {
			continue
		}
		if err := x.client.DeleteCommentReaction(ctx, x.owner, x.repo, x.commentID, r.ID); err != nil {
			logger.Warn("Failed to delete previous reaction", "error", err, "reaction_id", r.ID)
		}
	}

	if err := x.client.CreateCommentReaction(ctx, x.owner, x.repo, x.commentID, content); err != nil {
		return err
	}

	logger.Debug("Reacted to comment", "content", content)
	return nil
}

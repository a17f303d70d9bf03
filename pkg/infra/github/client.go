package github

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

type client struct {
	githubClient *github.Client
}

func toRepository(repo *github.Repository) model.Repository {
	return model.Repository{
		ID:       repo.GetID(),
		Owner:    repo.GetOwner().GetLogin(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
		CloneURL: repo.GetCloneURL(),
	}
}

// GetPullRequest fetches head and base information of a pull request
func (c *client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	pr, _, err := c.githubClient.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get pull request",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("number", number),
		)
	}

	return &model.PullRequest{
		Number:              pr.GetNumber(),
		HeadRef:             pr.GetHead().GetRef(),
		HeadSHA:             pr.GetHead().GetSHA(),
		HeadRepo:            toRepository(pr.GetHead().GetRepo()),
		BaseRepo:            toRepository(pr.GetBase().GetRepo()),
		MaintainerCanModify: pr.GetMaintainerCanModify(),
	}, nil
}

// GetUser fetches a user by login
func (c *client) GetUser(ctx context.Context, login string) (*model.User, error) {
	user, _, err := c.githubClient.Users.Get(ctx, login)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("login", login))
	}

	return &model.User{
		ID:    user.GetID(),
		Login: user.GetLogin(),
	}, nil
}

// ListCommentReactions lists all reactions on an issue comment
func (c *client) ListCommentReactions(ctx context.Context, owner, repo string, commentID int64) ([]*model.Reaction, error) {
	opts := &github.ListReactionOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var reactions []*model.Reaction
	for {
		page, resp, err := c.githubClient.Reactions.ListIssueCommentReactions(ctx, owner, repo, commentID, opts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list comment reactions",
				goerr.V("owner", owner),
				goerr.V("repo", repo),
				goerr.V("comment_id", commentID),
			)
		}

		for _, r := range page {
			reactions = append(reactions, &model.Reaction{
				ID:      r.GetID(),
				User:    r.GetUser().GetLogin(),
				Content: model.ReactionContent(r.GetContent()),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return reactions, nil
}

// CreateCommentReaction adds a reaction to an issue comment
func (c *client) CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content model.ReactionContent) error {
	if _, _, err := c.githubClient.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, string(content)); err != nil {
		return goerr.Wrap(err, "failed to create comment reaction",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("comment_id", commentID),
			goerr.V("content", content),
		)
	}
	return nil
}

// DeleteCommentReaction removes a reaction from an issue comment
func (c *client) DeleteCommentReaction(ctx context.Context, owner, repo string, commentID, reactionID int64) error {
	if _, err := c.githubClient.Reactions.DeleteIssueCommentReaction(ctx, owner, repo, commentID, reactionID); err != nil {
		return goerr.Wrap(err, "failed to delete comment reaction",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("comment_id", commentID),
			goerr.V("reaction_id", reactionID),
		)
	}
	return nil
}

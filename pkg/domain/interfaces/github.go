package interfaces

import (
	"context"

	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// GitHubApp exchanges the App credential for installation scoped access
type GitHubApp interface {
	// Installation issues an access token for the installation
	Installation(ctx context.Context, installationID int64) (*model.InstallationToken, error)

	// Client returns an API client authenticated with the installation token
	Client(token *model.InstallationToken) GitHubClient
}

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// GetPullRequest fetches head and base information of a pull request
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)

	// GetUser fetches a user by login
	GetUser(ctx context.Context, login string) (*model.User, error)

	// ListCommentReactions lists reactions on an issue comment
	ListCommentReactions(ctx context.Context, owner, repo string, commentID int64) ([]*model.Reaction, error)

	// CreateCommentReaction adds a reaction to an issue comment
	CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content model.ReactionContent) error

	// DeleteCommentReaction removes a reaction from an issue comment
	DeleteCommentReaction(ctx context.Context, owner, repo string, commentID, reactionID int64) error
}

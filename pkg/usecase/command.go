package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	"github.com/m-mizutani/spotless-bot/pkg/utils/async"
	"github.com/m-mizutani/spotless-bot/pkg/utils/errs"
)

// DefaultBotName is the login of the App's bot account
const DefaultBotName = "spotless-bot[bot]"

// Command handles comments carrying the command
type Command struct {
	app      interfaces.GitHubApp
	pipeline interfaces.PipelineUseCase
	identity *identityResolver
	group    async.Group
}

var _ interfaces.CommandUseCase = (*Command)(nil)

// CommandOption is a functional option for Command
type CommandOption func(*Command)

// WithBotName sets the login of the bot account used for commits and reactions
func WithBotName(name string) CommandOption {
	return func(c *Command) {
		c.identity.botName = name
	}
}

// WithBotUserID sets the account id of the bot and skips the lookup
func WithBotUserID(id int64) CommandOption {
	return func(c *Command) {
		c.identity.userID = id
	}
}

// NewCommand creates a new instance of Command
func NewCommand(app interfaces.GitHubApp, pipeline interfaces.PipelineUseCase, opts ...CommandOption) *Command {
	c := &Command{
		app:      app,
		pipeline: pipeline,
		identity: &identityResolver{botName: DefaultBotName},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleComment classifies the comment, checks that the bot may modify the
// pull request, acknowledges it and dispatches the pipeline. Non-actionable
// comments return nil; denials return an error tagged ErrTagAuthorization.
func (x *Command) HandleComment(ctx context.Context, event *model.CommentEvent) error {
	logger := ctxlog.From(ctx).With(
		"delivery_id", event.ID,
		"repository", event.Repository.FullName,
		"issue", event.IssueNumber,
		"comment_id", event.CommentID,
	)
	ctx = ctxlog.With(ctx, logger)

	decision := event.Classify()
	if !decision.Actionable {
		if decision.Reason == model.ReasonUnauthorized {
			return goerr.New("user not allowed to run command",
				goerr.V("author", event.Author),
				goerr.V("association", event.AuthorAssociation),
				goerr.T(types.ErrTagAuthorization),
			)
		}
		logger.Debug("Comment is not a command", "reason", decision.Reason)
		return nil
	}

	logger.Info("Received command", "author", event.Author, "association", event.AuthorAssociation)

	token, err := x.app.Installation(ctx, event.InstallationID)
	if err != nil {
		return err
	}
	client := x.app.Client(token)

	pr, err := client.GetPullRequest(ctx, event.Repository.Owner, event.Repository.Name, event.IssueNumber)
	if err != nil {
		return err
	}

	if !pr.AllowsModification() {
		return goerr.New("pull request owner does not allow modifications by maintainers",
			goerr.V("head_repository", pr.HeadRepo.FullName),
			goerr.V("base_repository", pr.BaseRepo.FullName),
			goerr.T(types.ErrTagAuthorization),
		)
	}
	if pr.HeadRepo.CloneURL == "" || pr.HeadRef == "" {
		return goerr.New("head repository of pull request is not available",
			goerr.V("number", pr.Number),
		)
	}

	identity, err := x.identity.Resolve(ctx, client, token)
	if err != nil {
		return err
	}

	report := newReporter(client, event, identity)
	if err := report.React(ctx, model.ReactionEyes); err != nil {
		return err
	}

	req := &model.RunRequest{
		Key: model.BranchKey{
			Repository: pr.HeadRepo.FullName,
			Branch:     pr.HeadRef,
		},
		CloneURL: pr.HeadRepo.CloneURL,
		SHA:      pr.HeadSHA,
		Identity: identity,
	}

	x.group.Dispatch(ctx, func(ctx context.Context) error {
		result := x.pipeline.Run(ctx, req)
		logResult(ctx, req, pr, result)
		return report.React(ctx, result.Outcome.Reaction())
	})

	return nil
}

// Wait blocks until all dispatched pipelines settled and reported
func (x *Command) Wait() {
	x.group.Wait()
}

func logResult(ctx context.Context, req *model.RunRequest, pr *model.PullRequest, result *model.RunResult) {
	logger := ctxlog.From(ctx).With(
		"key", req.Key.String(),
		"pull_request", pr.Number,
		"outcome", result.Outcome,
		"duration", result.Duration,
	)

	switch result.Outcome {
	case model.OutcomePushed:
		logger.Info("Pushed formatting changes")
	case model.OutcomeNoOp:
		logger.Info("No changes to push")
	case model.OutcomeConflict:
		logger.Warn("Branch is already being processed", "error", result.Err)
	default:
		errs.Handle(ctxlog.With(ctx, logger), "pipeline failed", result.Err)
	}
}

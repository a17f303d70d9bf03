package usecase

import (
	"context"
	"path/filepath"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	"github.com/m-mizutani/spotless-bot/pkg/utils/errs"
)

const (
	// CommitMessage is used for every formatting commit
	CommitMessage = "run spotless"

	buildLogName = "build.log"
)

type pipeline struct {
	ledger  interfaces.Ledger
	git     interfaces.Git
	builder interfaces.Builder
}

// NewPipeline creates the clone, build, commit and push pipeline
func NewPipeline(ledger interfaces.Ledger, git interfaces.Git, builder interfaces.Builder) interfaces.PipelineUseCase {
	return &pipeline{
		ledger:  ledger,
		git:     git,
		builder: builder,
	}
}

// Run executes the pipeline for one branch. Expected outcomes (pushed, no-op,
// conflict) are reported through the result; the claim is released on every
// path before Run returns.
func (x *pipeline) Run(ctx context.Context, req *model.RunRequest) *model.RunResult {
	started := time.Now()
	logger := ctxlog.From(ctx).With("key", req.Key.String(), "sha", req.SHA)
	ctx = ctxlog.With(ctx, logger)

	claim, err := x.ledger.Claim(ctx, req.Key, req.SHA)
	if err != nil {
		outcome := model.OutcomeFailed
		if goerr.HasTag(err, types.ErrTagConflict) {
			outcome = model.OutcomeConflict
		}
		return &model.RunResult{Outcome: outcome, Err: err, Duration: time.Since(started)}
	}
	defer func() {
		if err := claim.Release(ctx); err != nil {
			errs.Handle(ctx, "failed to release branch claim", err)
		}
	}()

	outcome, err := x.run(ctx, claim, req)
	return &model.RunResult{
		Outcome:  outcome,
		Err:      err,
		Duration: time.Since(started),
	}
}

func (x *pipeline) run(ctx context.Context, claim interfaces.Claim, req *model.RunRequest) (model.Outcome, error) {
	logger := ctxlog.From(ctx)
	workTree := claim.WorkTree()

	logger.Info("Cloning branch", "clone_url", req.CloneURL, "dir", workTree)
	if err := x.git.Clone(ctx, req.CloneURL, req.Key.Branch, workTree, req.Identity); err != nil {
		return model.OutcomeFailed, goerr.Wrap(err, "clone failed",
			goerr.V("clone_url", req.CloneURL),
			goerr.V("branch", req.Key.Branch),
			goerr.T(types.ErrTagExternalTool),
		)
	}

	logger.Info("Running auto-format")
	if err := x.builder.Build(ctx, workTree, filepath.Join(claim.Dir(), buildLogName)); err != nil {
		return model.OutcomeFailed, err
	}

	logger.Info("Committing and pushing changes")
	return x.commitAndPush(ctx, workTree, req)
}

func (x *pipeline) commitAndPush(ctx context.Context, dir string, req *model.RunRequest) (model.Outcome, error) {
	wrap := func(err error, msg string) error {
		return goerr.Wrap(err, msg,
			goerr.V("branch", req.Key.Branch),
			goerr.T(types.ErrTagExternalTool),
		)
	}

	configs := [][2]string{
		{"user.name", req.Identity.Name},
		{"user.email", req.Identity.Email},
		{"commit.gpgsign", "false"},
	}
	for _, kv := range configs {
		if err := x.git.Config(ctx, dir, kv[0], kv[1]); err != nil {
			return model.OutcomeFailed, wrap(err, "failed to configure commit identity")
		}
	}

	status, err := x.git.Status(ctx, dir)
	if err != nil {
		return model.OutcomeFailed, wrap(err, "failed to read work tree status")
	}
	if status == "" {
		ctxlog.From(ctx).Info("No formatting changes")
		return model.OutcomeNoOp, nil
	}

	if err := x.git.AddAll(ctx, dir); err != nil {
		return model.OutcomeFailed, wrap(err, "failed to stage changes")
	}
	if err := x.git.Commit(ctx, dir, CommitMessage); err != nil {
		return model.OutcomeFailed, wrap(err, "failed to commit changes")
	}
	if err := x.git.Push(ctx, dir, req.Key.Branch); err != nil {
		return model.OutcomeFailed, wrap(err, "failed to push changes")
	}

	return model.OutcomePushed, nil
}

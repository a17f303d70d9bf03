package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . CommandUseCase

import (
	"context"

	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// CommandUseCase handles issue comments that may carry the command
type CommandUseCase interface {
	// HandleComment classifies the comment and dispatches a run when it is actionable
	HandleComment(ctx context.Context, event *model.CommentEvent) error
}

// PipelineUseCase runs clone, build, commit and push for one branch
type PipelineUseCase interface {
	Run(ctx context.Context, req *model.RunRequest) *model.RunResult
}

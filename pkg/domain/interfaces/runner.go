package interfaces

import (
	"context"

	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// Git is the version control client used by the pipeline
type Git interface {
	// Clone checks out branch into dir, authenticating as auth when set
	Clone(ctx context.Context, remote, branch, dir string, auth *model.BotIdentity) error
	Config(ctx context.Context, dir, key, value string) error
	Status(ctx context.Context, dir string) (string, error)
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	Push(ctx context.Context, dir, branch string) error
}

// Builder runs the auto-format task inside a work tree
type Builder interface {
	// Build runs the task in dir and writes its output to logPath
	Build(ctx context.Context, dir, logPath string) error
}

// Ledger grants exclusive ownership of a branch work directory
type Ledger interface {
	Claim(ctx context.Context, key model.BranchKey, sha string) (Claim, error)
}

// Claim is an exclusive hold on a branch work directory
type Claim interface {
	// WorkTree is the directory the repository is checked out into
	WorkTree() string
	// Dir is the claim directory holding the work tree and run artifacts
	Dir() string
	// Release deletes the work tree and metadata
	Release(ctx context.Context) error
}

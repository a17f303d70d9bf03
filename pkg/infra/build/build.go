package build

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
)

// DefaultCommand runs the Spotless Gradle plugin through the wrapper
var DefaultCommand = []string{"./gradlew", "spotlessApply"}

// maxLogTail is the number of output bytes attached to a build error
const maxLogTail = 4096

// Runner runs the auto-format command with a time limit
type Runner struct {
	command []string
	timeout time.Duration
}

var _ interfaces.Builder = (*Runner)(nil)

// New returns a Runner. A relative executable such as ./gradlew is resolved
// against the work tree.
func New(command []string, timeout time.Duration) (*Runner, error) {
	if len(command) == 0 {
		return nil, goerr.New("build command is empty", goerr.T(types.ErrTagConfig))
	}
	if timeout <= 0 {
		return nil, goerr.New("build timeout must be positive",
			goerr.V("timeout", timeout),
			goerr.T(types.ErrTagConfig),
		)
	}
	return &Runner{
		command: command,
		timeout: timeout,
	}, nil
}

// Build runs the command in dir. Output is written to logPath. Exceeding the
// timeout kills the process and returns an error tagged with ErrTagTimeout.
func (x *Runner) Build(ctx context.Context, dir, logPath string) error {
	logger := ctxlog.From(ctx)

	logFile, err := os.Create(logPath)
	if err != nil {
		return goerr.Wrap(err, "failed to create build log", goerr.V("path", logPath))
	}
	defer logFile.Close()

	buildCtx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	cmd := exec.CommandContext(buildCtx, x.command[0], x.command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.WaitDelay = 5 * time.Second

	started := time.Now()
	logger.Info("Running build", "command", strings.Join(x.command, " "), "dir", dir, "timeout", x.timeout)

	err = cmd.Run()
	if errors.Is(buildCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return goerr.New("build timed out",
			goerr.V("command", strings.Join(x.command, " ")),
			goerr.V("timeout", x.timeout),
			goerr.V("output", readTail(logPath)),
			goerr.T(types.ErrTagTimeout),
		)
	}
	if err != nil {
		return goerr.Wrap(err, "build failed",
			goerr.V("command", strings.Join(x.command, " ")),
			goerr.V("dir", dir),
			goerr.V("output", readTail(logPath)),
			goerr.T(types.ErrTagExternalTool),
		)
	}

	logger.Info("Build finished", "duration", time.Since(started))
	return nil
}

func readTail(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(raw) > maxLogTail {
		raw = raw[len(raw)-maxLogTail:]
	}
	return string(raw)
}

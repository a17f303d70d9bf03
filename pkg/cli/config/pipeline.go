package config

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	"github.com/m-mizutani/spotless-bot/pkg/infra/build"
	"github.com/urfave/cli/v3"
)

// Pipeline holds configuration of the checkout and build steps
type Pipeline struct {
	WorkDir      string
	BuildCommand string
	BuildTimeout time.Duration
}

// Flags returns CLI flags for pipeline configuration
func (c *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Directory holding branch claims and clones",
			Value:       "data/clones",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("SPOTLESS_BOT_WORK_DIR"),
		},
		&cli.StringFlag{
			Name:        "build-command",
			Usage:       "Formatting command run in the clone, split on whitespace",
			Value:       strings.Join(build.DefaultCommand, " "),
			Destination: &c.BuildCommand,
			Sources:     cli.EnvVars("SPOTLESS_BOT_BUILD_COMMAND"),
		},
		&cli.DurationFlag{
			Name:        "build-timeout",
			Usage:       "Time limit of the formatting command",
			Value:       10 * time.Minute,
			Destination: &c.BuildTimeout,
			Sources:     cli.EnvVars("SPOTLESS_BOT_BUILD_TIMEOUT"),
		},
	}
}

// Command returns the build command as program and arguments
func (c *Pipeline) Command() ([]string, error) {
	args := strings.Fields(c.BuildCommand)
	if len(args) == 0 {
		return nil, goerr.New("build command is empty", goerr.T(types.ErrTagConfig))
	}
	return args, nil
}

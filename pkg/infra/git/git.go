package git

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// Client runs the git command line client
type Client struct {
	binary string
}

var _ interfaces.Git = (*Client)(nil)

// New returns a git client using the given binary, "git" when empty
func New(binary string) *Client {
	if binary == "" {
		binary = "git"
	}
	return &Client{binary: binary}
}

// run executes git in dir and returns its combined output. secrets are
// masked in the output and in the error values.
func (c *Client) run(ctx context.Context, dir string, secrets []string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"LC_ALL=C",
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	ctxlog.From(ctx).Debug("Running git", "args", mask(strings.Join(args, " "), secrets), "dir", dir)

	err := cmd.Run()
	output := mask(out.String(), secrets)
	if err != nil {
		return output, goerr.Wrap(err, "git command failed",
			goerr.V("args", mask(strings.Join(args, " "), secrets)),
			goerr.V("dir", dir),
			goerr.V("output", output),
		)
	}
	return output, nil
}

func mask(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}

// urlSecrets returns the password embedded in a remote URL, if any
func urlSecrets(remote string) []string {
	u, err := url.Parse(remote)
	if err != nil || u.User == nil {
		return nil
	}
	if pw, ok := u.User.Password(); ok {
		return []string{pw}
	}
	return nil
}

// Clone makes a shallow single branch clone of branch into dir. For http(s)
// remotes the identity name and token are embedded as credentials.
func (c *Client) Clone(ctx context.Context, remote, branch, dir string, auth *model.BotIdentity) error {
	if auth != nil {
		authURL, err := AuthenticatedURL(remote, auth.Name, auth.Token)
		if err != nil {
			return err
		}
		remote = authURL
	}

	_, err := c.run(ctx, "", urlSecrets(remote),
		"clone",
		"--depth", "1",
		"--single-branch",
		"--branch", branch,
		remote,
		dir,
	)
	return err
}

// Config sets a repository local configuration value
func (c *Client) Config(ctx context.Context, dir, key, value string) error {
	_, err := c.run(ctx, dir, nil, "config", "--local", key, value)
	return err
}

// Status returns the porcelain status of the work tree, empty when clean
func (c *Client) Status(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, nil, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AddAll stages every change including untracked and deleted files
func (c *Client) AddAll(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, nil, "add", "--all")
	return err
}

// Commit records staged changes. Hooks are skipped.
func (c *Client) Commit(ctx context.Context, dir, message string) error {
	_, err := c.run(ctx, dir, nil, "commit", "--no-verify", "-m", message)
	return err
}

// Push pushes HEAD to branch on origin
func (c *Client) Push(ctx context.Context, dir, branch string) error {
	_, err := c.run(ctx, dir, nil, "push", "origin", "HEAD:refs/heads/"+branch)
	return err
}

// AuthenticatedURL embeds user and token into an http(s) remote URL. Other
// schemes are returned unchanged.
func AuthenticatedURL(remote, user, token string) (string, error) {
	u, err := url.Parse(remote)
	if err != nil {
		return "", goerr.Wrap(err, "invalid clone URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return remote, nil
	}
	u.User = url.UserPassword(user, token)
	return u.String(), nil
}

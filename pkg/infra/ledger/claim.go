package ledger

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// Claim is an exclusive hold on one branch directory
type Claim struct {
	ledger *Ledger
	key    model.BranchKey
	dir    string
	meta   *Metadata
}

// Dir returns the claim directory
func (c *Claim) Dir() string { return c.dir }

// WorkTree returns the directory the repository is checked out into
func (c *Claim) WorkTree() string { return filepath.Join(c.dir, workTreeName) }

// Metadata returns the persisted claim metadata
func (c *Claim) Metadata() Metadata { return *c.meta }

// Release deletes the work tree and the metadata. It always removes the
// whole directory regardless of how the run ended.
func (c *Claim) Release(ctx context.Context) error {
	release, err := c.ledger.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := os.RemoveAll(c.dir); err != nil {
		return goerr.Wrap(err, "failed to remove branch directory",
			goerr.V("key", c.key.String()),
			goerr.V("dir", c.dir),
		)
	}

	// Drop the repository directory once its last branch is gone
	_ = os.Remove(filepath.Dir(c.dir))

	ctxlog.From(ctx).Debug("Released branch", "key", c.key.String(), "run_id", c.meta.RunID)
	return nil
}

package ledger

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

const (
	lockFileName = ".ledger.lock"
	metaFileName = "meta.toml"
	workTreeName = "repository"
)

// Metadata is persisted in the claim directory while a run is active
type Metadata struct {
	RunID     string    `toml:"run_id"`
	SHA       string    `toml:"sha"`
	ClaimedAt time.Time `toml:"claimed_at"`
}

// Ledger manages branch claims under a root directory. A claim is the
// metadata file created exclusively in the branch directory; the directory
// itself only carries the work tree.
type Ledger struct {
	root  string
	mutex sync.Mutex
	lock  *flock.Flock
	now   func() time.Time
}

var _ interfaces.Ledger = (*Ledger)(nil)

// Option is a functional option for Ledger
type Option func(*Ledger)

// WithClock replaces the time source used for claim timestamps
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New creates the root directory if needed and returns a Ledger
func New(root string, opts ...Option) (*Ledger, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create work directory",
			goerr.V("root", root),
			goerr.T(types.ErrTagConfig),
		)
	}

	l := &Ledger{
		root: root,
		lock: flock.New(filepath.Join(root, lockFileName)),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the root directory of all claims
func (l *Ledger) Root() string {
	return l.root
}

func (l *Ledger) keyDir(key model.BranchKey) string {
	return filepath.Join(l.root, url.PathEscape(key.Repository), url.PathEscape(key.Branch))
}

// acquire serializes ledger mutations within the process and across
// processes sharing the root.
func (l *Ledger) acquire() (func(), error) {
	l.mutex.Lock()
	if err := l.lock.Lock(); err != nil {
		l.mutex.Unlock()
		return nil, goerr.Wrap(err, "failed to lock ledger", goerr.V("root", l.root))
	}
	return func() {
		_ = l.lock.Unlock()
		l.mutex.Unlock()
	}, nil
}

// Claim takes exclusive ownership of the branch directory. If the branch is
// already claimed, an error tagged with ErrTagConflict is returned without
// touching the existing claim.
func (l *Ledger) Claim(ctx context.Context, key model.BranchKey, sha string) (interfaces.Claim, error) {
	logger := ctxlog.From(ctx)

	release, err := l.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	dir := l.keyDir(key)
	metaPath := filepath.Join(dir, metaFileName)

	existing, err := readMetadata(metaPath)
	switch {
	case err == nil:
		msg := "different commit already checked out"
		if existing.SHA == sha {
			msg = "already running for this commit"
		}
		return nil, goerr.New(msg,
			goerr.V("key", key.String()),
			goerr.V("running_sha", existing.SHA),
			goerr.V("requested_sha", sha),
			goerr.V("claimed_at", existing.ClaimedAt),
			goerr.T(types.ErrTagConflict),
		)

	case errors.Is(err, fs.ErrNotExist):
		// A directory without metadata is left over from an interrupted claim
		if _, statErr := os.Stat(dir); statErr == nil {
			logger.Warn("Discarding branch directory without metadata", "key", key.String(), "dir", dir)
			if err := os.RemoveAll(dir); err != nil {
				return nil, goerr.Wrap(err, "failed to remove orphaned branch directory", goerr.V("dir", dir))
			}
		}

	default:
		logger.Warn("Discarding branch directory with unreadable metadata",
			"key", key.String(),
			"dir", dir,
			"error", err,
		)
		if err := os.RemoveAll(dir); err != nil {
			return nil, goerr.Wrap(err, "failed to remove orphaned branch directory", goerr.V("dir", dir))
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create branch directory", goerr.V("dir", dir))
	}

	meta := &Metadata{
		RunID:     uuid.NewString(),
		SHA:       sha,
		ClaimedAt: l.now().UTC(),
	}
	if err := writeMetadata(metaPath, meta); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	logger.Debug("Claimed branch", "key", key.String(), "run_id", meta.RunID, "sha", sha)

	return &Claim{
		ledger: l,
		key:    key,
		dir:    dir,
		meta:   meta,
	}, nil
}

func readMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := toml.Unmarshal(raw, &meta); err != nil {
		return nil, goerr.Wrap(err, "failed to parse claim metadata", goerr.V("path", path))
	}
	if meta.SHA == "" {
		return nil, goerr.New("claim metadata has no sha", goerr.V("path", path))
	}
	return &meta, nil
}

// writeMetadata creates the metadata file exclusively and syncs it to disk
func writeMetadata(path string, meta *Metadata) error {
	raw, err := toml.Marshal(meta)
	if err != nil {
		return goerr.Wrap(err, "failed to encode claim metadata")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return goerr.Wrap(err, "failed to create claim metadata",
			goerr.V("path", path),
			goerr.T(types.ErrTagConflict),
		)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return goerr.Wrap(err, "failed to write claim metadata", goerr.V("path", path))
	}
	if err := f.Sync(); err != nil {
		return goerr.Wrap(err, "failed to sync claim metadata", goerr.V("path", path))
	}
	return nil
}

// Reconcile removes every claim left under the root. No run survives a
// restart, so anything found here is orphaned. Returns the number of
// repository directories removed.
func (l *Ledger) Reconcile(ctx context.Context) (int, error) {
	release, err := l.acquire()
	if err != nil {
		return 0, err
	}
	defer release()

	entries, err := os.ReadDir(l.root)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read work directory", goerr.V("root", l.root))
	}

	var removed int
	for _, entry := range entries {
		if entry.Name() == lockFileName {
			continue
		}
		path := filepath.Join(l.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, goerr.Wrap(err, "failed to remove leftover claim", goerr.V("path", path))
		}
		removed++
	}

	if removed > 0 {
		ctxlog.From(ctx).Warn("Deleted leftover branch claims from previous run",
			"root", l.root,
			"count", removed,
		)
	}
	return removed, nil
}

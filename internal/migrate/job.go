// Package migrate implements the one-shot job that upgrades the legacy
// flat account snapshot into the relational schema. The job owns no
// storage: every write goes through the Table adapter. It runs to
// completion before the application serves normal traffic, and
// re-invocation is safe.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/folioforge/depot/pkg/logging"
	"github.com/folioforge/depot/pkg/types"
)

// backupStamp is the timestamp layout used in backup file names.
const backupStamp = "20060102T150405"

// bcryptPrefixes are the known hash-prefix patterns. A password carrying
// one of these is treated as already hashed and passes through
// unchanged, so re-running the job never double-hashes.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Job migrates the legacy snapshot into the accounts and portfolios
// tables and writes a timestamped backup of the original file.
type Job struct {
	store        types.Store
	snapshotPath string
	log          logging.Logger

	// now is a seam for tests that pin the backup timestamp.
	now func() time.Time
}

// Summary reports the outcome of a migration run.
type Summary struct {
	AccountsMigrated  int
	AccountsSkipped   int
	PortfoliosCarried int
	BackupPath        string
	NothingToMigrate  bool
}

// NewJob creates a migration job reading from snapshotPath and writing
// through store. A nil logger discards output.
func NewJob(store types.Store, snapshotPath string, log logging.Logger) *Job {
	if log == nil {
		log = logging.Nop()
	}
	return &Job{
		store:        store,
		snapshotPath: snapshotPath,
		log:          log,
		now:          time.Now,
	}
}

// Run executes the migration. Per-account failures are logged and
// skipped; only a snapshot load failure (other than absence) or a
// backup write failure is fatal. An absent snapshot terminates
// successfully with a "nothing to migrate" summary.
func (j *Job) Run(ctx context.Context) (*Summary, error) {
	snapshot, err := loadSnapshot(j.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		j.log.Info(ctx, "no legacy snapshot, nothing to migrate", "path", j.snapshotPath)
		return &Summary{NothingToMigrate: true}, nil
	}
	if err != nil {
		return nil, err
	}

	accounts, err := j.store.GetTable(types.AccountsTable)
	if err != nil {
		return nil, err
	}
	portfolios, err := j.store.GetTable(types.PortfoliosTable)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}

	// Deterministic order across runs; map iteration is not.
	emails := make([]string, 0, len(snapshot))
	for email := range snapshot {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	for _, email := range emails {
		blob := snapshot[email]

		hash, err := upgradePassword(blob.Password)
		if err != nil {
			j.log.Warn(ctx, "skipping account, password hash failed", "email", email, "err", err)
			summary.AccountsSkipped++
			continue
		}

		_, err = accounts.InsertRow(&types.Account{
			Email:        email,
			PasswordHash: hash,
			DisplayName:  blob.displayName(),
		})
		if errors.Is(err, types.ErrConflict) {
			// Already migrated; the portfolio carried over with it.
			j.log.Info(ctx, "account already migrated", "email", email)
			summary.AccountsSkipped++
			continue
		}
		if err != nil {
			j.log.Warn(ctx, "skipping account, insert failed", "email", email, "err", err)
			summary.AccountsSkipped++
			continue
		}
		summary.AccountsMigrated++

		if blob.hasPortfolio() {
			_, err = portfolios.InsertRow(&types.PortfolioSnapshot{
				OwnerEmail: email,
				Payload:    string(blob.Portfolio),
			})
			if err != nil {
				j.log.Warn(ctx, "portfolio carry-over failed", "email", email, "err", err)
				continue
			}
			summary.PortfoliosCarried++
		}
	}

	backupPath, err := j.writeBackup()
	if err != nil {
		return nil, fmt.Errorf("writing snapshot backup: %w", err)
	}
	summary.BackupPath = backupPath

	j.log.Info(ctx, "migration finished",
		"migrated", summary.AccountsMigrated,
		"skipped", summary.AccountsSkipped,
		"portfolios", summary.PortfoliosCarried,
		"backup", backupPath)

	return summary, nil
}

// upgradePassword returns an adaptive hash of a plaintext password, or
// the value unchanged when it already carries a known hash prefix.
func upgradePassword(password string) (string, error) {
	if isHashed(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// isHashed reports whether the password matches a known bcrypt prefix.
func isHashed(password string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(password, prefix) {
			return true
		}
	}
	return false
}

// writeBackup copies the snapshot to a timestamped path in the same
// directory, using the temp-file, sync, rename pattern. The backup is
// audit material only; it is never read back.
func (j *Job) writeBackup() (string, error) {
	backupPath := fmt.Sprintf("%s.%s.bak", j.snapshotPath, j.now().UTC().Format(backupStamp))

	src, err := os.Open(j.snapshotPath)
	if err != nil {
		return "", fmt.Errorf("opening snapshot: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(j.snapshotPath), ".bak-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("copying snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("syncing backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing backup: %w", err)
	}
	if err := os.Rename(tmpName, backupPath); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("renaming backup: %w", err)
	}
	return backupPath, nil
}

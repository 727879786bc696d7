// Legacy snapshot format for the one-shot migration. The pre-relational
// application kept every account in a single flat JSON document: a
// top-level mapping from email to an inline account blob, with portfolio
// data embedded in the blob.

package migrate

import (
	"encoding/json"
	"fmt"
	"os"
)

// legacyAccount is one entry of the flat snapshot. The display name
// appears as either "fullName" or "name" depending on the snapshot
// generation; password may be plaintext or already bcrypt-hashed.
type legacyAccount struct {
	Password  string          `json:"password"`
	FullName  string          `json:"fullName"`
	Name      string          `json:"name"`
	Portfolio json.RawMessage `json:"portfolio"`
}

// displayName returns the account's display name, preferring the newer
// fullName field.
func (a legacyAccount) displayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Name
}

// hasPortfolio reports whether the blob embeds portfolio data.
func (a legacyAccount) hasPortfolio() bool {
	return len(a.Portfolio) > 0 && string(a.Portfolio) != "null"
}

// loadSnapshot reads and parses the legacy snapshot file. A missing
// file is reported as os.ErrNotExist so the job can treat absence as
// "nothing to migrate"; any other failure is fatal to the job.
func loadSnapshot(path string) (map[string]legacyAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var snapshot map[string]legacyAccount
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

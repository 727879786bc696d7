package types

import "time"

// PortfolioSnapshot holds one user's portfolio payload. OwnerEmail
// references Account.Email directly; the natural key is reused rather
// than a surrogate foreign key. Payload is an opaque structured blob:
// the store serializes it to JSON text at rest and does not interpret
// its internal shape. At most one snapshot per owner is authoritative;
// a newest-first search decides which.
type PortfolioSnapshot struct {
	SnapshotID  string    `json:"snapshot_id"`
	OwnerEmail  string    `json:"owner_email"`
	Payload     any       `json:"payload"`
	LastUpdated time.Time `json:"last_updated"`
}

// Validate checks that the snapshot is well-formed for insertion.
func (p *PortfolioSnapshot) Validate() error {
	if p.OwnerEmail == "" {
		return ErrInvalidEmail
	}
	return nil
}

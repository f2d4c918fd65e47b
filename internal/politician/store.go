package politician

import (
	"context"
)

// RefKind names a dependent table that points back at a politician via
// politician_we_vote_id.
type RefKind string

// Dependent reference kinds relocated during a merge.
const (
	RefCandidate      RefKind = "candidate"
	RefPosition       RefKind = "position"
	RefRepresentative RefKind = "representative"
	RefImage          RefKind = "image"
	RefSEOPath        RefKind = "seo_path"
	RefCampaign       RefKind = "campaign"
)

var refTables = map[RefKind]string{
	RefCandidate:      "candidates",
	RefPosition:       "positions",
	RefRepresentative: "representatives",
	RefImage:          "we_vote_images",
	RefSEOPath:        "politician_seo_friendly_paths",
	RefCampaign:       "campaignx_politicians",
}

// RefKinds lists every dependent reference kind in relocation order.
func RefKinds() []RefKind {
	return []RefKind{RefCandidate, RefPosition, RefRepresentative, RefImage, RefSEOPath, RefCampaign}
}

// Table returns the table holding references of this kind.
func (k RefKind) Table() string { return refTables[k] }

// Reader holds the read operations shared by stores and transactions.
// Lookups that find nothing return a nil record and a nil error.
type Reader interface {
	GetByWeVoteID(ctx context.Context, weVoteID string) (*Record, error)
	ListByState(ctx context.Context, stateCode string, limit int) ([]Record, error)

	// Candidate search. Callers filter out records they have already
	// handled.
	FindByTwitterHandles(ctx context.Context, handles []string) ([]Record, error)
	FindByExactName(ctx context.Context, names []string, stateCode string) ([]Record, error)
	FindByNameParts(ctx context.Context, first, last, stateCode string) ([]Record, error)

	// Pairing tables
	NotDuplicatePartners(ctx context.Context, weVoteID string) ([]string, error)
	PairedWeVoteIDs(ctx context.Context) ([]string, error)
	ListDuplicatePairs(ctx context.Context, stateCode string) ([]DuplicatePair, error)

	SEOPathTaken(ctx context.Context, path string) (bool, error)
	CountReferences(ctx context.Context, kind RefKind, weVoteID string) (int64, error)
}

// Tx is a unit of work. All writes go through a Tx.
type Tx interface {
	Reader

	// GetForUpdate reads a record and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, weVoteID string) (*Record, error)
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, weVoteID string) error

	// MoveReferences repoints every reference of kind from one politician
	// to another and returns the number of rows changed.
	MoveReferences(ctx context.Context, kind RefKind, from, to string) (int64, error)
	AddReference(ctx context.Context, kind RefKind, refWeVoteID, politicianWeVoteID string) error
	ArchiveSEOPath(ctx context.Context, weVoteID, path string) error

	CreateDuplicatePair(ctx context.Context, p *DuplicatePair) error
	DeleteDuplicatePair(ctx context.Context, a, b string) (int64, error)
	DeleteDuplicatePairsFor(ctx context.Context, weVoteID string) (int64, error)
	CreateNotDuplicates(ctx context.Context, a, b string) error
}

// Store is a politician persistence backend.
type Store interface {
	Reader

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Migrate(ctx context.Context) error
	Close() error
}

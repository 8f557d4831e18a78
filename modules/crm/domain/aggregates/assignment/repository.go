package assignment

import "context"

// OwnerChange reports one row touched by a set-based ownership write.
type OwnerChange struct {
	EntityID   string
	OldOwnerID *string
}

type UserStat struct {
	UserID   string
	UserName string
	Count    int64
}

// Stats is a current snapshot over all assignable tables, not history.
type Stats struct {
	TotalAssigned int64
	Unassigned    int64
	ByUser        []UserStat
}

type Repository interface {
	EntityExists(ctx context.Context, entityType EntityType, entityID string) (bool, error)
	GetOwner(ctx context.Context, entityType EntityType, entityID string) (*string, error)
	// SetOwner writes owner_id; a nil owner unassigns.
	SetOwner(ctx context.Context, entityType EntityType, entityID string, ownerID *string) error
	// BulkSetOwner updates all existing ids in one set-based statement and
	// reports each changed row with its previous owner. Ids with no matching
	// row are silently absent from the result.
	BulkSetOwner(ctx context.Context, entityType EntityType, entityIDs []string, ownerID string) ([]OwnerChange, error)
	// ReassignOwned re-points every entity of the given type owned by fromUserID.
	ReassignOwned(ctx context.Context, entityType EntityType, fromUserID, toUserID string) ([]OwnerChange, error)

	AppendLog(ctx context.Context, entry LogEntry) (LogEntry, error)
	AppendLogs(ctx context.Context, entries []LogEntry) error
	// HistoryFor returns entries most-recent-first; empty slice when the
	// entity has never been assigned.
	HistoryFor(ctx context.Context, entityType EntityType, entityID string) ([]LogEntry, error)

	Stats(ctx context.Context) (Stats, error)
}

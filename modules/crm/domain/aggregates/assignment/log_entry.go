package assignment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LogEntry is one immutable audit record of an ownership change. A nil
// newOwnerID records an unassignment. Entries are never updated or deleted.
type LogEntry struct {
	tenantID   uuid.UUID
	id         int64
	entityType EntityType
	entityID   string
	oldOwnerID *string
	newOwnerID *string
	assignedBy string
	createdAt  time.Time
}

func NewLogEntry(
	tenantID uuid.UUID,
	entityType EntityType,
	entityID string,
	oldOwnerID *string,
	newOwnerID *string,
	assignedBy string,
) LogEntry {
	return LogEntry{
		tenantID:   tenantID,
		entityType: entityType,
		entityID:   strings.TrimSpace(entityID),
		oldOwnerID: cloneOwner(oldOwnerID),
		newOwnerID: cloneOwner(newOwnerID),
		assignedBy: strings.TrimSpace(assignedBy),
	}
}

func HydrateLogEntry(
	tenantID uuid.UUID,
	id int64,
	entityType EntityType,
	entityID string,
	oldOwnerID *string,
	newOwnerID *string,
	assignedBy string,
	createdAt time.Time,
) LogEntry {
	return LogEntry{
		tenantID:   tenantID,
		id:         id,
		entityType: entityType,
		entityID:   entityID,
		oldOwnerID: cloneOwner(oldOwnerID),
		newOwnerID: cloneOwner(newOwnerID),
		assignedBy: assignedBy,
		createdAt:  createdAt,
	}
}

func (e LogEntry) TenantID() uuid.UUID    { return e.tenantID }
func (e LogEntry) ID() int64              { return e.id }
func (e LogEntry) EntityType() EntityType { return e.entityType }
func (e LogEntry) EntityID() string       { return e.entityID }
func (e LogEntry) OldOwnerID() *string    { return cloneOwner(e.oldOwnerID) }
func (e LogEntry) NewOwnerID() *string    { return cloneOwner(e.newOwnerID) }
func (e LogEntry) AssignedBy() string     { return e.assignedBy }
func (e LogEntry) CreatedAt() time.Time   { return e.createdAt }
func (e LogEntry) IsUnassignment() bool   { return e.newOwnerID == nil }

func cloneOwner(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

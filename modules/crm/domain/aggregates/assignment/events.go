package assignment

import (
	"context"
	"time"
)

type AssignedEvent struct {
	EntityType EntityType
	EntityID   string
	OldOwnerID *string
	NewOwnerID *string
	AssignedBy string
	Timestamp  time.Time
}

func NewAssignedEvent(_ context.Context, entry LogEntry) *AssignedEvent {
	return &AssignedEvent{
		EntityType: entry.EntityType(),
		EntityID:   entry.EntityID(),
		OldOwnerID: entry.OldOwnerID(),
		NewOwnerID: entry.NewOwnerID(),
		AssignedBy: entry.AssignedBy(),
		Timestamp:  time.Now(),
	}
}

type BulkAssignedEvent struct {
	EntityType EntityType
	EntityIDs  []string
	NewOwnerID string
	AssignedBy string
	Timestamp  time.Time
}

func NewBulkAssignedEvent(_ context.Context, entityType EntityType, entityIDs []string, newOwnerID, assignedBy string) *BulkAssignedEvent {
	return &BulkAssignedEvent{
		EntityType: entityType,
		EntityIDs:  entityIDs,
		NewOwnerID: newOwnerID,
		AssignedBy: assignedBy,
		Timestamp:  time.Now(),
	}
}

type OrphansReassignedEvent struct {
	DeletedUserID string
	NewOwnerID    string
	TotalRecords  int
	Timestamp     time.Time
}

func NewOrphansReassignedEvent(_ context.Context, deletedUserID, newOwnerID string, total int) *OrphansReassignedEvent {
	return &OrphansReassignedEvent{
		DeletedUserID: deletedUserID,
		NewOwnerID:    newOwnerID,
		TotalRecords:  total,
		Timestamp:     time.Now(),
	}
}

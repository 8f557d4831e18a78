package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/eventbus"
)

type AssignCommand struct {
	EntityType assignment.EntityType
	EntityID   string
	// Nil unassigns the entity.
	NewOwnerID *string
	AssignedBy string
}

type AssignResult struct {
	EntityID   string
	NewOwnerID *string
	OwnerName  string
	Message    string
}

type BulkAssignCommand struct {
	EntityIDs  []string
	EntityType assignment.EntityType
	NewOwnerID string
	AssignedBy string
}

type BulkAssignResult struct {
	UpdatedCount    int
	TotalRequested  int
	InvalidEntities []string
}

type ReassignOrphanedResult struct {
	TotalRecords int
}

// AssignmentService validates and applies ownership changes, records them in
// assignment_logs, and answers read queries over current and historical
// assignment state.
type AssignmentService struct {
	repo      assignment.Repository
	users     user.Repository
	publisher eventbus.EventBus
}

func NewAssignmentService(repo assignment.Repository, users user.Repository, publisher eventbus.EventBus) *AssignmentService {
	return &AssignmentService{
		repo:      repo,
		users:     users,
		publisher: publisher,
	}
}

// Assign transfers ownership of a single entity. Preconditions run in order:
// the entity must exist, then a non-nil owner must resolve to an active user.
// The owner write and the audit entry commit in one transaction.
func (s *AssignmentService) Assign(ctx context.Context, cmd AssignCommand) (AssignResult, error) {
	cmd.EntityID = strings.TrimSpace(cmd.EntityID)
	cmd.AssignedBy = strings.TrimSpace(cmd.AssignedBy)
	if !cmd.EntityType.IsValid() {
		return AssignResult{}, assignment.ErrInvalidInput.WithDetails("entityType is required")
	}
	if cmd.EntityID == "" {
		return AssignResult{}, assignment.ErrInvalidInput.WithDetails("entityId is required")
	}
	if cmd.AssignedBy == "" {
		return AssignResult{}, assignment.ErrInvalidInput.WithDetails("assignedBy is required")
	}

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return AssignResult{}, err
	}

	var (
		entry     assignment.LogEntry
		ownerName string
	)
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.EntityExists(txCtx, cmd.EntityType, cmd.EntityID)
		if err != nil {
			return err
		}
		if !exists {
			return assignment.ErrEntityNotFound.WithDetails(fmt.Sprintf("%s/%s", cmd.EntityType, cmd.EntityID))
		}

		if cmd.NewOwnerID != nil {
			owner, err := s.activeUser(txCtx, *cmd.NewOwnerID)
			if err != nil {
				return err
			}
			ownerName = owner.FullName()
		}

		oldOwnerID, err := s.repo.GetOwner(txCtx, cmd.EntityType, cmd.EntityID)
		if err != nil {
			return err
		}
		if err := s.repo.SetOwner(txCtx, cmd.EntityType, cmd.EntityID, cmd.NewOwnerID); err != nil {
			return err
		}

		entry, err = s.repo.AppendLog(txCtx, assignment.NewLogEntry(
			tenantID, cmd.EntityType, cmd.EntityID, oldOwnerID, cmd.NewOwnerID, cmd.AssignedBy,
		))
		return err
	})
	if err != nil {
		return AssignResult{}, err
	}

	s.publisher.Publish(assignment.NewAssignedEvent(ctx, entry))

	message := "Record unassigned"
	if cmd.NewOwnerID != nil {
		message = fmt.Sprintf("Record assigned to %s", ownerName)
	}
	return AssignResult{
		EntityID:   cmd.EntityID,
		NewOwnerID: cmd.NewOwnerID,
		OwnerName:  ownerName,
		Message:    message,
	}, nil
}

// BulkAssign applies one owner to many entities with partial-success
// semantics: ids with no matching row are collected into InvalidEntities and
// skipped, the rest are updated by a single set-based write. Unassignment is
// not supported in bulk.
func (s *AssignmentService) BulkAssign(ctx context.Context, cmd BulkAssignCommand) (BulkAssignResult, error) {
	cmd.NewOwnerID = strings.TrimSpace(cmd.NewOwnerID)
	cmd.AssignedBy = strings.TrimSpace(cmd.AssignedBy)
	if len(cmd.EntityIDs) == 0 {
		return BulkAssignResult{}, assignment.ErrInvalidInput.WithDetails("entityIds must not be empty")
	}
	if !cmd.EntityType.IsValid() {
		return BulkAssignResult{}, assignment.ErrInvalidInput.WithDetails("entityType is required")
	}
	if cmd.NewOwnerID == "" {
		return BulkAssignResult{}, assignment.ErrInvalidInput.WithDetails("newOwnerId is required")
	}
	if cmd.AssignedBy == "" {
		return BulkAssignResult{}, assignment.ErrInvalidInput.WithDetails("assignedBy is required")
	}

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return BulkAssignResult{}, err
	}

	var changes []assignment.OwnerChange
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.activeUser(txCtx, cmd.NewOwnerID); err != nil {
			return err
		}

		changes, err = s.repo.BulkSetOwner(txCtx, cmd.EntityType, cmd.EntityIDs, cmd.NewOwnerID)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil
		}

		entries := make([]assignment.LogEntry, 0, len(changes))
		for _, ch := range changes {
			entries = append(entries, assignment.NewLogEntry(
				tenantID, cmd.EntityType, ch.EntityID, ch.OldOwnerID, &cmd.NewOwnerID, cmd.AssignedBy,
			))
		}
		return s.repo.AppendLogs(txCtx, entries)
	})
	if err != nil {
		return BulkAssignResult{}, err
	}

	updated := make(map[string]struct{}, len(changes))
	updatedIDs := make([]string, 0, len(changes))
	for _, ch := range changes {
		updated[ch.EntityID] = struct{}{}
		updatedIDs = append(updatedIDs, ch.EntityID)
	}
	invalid := make([]string, 0)
	for _, id := range cmd.EntityIDs {
		if _, ok := updated[id]; !ok {
			invalid = append(invalid, id)
		}
	}

	if len(updatedIDs) > 0 {
		s.publisher.Publish(assignment.NewBulkAssignedEvent(ctx, cmd.EntityType, updatedIDs, cmd.NewOwnerID, cmd.AssignedBy))
	}

	return BulkAssignResult{
		UpdatedCount:    len(updatedIDs),
		TotalRequested:  len(cmd.EntityIDs),
		InvalidEntities: invalid,
	}, nil
}

// TeamMembers returns all active users usable as assignment targets.
func (s *AssignmentService) TeamMembers(ctx context.Context) ([]user.User, error) {
	return s.users.GetActive(ctx)
}

// History returns the audit trail for one entity, most recent first. The
// entity itself must exist; an empty history is not an error.
func (s *AssignmentService) History(ctx context.Context, entityType assignment.EntityType, entityID string) ([]assignment.LogEntry, error) {
	entityID = strings.TrimSpace(entityID)
	if !entityType.IsValid() || entityID == "" {
		return nil, assignment.ErrInvalidInput.WithDetails("entityType and entityId are required")
	}
	exists, err := s.repo.EntityExists(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, assignment.ErrEntityNotFound.WithDetails(fmt.Sprintf("%s/%s", entityType, entityID))
	}
	return s.repo.HistoryFor(ctx, entityType, entityID)
}

// Stats returns a current ownership snapshot. Admin only.
func (s *AssignmentService) Stats(ctx context.Context) (assignment.Stats, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return assignment.Stats{}, err
	}
	return s.repo.Stats(ctx)
}

// ReassignOrphaned re-points every entity owned by a deactivated or deleted
// user to a new active owner, logging each change. Admin only.
func (s *AssignmentService) ReassignOrphaned(ctx context.Context, deletedUserID, newOwnerID string) (ReassignOrphanedResult, error) {
	if err := composables.RequireAdmin(ctx); err != nil {
		return ReassignOrphanedResult{}, err
	}
	deletedUserID = strings.TrimSpace(deletedUserID)
	newOwnerID = strings.TrimSpace(newOwnerID)
	if deletedUserID == "" || newOwnerID == "" {
		return ReassignOrphanedResult{}, assignment.ErrInvalidInput.WithDetails("deletedUserId and newOwnerId are required")
	}

	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return ReassignOrphanedResult{}, err
	}
	actor, err := composables.UseUser(ctx)
	if err != nil {
		return ReassignOrphanedResult{}, err
	}

	total := 0
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.activeUser(txCtx, newOwnerID); err != nil {
			return err
		}

		for _, entityType := range assignment.EntityTypes() {
			changes, err := s.repo.ReassignOwned(txCtx, entityType, deletedUserID, newOwnerID)
			if err != nil {
				return err
			}
			if len(changes) == 0 {
				continue
			}
			entries := make([]assignment.LogEntry, 0, len(changes))
			for _, ch := range changes {
				entries = append(entries, assignment.NewLogEntry(
					tenantID, entityType, ch.EntityID, ch.OldOwnerID, &newOwnerID, actor.ID(),
				))
			}
			if err := s.repo.AppendLogs(txCtx, entries); err != nil {
				return err
			}
			total += len(changes)
		}
		return nil
	})
	if err != nil {
		return ReassignOrphanedResult{}, err
	}

	s.publisher.Publish(assignment.NewOrphansReassignedEvent(ctx, deletedUserID, newOwnerID, total))

	return ReassignOrphanedResult{TotalRecords: total}, nil
}

func (s *AssignmentService) activeUser(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, assignment.ErrInvalidUser.WithDetails(id)
	}
	if !u.IsActive() {
		return user.User{}, assignment.ErrInvalidUser.WithDetails(id)
	}
	return u, nil
}

package dtos

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/modules/crm/domain/aggregates/assignment"
	"github.com/talentpipe/crm/pkg/constants"
)

type AssignRequest struct {
	EntityType string  `json:"entityType" validate:"required"`
	EntityID   string  `json:"entityId" validate:"required"`
	NewOwnerID *string `json:"newOwnerId"`
	AssignedBy string  `json:"assignedBy" validate:"required"`
}

func (d *AssignRequest) Normalize() {
	d.EntityType = strings.TrimSpace(d.EntityType)
	d.EntityID = strings.TrimSpace(d.EntityID)
	d.AssignedBy = strings.TrimSpace(d.AssignedBy)
	if d.NewOwnerID != nil {
		v := strings.TrimSpace(*d.NewOwnerID)
		if v == "" {
			d.NewOwnerID = nil
		} else {
			d.NewOwnerID = &v
		}
	}
}

func (d *AssignRequest) Ok() (map[string]string, bool) {
	d.Normalize()
	return validateStruct(d)
}

type BulkAssignRequest struct {
	EntityIDs  []string `json:"entityIds" validate:"required,min=1"`
	EntityType string   `json:"entityType" validate:"required"`
	NewOwnerID string   `json:"newOwnerId" validate:"required"`
	AssignedBy string   `json:"assignedBy" validate:"required"`
}

func (d *BulkAssignRequest) Normalize() {
	d.EntityType = strings.TrimSpace(d.EntityType)
	d.NewOwnerID = strings.TrimSpace(d.NewOwnerID)
	d.AssignedBy = strings.TrimSpace(d.AssignedBy)
}

func (d *BulkAssignRequest) Ok() (map[string]string, bool) {
	d.Normalize()
	return validateStruct(d)
}

type ReassignOrphanedRequest struct {
	DeletedUserID string `json:"deletedUserId" validate:"required"`
	NewOwnerID    string `json:"newOwnerId" validate:"required"`
}

func (d *ReassignOrphanedRequest) Normalize() {
	d.DeletedUserID = strings.TrimSpace(d.DeletedUserID)
	d.NewOwnerID = strings.TrimSpace(d.NewOwnerID)
}

func (d *ReassignOrphanedRequest) Ok() (map[string]string, bool) {
	d.Normalize()
	return validateStruct(d)
}

func validateStruct(v any) (map[string]string, bool) {
	errs := constants.Validate.Struct(v)
	if errs == nil {
		return map[string]string{}, true
	}
	out := make(map[string]string)
	for _, fe := range errs.(validator.ValidationErrors) {
		out[fe.Field()] = fe.Field() + " is " + fe.Tag()
	}
	return out, false
}

type TeamMemberResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func TeamMemberFromDomain(u user.User) TeamMemberResponse {
	return TeamMemberResponse{
		ID:        u.ID(),
		FullName:  u.FullName(),
		Email:     u.Email(),
		Role:      string(u.Role()),
		AvatarURL: u.AvatarURL(),
	}
}

type LogEntryResponse struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OldOwnerID *string   `json:"old_owner_id"`
	NewOwnerID *string   `json:"new_owner_id"`
	AssignedBy string    `json:"assigned_by"`
	Timestamp  time.Time `json:"timestamp"`
}

func LogEntryFromDomain(e assignment.LogEntry) LogEntryResponse {
	return LogEntryResponse{
		ID:         e.ID(),
		EntityType: string(e.EntityType()),
		EntityID:   e.EntityID(),
		OldOwnerID: e.OldOwnerID(),
		NewOwnerID: e.NewOwnerID(),
		AssignedBy: e.AssignedBy(),
		Timestamp:  e.CreatedAt(),
	}
}

type UserStatResponse struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Count    int64  `json:"count"`
}

type StatsResponse struct {
	TotalAssigned int64              `json:"totalAssigned"`
	Unassigned    int64              `json:"unassigned"`
	ByUser        []UserStatResponse `json:"byUser"`
}

func StatsFromDomain(s assignment.Stats) StatsResponse {
	byUser := make([]UserStatResponse, 0, len(s.ByUser))
	for _, u := range s.ByUser {
		byUser = append(byUser, UserStatResponse{UserID: u.UserID, UserName: u.UserName, Count: u.Count})
	}
	return StatsResponse{
		TotalAssigned: s.TotalAssigned,
		Unassigned:    s.Unassigned,
		ByUser:        byUser,
	}
}

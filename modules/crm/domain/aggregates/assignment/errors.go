package assignment

import "github.com/talentpipe/crm/pkg/serrors"

var (
	ErrEntityNotFound = serrors.NewError("ASSIGN_ENTITY_NOT_FOUND", "entity not found", "")
	ErrInvalidUser    = serrors.NewError("ASSIGN_INVALID_USER", "target user missing or inactive", "")
	ErrInvalidInput   = serrors.NewError("ASSIGN_INVALID_INPUT", "missing or empty required field", "")
)

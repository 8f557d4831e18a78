package user

import (
	"context"
	"time"
)

type CreatedEvent struct {
	Result    User
	Timestamp time.Time
}

func NewCreatedEvent(_ context.Context, result User) *CreatedEvent {
	return &CreatedEvent{Result: result, Timestamp: time.Now()}
}

type DeactivatedEvent struct {
	UserID    string
	Timestamp time.Time
}

func NewDeactivatedEvent(_ context.Context, userID string) *DeactivatedEvent {
	return &DeactivatedEvent{UserID: userID, Timestamp: time.Now()}
}

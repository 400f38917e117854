package audit

import (
	"context"
	"sync"

	"github.com/ricardomaia/fundeira/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeUserDeactivated = "user_deactivate"
	EventTypeUserReactivated = "user_reactivate"
	EventTypeUserApproved    = "user_approved"
	EventTypeCreditsWarning  = "credits_warning"
)

// LifecycleRecord describes an account lifecycle transition for the audit
// trail. ActorID is zero for self-service actions.
type LifecycleRecord struct {
	UserID    uint
	ActorID   uint
	IP        string
	UserAgent string
	Reason    string
}

func record(ctx context.Context, eventType string, rec LifecycleRecord) error {
	if auditRepo == nil {
		return nil
	}
	return auditRepo.RecordEvent(ctx, &model.AuditEvent{
		UserID:    rec.UserID,
		ActorID:   rec.ActorID,
		EventType: eventType,
		IP:        rec.IP,
		UserAgent: rec.UserAgent,
		Reason:    rec.Reason,
	})
}

func RecordDeactivated(ctx context.Context, rec LifecycleRecord) error {
	return record(ctx, EventTypeUserDeactivated, rec)
}

func RecordReactivated(ctx context.Context, rec LifecycleRecord) error {
	return record(ctx, EventTypeUserReactivated, rec)
}

func RecordApproved(ctx context.Context, rec LifecycleRecord) error {
	return record(ctx, EventTypeUserApproved, rec)
}

func RecordCreditsWarning(ctx context.Context, rec LifecycleRecord) error {
	return record(ctx, EventTypeCreditsWarning, rec)
}

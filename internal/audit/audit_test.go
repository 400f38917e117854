package audit

import (
	"context"
	"testing"

	"github.com/ricardomaia/fundeira/model"
)

type capturingRepo struct {
	events []*model.AuditEvent
}

func (r *capturingRepo) RecordEvent(ctx context.Context, event *model.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

// withRepo swaps the package repository for the duration of a test, bypassing
// the once-only production initialization.
func withRepo(t *testing.T, repo AuditEventRepository) {
	t.Helper()
	previous := auditRepo
	auditRepo = repo
	t.Cleanup(func() { auditRepo = previous })
}

func TestRecordLifecycleEvents(t *testing.T) {
	repo := &capturingRepo{}
	withRepo(t, repo)

	ctx := context.Background()
	rec := LifecycleRecord{UserID: 7, ActorID: 1, IP: "10.0.0.1", Reason: "requested by owner"}

	if err := RecordDeactivated(ctx, rec); err != nil {
		t.Fatalf("record deactivated: %v", err)
	}
	if err := RecordReactivated(ctx, rec); err != nil {
		t.Fatalf("record reactivated: %v", err)
	}
	if err := RecordApproved(ctx, rec); err != nil {
		t.Fatalf("record approved: %v", err)
	}

	if len(repo.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(repo.events))
	}
	if repo.events[0].EventType != EventTypeUserDeactivated {
		t.Fatalf("unexpected first event type: %q", repo.events[0].EventType)
	}
	if repo.events[1].EventType != EventTypeUserReactivated {
		t.Fatalf("unexpected second event type: %q", repo.events[1].EventType)
	}
	if repo.events[0].UserID != 7 || repo.events[0].Reason != "requested by owner" {
		t.Fatalf("expected record fields carried over, got %+v", repo.events[0])
	}
}

func TestRecordWithoutRepositoryIsNoop(t *testing.T) {
	withRepo(t, nil)

	if err := RecordDeactivated(context.Background(), LifecycleRecord{UserID: 1}); err != nil {
		t.Fatalf("expected no-op without a repository, got %v", err)
	}
}

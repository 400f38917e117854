package finance

import (
	"context"
	"testing"

	"github.com/ricardomaia/fundeira/internal/store"
	"github.com/ricardomaia/fundeira/model"
	"gorm.io/gorm"
)

type stubTotalRepository struct {
	totals map[uint]*model.UserTotal
	reads  int
}

func (r *stubTotalRepository) ByUserID(ctx context.Context, userID uint) (*model.UserTotal, error) {
	r.reads++
	total, ok := r.totals[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return total, nil
}

func newTestSummaryService(totals map[uint]*model.UserTotal) (*SummaryService, *stubTotalRepository) {
	repo := &stubTotalRepository{totals: totals}
	return NewSummaryService(repo, store.NewMemoryStorage()), repo
}

func TestSummaryMissingRowReadsAsZero(t *testing.T) {
	service, _ := newTestSummaryService(nil)

	summary, err := service.Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CreditCents != 0 || summary.TotalContributedProjects != 0 {
		t.Fatalf("expected zero aggregate, got %+v", summary)
	}
}

func TestSummaryServesFromCache(t *testing.T) {
	service, repo := newTestSummaryService(map[uint]*model.UserTotal{
		7: {UserID: 7, CreditCents: 1500, TotalContributedProjects: 3},
	})

	first, err := service.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if first.CreditCents != 1500 || first.TotalContributedProjects != 3 {
		t.Fatalf("unexpected aggregate: %+v", first)
	}
	if repo.reads != 1 {
		t.Fatalf("expected one store read, got %d", repo.reads)
	}

	// mutate the backing row; the cached value must win within the TTL
	repo.totals[7].CreditCents = 9999
	second, err := service.Summary(context.Background(), 7)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if second.CreditCents != 1500 {
		t.Fatalf("expected cached value, got %+v", second)
	}
	if repo.reads != 1 {
		t.Fatalf("expected cache hit, store reads = %d", repo.reads)
	}
}

func TestInvalidateDropsCachedAggregate(t *testing.T) {
	service, repo := newTestSummaryService(map[uint]*model.UserTotal{
		7: {UserID: 7, CreditCents: 1500},
	})

	if _, err := service.Summary(context.Background(), 7); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	repo.totals[7].CreditCents = 2500

	if err := service.Invalidate(context.Background(), 7); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	credits, err := service.Credits(context.Background(), 7)
	if err != nil {
		t.Fatalf("credits after invalidate: %v", err)
	}
	if credits != 2500 {
		t.Fatalf("expected fresh value after invalidation, got %d", credits)
	}
}

func TestInvalidateUncachedAccount(t *testing.T) {
	service, _ := newTestSummaryService(nil)

	if err := service.Invalidate(context.Background(), 42); err != nil {
		t.Fatalf("expected invalidating a cold key to succeed, got %v", err)
	}
}

func TestCreditsAndTotalContributedProjects(t *testing.T) {
	service, _ := newTestSummaryService(map[uint]*model.UserTotal{
		3: {UserID: 3, CreditCents: 720, TotalContributedProjects: 12},
	})

	credits, err := service.Credits(context.Background(), 3)
	if err != nil {
		t.Fatalf("credits: %v", err)
	}
	if credits != 720 {
		t.Fatalf("expected 720 cents, got %d", credits)
	}

	total, err := service.TotalContributedProjects(context.Background(), 3)
	if err != nil {
		t.Fatalf("total contributed projects: %v", err)
	}
	if total != 12 {
		t.Fatalf("expected 12 projects, got %d", total)
	}
}

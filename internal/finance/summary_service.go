package finance

import (
	"context"
	"errors"
	"strconv"

	"github.com/ricardomaia/fundeira/internal/store"
	"github.com/ricardomaia/fundeira/params"
	"gorm.io/gorm"
)

// Summary is the per-account financial aggregate served to callers. Values
// come from the precomputed user_totals row; a missing row reads as zero.
type Summary struct {
	CreditCents              int64 `json:"creditCents" redis:"credit_cents"`
	TotalContributedProjects int64 `json:"totalContributedProjects" redis:"total_contributed_projects"`
}

// SummaryService answers credit and contributed-project reads from the
// aggregate, through a short-lived cache. It trades freshness for read speed;
// the aggregate recompute runs elsewhere.
type SummaryService struct {
	totals UserTotalRepository
	cache  store.Store[Summary]
}

func NewSummaryService(totals UserTotalRepository, storage store.Storage) *SummaryService {
	return &SummaryService{
		totals: totals,
		cache:  store.New[Summary](storage, params.SummaryKeyPrefix),
	}
}

func cacheKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// Summary returns the aggregate for the account, zero-valued when no
// aggregate row exists yet.
func (s *SummaryService) Summary(ctx context.Context, userID uint) (Summary, error) {
	if cached, err := s.cache.Get(ctx, cacheKey(userID)); err == nil {
		return cached, nil
	}

	total, err := s.totals.ByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		CreditCents:              total.CreditCents,
		TotalContributedProjects: total.TotalContributedProjects,
	}
	_ = s.cache.Set(ctx, cacheKey(userID), summary, params.SummaryCacheTTL)
	return summary, nil
}

// Credits returns the current credit balance in cents, never negative in
// practice and zero when the account has no aggregate row.
func (s *SummaryService) Credits(ctx context.Context, userID uint) (int64, error) {
	summary, err := s.Summary(ctx, userID)
	return summary.CreditCents, err
}

// TotalContributedProjects counts distinct projects with at least one
// confirmed contribution from the account.
func (s *SummaryService) TotalContributedProjects(ctx context.Context, userID uint) (int64, error) {
	summary, err := s.Summary(ctx, userID)
	return summary.TotalContributedProjects, err
}

// Invalidate drops the cached aggregate so the next read hits the store.
func (s *SummaryService) Invalidate(ctx context.Context, userID uint) error {
	err := s.cache.Delete(ctx, cacheKey(userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

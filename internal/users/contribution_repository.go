package users

import (
	"context"

	"github.com/ricardomaia/fundeira/model"
	"gorm.io/gorm"
)

type ContributionRepository interface {
	WithTx(tx *gorm.DB) ContributionRepository
	AnonymizeByUser(ctx context.Context, userID uint) (int64, error)
	ExistsForProject(ctx context.Context, userID uint, projectID uint, states []string) (bool, error)
}

type contributionRepository struct {
	db *gorm.DB
}

// AnonymizeByUser flags every contribution owned by the user as anonymous.
// Part of the deactivation cascade.
func (r *contributionRepository) AnonymizeByUser(ctx context.Context, userID uint) (int64, error) {
	ret := r.db.WithContext(ctx).Model(&model.Contribution{}).
		Where("user_id = ?", userID).
		Update("anonymous", true)
	return ret.RowsAffected, ret.Error
}

func (r *contributionRepository) ExistsForProject(ctx context.Context, userID uint, projectID uint, states []string) (bool, error) {
	var matched int64
	err := r.db.WithContext(ctx).Model(&model.Contribution{}).
		Where("user_id = ? AND project_id = ? AND state IN ?", userID, projectID, states).
		Count(&matched).Error
	return matched > 0, err
}

func (r *contributionRepository) WithTx(tx *gorm.DB) ContributionRepository {
	return NewContributionRepository(tx)
}

func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &contributionRepository{db}
}

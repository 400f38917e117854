package finance

import (
	"context"

	"github.com/ricardomaia/fundeira/model"
	"gorm.io/gorm"
)

type UserTotalRepository interface {
	ByUserID(ctx context.Context, userID uint) (*model.UserTotal, error)
}

type userTotalRepository struct {
	db *gorm.DB
}

func (r *userTotalRepository) ByUserID(ctx context.Context, userID uint) (*model.UserTotal, error) {
	var total model.UserTotal
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&total).Error; err != nil {
		return nil, err
	}
	return &total, nil
}

func NewUserTotalRepository(db *gorm.DB) UserTotalRepository {
	return &userTotalRepository{db}
}

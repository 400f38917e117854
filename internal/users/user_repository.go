package users

import (
	"context"

	"github.com/ricardomaia/fundeira/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	List(ctx context.Context, scopes ...Scope) ([]*model.User, error)
	First(ctx context.Context, scopes ...Scope) (*model.User, error)
	FirstPreload(ctx context.Context, association string, scopes ...Scope) (*model.User, error)
	ByID(ctx context.Context, id uint) (*model.User, error)
	LockFirst(ctx context.Context, scopes ...Scope) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) List(ctx context.Context, scopes ...Scope) ([]*model.User, error) {
	var found []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).Scopes(scopes...).Find(&found).Error
	return found, err
}

func (r *userRepository) First(ctx context.Context, scopes ...Scope) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Model(&model.User{}).Scopes(scopes...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FirstPreload(ctx context.Context, association string, scopes ...Scope) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).Preload(association).Scopes(scopes...).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ByID(ctx context.Context, id uint) (*model.User, error) {
	return r.First(ctx, ByID(id))
}

// LockFirst reads a single account under a row lock. Only effective inside a
// transaction and on backends that support FOR UPDATE.
func (r *userRepository) LockFirst(ctx context.Context, scopes ...Scope) (*model.User, error) {
	tx := r.db.WithContext(ctx).Model(&model.User{})
	if r.db.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user model.User
	if err := tx.Scopes(scopes...).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error) {
	ret := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(columns)
	return ret.RowsAffected, ret.Error
}

func (r *userRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return NewUserRepository(tx)
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}

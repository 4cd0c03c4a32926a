package repository

import (
	"agrihub/internal/models"
	"context"

	"gorm.io/gorm"
)

type GroupRepository interface {
	FirstOrCreate(ctx context.Context, name string) (*models.Group, error)
	AddMember(ctx context.Context, userID uint, group *models.Group) error
	WithTx(tx *gorm.DB) GroupRepository
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) WithTx(tx *gorm.DB) GroupRepository {
	return &groupRepository{db: tx}
}

func (r *groupRepository) FirstOrCreate(ctx context.Context, name string) (*models.Group, error) {
	group := models.Group{Name: name}
	err := r.db.WithContext(ctx).Where(models.Group{Name: name}).FirstOrCreate(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) AddMember(ctx context.Context, userID uint, group *models.Group) error {
	user := models.User{ID: userID}
	return r.db.WithContext(ctx).Model(&user).Association("Groups").Append(group)
}

package services

import (
	"context"
	"fmt"

	"agrihub/internal/models"
	"agrihub/internal/repository"

	"gorm.io/gorm"
)

// RoleService assigns the enumerated marketplace roles. A role's group row is created on first use.
type RoleService interface {
	AssignRole(ctx context.Context, userID uint, role models.Role) error
	WithTx(tx *gorm.DB) RoleService
}

type roleService struct {
	groupRepo repository.GroupRepository
}

func NewRoleService(groupRepo repository.GroupRepository) RoleService {
	return &roleService{groupRepo: groupRepo}
}

func (s *roleService) WithTx(tx *gorm.DB) RoleService {
	return &roleService{groupRepo: s.groupRepo.WithTx(tx)}
}

func (s *roleService) AssignRole(ctx context.Context, userID uint, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	group, err := s.groupRepo.FirstOrCreate(ctx, string(role))
	if err != nil {
		return fmt.Errorf("failed to load %s group: %w", role, err)
	}
	if err := s.groupRepo.AddMember(ctx, userID, group); err != nil {
		return fmt.Errorf("failed to add user %d to %s: %w", userID, role, err)
	}
	return nil
}

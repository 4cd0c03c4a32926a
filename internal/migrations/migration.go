package migrations

import (
	"context"
	"fmt"

	"agrihub/internal/logger"
	"agrihub/internal/models"
	"agrihub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Group{},
	&models.FarmerProfile{},
	&models.Address{},
	&models.Category{},
	&models.Product{},
	&models.Cart{},
	&models.Order{},
	&models.Inquiry{},
}

// RunMigrations brings the schema up to date and creates default data
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := db.WithContext(ctx).AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createDefaultData(ctx, db); err != nil {
		return fmt.Errorf("failed to create default data: %w", err)
	}

	logger.Info("Database migrations completed")
	return nil
}

// createDefaultData makes sure every role group exists.
func createDefaultData(ctx context.Context, db *gorm.DB) error {
	groupRepo := repository.NewGroupRepository(db)
	for _, role := range models.Roles {
		group, err := groupRepo.FirstOrCreate(ctx, string(role))
		if err != nil {
			return err
		}
		logger.Debug("Role group ready", zap.String("name", group.Name), zap.Uint("id", group.ID))
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agrihub/internal/migrations"
	"agrihub/internal/models"
	"agrihub/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	passwordCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// One connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := migrations.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{Title: slug, Slug: slug, IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	return category
}

type productOption func(*models.Product)

func inactive() productOption { return func(p *models.Product) { p.IsActive = false } }
func featured() productOption { return func(p *models.Product) { p.IsFeatured = true } }

func createProduct(t *testing.T, db *gorm.DB, category *models.Category, title, price string, opts ...productOption) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:        title,
		Slug:         title,
		BatchID:      "batch-" + title,
		PricePerUnit: decimal.RequireFromString(price),
		UnitType:     models.UnitKilogram,
		CategoryID:   category.ID,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := db.Omit("Category").Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func createAddress(t *testing.T, db *gorm.DB, user *models.User) *models.Address {
	t.Helper()
	address := &models.Address{UserID: user.ID, Locality: "Westlands", City: "Nairobi", State: "Nairobi"}
	if err := db.Create(address).Error; err != nil {
		t.Fatalf("failed to create address: %v", err)
	}
	return address
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}

func newCartService(db *gorm.DB) CartService {
	return NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		repository.NewAddressRepository(db),
	)
}

// recordingSender captures messages instead of sending them.
type recordingSender struct {
	mu       sync.Mutex
	phones   []string
	messages []string
	err      error
}

func (s *recordingSender) SendTextMessage(_ context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phones = append(s.phones, phone)
	s.messages = append(s.messages, message)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
	}
	msg, ok := verr.Fields[field]
	if !ok {
		t.Fatalf("expected a %q field error, got %v", field, verr.Fields)
	}
	return msg
}

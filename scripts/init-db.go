package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"agrihub/internal/config"
	"agrihub/internal/database"
	"agrihub/internal/migrations"
	"agrihub/internal/models"
	"agrihub/internal/repository"
	"agrihub/internal/services"
	"agrihub/internal/storage"
)

type demoProduce struct {
	category string
	input    services.ProduceInput
}

var demoCategories = []services.CategoryInput{
	{Title: "Vegetables", Description: "Fresh vegetables harvested this week.", IsActive: true, IsFeatured: true},
	{Title: "Fruits", Description: "Seasonal fruit from local orchards.", IsActive: true, IsFeatured: true},
	{Title: "Grains", Description: "Maize, beans and other dry produce.", IsActive: true},
}

var demoProduceItems = []demoProduce{
	{"vegetables", services.ProduceInput{Title: "Roma Tomatoes", Slug: "roma-tomatoes", BatchID: "VEG-0001", Origin: "Kirinyaga", PricePerUnit: "2.00", UnitType: "CRATE", HarvestDate: "2024-03-01", IsActive: true, IsFeatured: true}},
	{"vegetables", services.ProduceInput{Title: "Sukuma Wiki", Slug: "sukuma-wiki", BatchID: "VEG-0002", Origin: "Kiambu", PricePerUnit: "0.80", UnitType: "KG", IsActive: true, IsFeatured: true}},
	{"fruits", services.ProduceInput{Title: "Hass Avocado", Slug: "hass-avocado", BatchID: "FRU-0001", Origin: "Murang'a", PricePerUnit: "3.50", UnitType: "PIECE", IsActive: true, IsFeatured: true}},
	{"grains", services.ProduceInput{Title: "Dry Maize", Slug: "dry-maize", BatchID: "GRN-0001", Origin: "Trans Nzoia", PricePerUnit: "45.00", UnitType: "BAG", IsActive: true}},
}

func main() {
	fmt.Println("Initializing database...")
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close(db)

	fmt.Println("Creating tables...")
	if err := migrations.RunMigrations(ctx, db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	userService := services.NewUserService(
		repository.NewTransactor(db),
		userRepo,
		repository.NewFarmerProfileRepository(db),
		repository.NewAddressRepository(db),
		services.NewRoleService(repository.NewGroupRepository(db)),
	)
	catalogService := services.NewCatalogService(categoryRepo, productRepo)
	produceService := services.NewProduceService(productRepo, categoryRepo,
		storage.NewLocalImageStore(cfg.MediaRoot), services.ProducePolicy{})

	// Create demo farmer
	fmt.Println("Creating demo farmer...")
	farmer, err := userService.Register(ctx, services.RegisterInput{
		Username:  "demo_farmer",
		Email:     "farmer@agrihub.local",
		Password1: "harvest-2024",
		Password2: "harvest-2024",
		IsFarmer:  true,
	})
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Println("Demo farmer already exists")
		farmer, err = userRepo.GetByUsername(ctx, "demo_farmer")
		if err != nil {
			log.Fatal("Failed to load demo farmer:", err)
		}
	case err != nil:
		log.Fatal("Failed to create demo farmer:", err)
	default:
		fmt.Println("Username: demo_farmer")
		fmt.Println("Password: harvest-2024")
	}
	actor := services.Actor{UserID: farmer.ID, Username: farmer.Username, Roles: []string{string(models.RoleFarmerSeller)}}

	fmt.Println("Creating crop types...")
	for _, input := range demoCategories {
		if _, err := catalogService.CreateCategory(ctx, input); err != nil && !errors.As(err, &verr) {
			log.Fatal("Failed to create category:", err)
		}
	}

	fmt.Println("Creating produce...")
	for _, item := range demoProduceItems {
		category, err := categoryRepo.GetBySlug(ctx, item.category)
		if err != nil {
			log.Fatal("Failed to load category:", err)
		}
		input := item.input
		input.CategoryID = category.ID
		if _, err := produceService.Create(ctx, actor, input, nil); err != nil && !errors.As(err, &verr) {
			log.Fatal("Failed to create produce:", err)
		}
	}

	products, err := catalogService.Search(ctx, "")
	if err != nil {
		log.Fatal("Failed to list produce:", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCROP TYPE\tPRICE\tUNIT\tFEATURED")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n", p.ID, p.Title, p.Category.Title, p.PricePerUnit.StringFixed(2), p.UnitType, p.IsFeatured)
	}
	w.Flush()

	fmt.Println("Database initialization completed successfully!")
}

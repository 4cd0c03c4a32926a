package services

import (
	"context"
	"fmt"
	"io"

	"agrihub/internal/repository"

	"github.com/tealeg/xlsx"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var catalogExportHeaders = []string{
	"ID", "Title", "Slug", "Batch ID", "Crop Type", "Origin",
	"Price Per Unit", "Unit", "Harvest Date", "Farmer ID",
	"Active", "Featured", "Image", "Created At",
}

type ExportService interface {
	ExportCatalog(ctx context.Context, w io.Writer) error
}

type exportService struct {
	productRepo repository.ProductRepository
}

func NewExportService(productRepo repository.ProductRepository) ExportService {
	return &exportService{productRepo: productRepo}
}

// ExportCatalog writes every product, active or not, as an xlsx workbook with a single "Produce" sheet.
func (s *exportService) ExportCatalog(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.Filter(ctx, repository.ProductFilter{})
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Produce")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range catalogExportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Title)
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetString(p.BatchID)
		row.AddCell().SetString(p.Category.Title)
		row.AddCell().SetString(p.Origin)
		row.AddCell().SetString(p.PricePerUnit.StringFixed(2))
		row.AddCell().SetString(p.UnitType.Label())

		harvest := ""
		if p.HarvestDate != nil {
			harvest = p.HarvestDate.Format(harvestDateLayout)
		}
		row.AddCell().SetString(harvest)

		farmer := ""
		if p.FarmerID != nil {
			farmer = fmt.Sprint(*p.FarmerID)
		}
		row.AddCell().SetString(farmer)

		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetBool(p.IsFeatured)
		row.AddCell().SetString(p.ProductImage)
		row.AddCell().SetString(p.CreatedAt.Format(exportTimeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

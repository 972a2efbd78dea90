package service

import (
	"context"
	"fmt"
	"io"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/config"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/excel"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/mapping"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/rs/zerolog"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// ExportProducts streams the full product catalog to w as a workbook.
// Batches bound memory; the totals row and low-stock highlighting are
// applied by the writer's finalize pass.
func (s *exportService) ExportProducts(ctx context.Context, w io.Writer, sheetName string) (int, error) {
	catNames, err := s.categoryNames(ctx)
	if err != nil {
		return 0, err
	}

	writer, err := excel.NewWriter(excel.WriterOptions{
		SheetName: s.sheet(sheetName),
		Columns: []excel.Column{
			{Field: "sku", Header: "SKU", Format: excel.FormatText, Width: 18},
			{Field: "name", Header: "Name", Format: excel.FormatText, Width: 32},
			{Field: "description", Header: "Description", Format: excel.FormatText, Width: 40},
			{Field: "category", Header: "Category", Format: excel.FormatText, Width: 20},
			{Field: "price", Header: "Price", Format: excel.FormatCurrency, Width: 14},
			{Field: "stock", Header: "Stock", Format: excel.FormatInteger, Width: 10},
			{Field: "image_url", Header: "Image URL", Format: excel.FormatText, Width: 40},
		},
		Totals: true,
		Highlight: &excel.HighlightRule{
			Field: "stock",
			Below: float64(s.cfg.Export.LowStockLimit),
		},
	}, s.log)
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	batchSize := s.cfg.Export.BatchSize
	batch := make([]map[string]interface{}, 0, batchSize)

	err = s.repos.Product.StreamAll(ctx, func(p *models.Product) error {
		batch = append(batch, map[string]interface{}{
			"sku":         p.SKU,
			"name":        p.Name,
			"description": p.Description,
			"category":    catNames[p.CategoryID],
			"price":       p.Price,
			"stock":       p.Stock,
			"image_url":   p.ImageURL,
		})
		if len(batch) >= batchSize {
			if err := writer.WriteBatch(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("product export failed: %w", err)
	}
	if len(batch) > 0 {
		if err := writer.WriteBatch(batch); err != nil {
			return 0, err
		}
	}

	count := writer.RowCount()
	if _, err := writer.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.log.Info().Int("rows", count).Msg("Product export written")
	return count, nil
}

// ExportCustomers streams all customers to w as a workbook
func (s *exportService) ExportCustomers(ctx context.Context, w io.Writer, sheetName string) (int, error) {
	writer, err := excel.NewWriter(excel.WriterOptions{
		SheetName: s.sheet(sheetName),
		Columns: []excel.Column{
			{Field: "email", Header: "Email", Format: excel.FormatText, Width: 30},
			{Field: "name", Header: "Name", Format: excel.FormatText, Width: 28},
			{Field: "phone", Header: "Phone", Format: excel.FormatText, Width: 18},
			{Field: "company", Header: "Company", Format: excel.FormatText, Width: 26},
		},
	}, s.log)
	if err != nil {
		return 0, err
	}
	defer writer.Close()

	batchSize := s.cfg.Export.BatchSize
	batch := make([]map[string]interface{}, 0, batchSize)

	err = s.repos.Customer.StreamAll(ctx, func(c *models.Customer) error {
		batch = append(batch, map[string]interface{}{
			"email":   c.Email,
			"name":    c.Name,
			"phone":   c.Phone,
			"company": c.Company,
		})
		if len(batch) >= batchSize {
			if err := writer.WriteBatch(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("customer export failed: %w", err)
	}
	if len(batch) > 0 {
		if err := writer.WriteBatch(batch); err != nil {
			return 0, err
		}
	}

	count := writer.RowCount()
	if _, err := writer.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.log.Info().Int("rows", count).Msg("Customer export written")
	return count, nil
}

// WriteTemplate writes a header-only workbook for an import kind, derived
// from the active field mapping.
func (s *exportService) WriteTemplate(kind string, w io.Writer) error {
	fm, ok := mapping.ForKind(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return excel.WriteTemplate(w, s.cfg.Export.SheetName, fm.TemplateHeaders())
}

// Counts returns entity counts for the metrics endpoint
func (s *exportService) Counts(ctx context.Context) (map[string]int, error) {
	products, err := s.repos.Product.Count(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repos.Category.Count(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.repos.Customer.Count(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]int{
		"products":   products,
		"categories": categories,
		"customers":  customers,
	}, nil
}

// sheet resolves a per-invocation sheet name override against the default
func (s *exportService) sheet(override string) string {
	if override != "" {
		return override
	}
	return s.cfg.Export.SheetName
}

func (s *exportService) categoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := s.repos.Category.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

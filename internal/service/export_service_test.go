package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/mocks"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func newTestExportService(t *testing.T) (*exportService, *mocks.MockProductRepository, *mocks.MockCategoryRepository) {
	t.Helper()
	repos, products, categories, _ := mocks.NewRepositories()
	return newExportService(repos, testConfig(t), zerolog.Nop()), products, categories
}

func seedProduct(products *mocks.MockProductRepository, sku, name, categoryID string, price string, stock int) {
	products.Products[sku] = &models.Product{
		ID:         "id-" + sku,
		SKU:        sku,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: categoryID,
	}
}

func TestExportProducts(t *testing.T) {
	svc, products, categories := newTestExportService(t)

	cat := models.Category{Name: "Electronics", Slug: "electronics"}
	if err := categories.Create(context.Background(), &cat); err != nil {
		t.Fatal(err)
	}
	seedProduct(products, "A-1", "Kettle", cat.ID, "149.50", 3)
	seedProduct(products, "A-2", "Toaster", cat.ID, "99.90", 25)

	var buf bytes.Buffer
	count, err := svc.ExportProducts(context.Background(), &buf, "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatal(err)
	}
	// Header, two data rows sorted by SKU, totals row
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][0] != "SKU" || rows[0][4] != "Price" {
		t.Errorf("unexpected header row %v", rows[0])
	}
	if rows[1][0] != "A-1" || rows[1][3] != "Electronics" {
		t.Errorf("unexpected first data row %v", rows[1])
	}
	if rows[3][0] != "TOTAL" {
		t.Errorf("last row = %v, want totals", rows[3])
	}
}

func TestExportProductsEmptyCatalog(t *testing.T) {
	svc, _, _ := newTestExportService(t)

	var buf bytes.Buffer
	count, err := svc.ExportProducts(context.Background(), &buf, "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if buf.Len() == 0 {
		t.Error("empty catalog still yields a workbook with headers")
	}
}

func TestExportProductsCustomSheetName(t *testing.T) {
	svc, products, _ := newTestExportService(t)
	seedProduct(products, "S-1", "Thing", "", "10", 1)

	var buf bytes.Buffer
	if _, err := svc.ExportProducts(context.Background(), &buf, "Catalog"); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Catalog" {
		t.Errorf("sheets = %v, want [Catalog]", sheets)
	}
	rows, err := f.GetRows("Catalog")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) < 2 || rows[1][0] != "S-1" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestExportCustomers(t *testing.T) {
	repos, _, _, _ := mocks.NewRepositories()
	svc := newExportService(repos, testConfig(t), zerolog.Nop())

	for _, c := range []*models.Customer{
		{Email: "a@example.com", Name: "Alice", Company: "Acme"},
		{Email: "b@example.com", Name: "Bob"},
	} {
		if _, err := repos.Customer.ImportUpsert(context.Background(), c, true); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	count, err := svc.ExportCustomers(context.Background(), &buf, "")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "a@example.com" || rows[1][3] != "Acme" {
		t.Errorf("unexpected data row %v", rows[1])
	}
}

func TestWriteTemplate(t *testing.T) {
	svc, _, _ := newTestExportService(t)

	var buf bytes.Buffer
	if err := svc.WriteTemplate("customers", &buf); err != nil {
		t.Fatalf("template failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, _ := f.GetRows("Sheet1")
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
	if rows[0][0] != "Email" {
		t.Errorf("first header = %q, want Email", rows[0][0])
	}
}

func TestWriteTemplateUnknownKind(t *testing.T) {
	svc, _, _ := newTestExportService(t)
	err := svc.WriteTemplate("orders", &bytes.Buffer{})
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestCounts(t *testing.T) {
	svc, products, categories := newTestExportService(t)
	seedProduct(products, "B-1", "Thing", "", "10", 1)
	categories.Create(context.Background(), &models.Category{Name: "Home", Slug: "home"})

	counts, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["products"] != 1 || counts["categories"] != 1 || counts["customers"] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}

package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/config"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/mocks"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/rs/zerolog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Import: config.ImportConfig{
			ChunkSize:            2,
			MaxFileSize:          10 * 1024 * 1024,
			AllowedExtensions:    []string{".csv", ".xlsx"},
			UploadDir:            t.TempDir(),
			UpdateExisting:       true,
			AutoCreateCategories: true,
			SimilarityThreshold:  0.85,
			DateFormats:          []string{"2006-01-02", "02.01.2006"},
			AssetFetchTimeout:    time.Second,
			Workers:              2,
		},
		Export: config.ExportConfig{
			SheetName:     "Sheet1",
			BatchSize:     100,
			LowStockLimit: 10,
		},
	}
}

func newTestImportService(t *testing.T) (*importService, *repository.Repositories, *mocks.MockProductRepository, *mocks.MockCategoryRepository, *mocks.MockSessionRepository) {
	t.Helper()
	repos, products, categories, sessions := mocks.NewRepositories()
	svc := newImportService(repos, testConfig(t), zerolog.Nop())
	return svc, repos, products, categories, sessions
}

func defaultOpts() models.ImportOptions {
	return models.ImportOptions{UpdateExisting: true}
}

func TestImportProducts(t *testing.T) {
	svc, _, products, _, sessions := newTestImportService(t)

	source := "SKU,Name,Price,Stock,Category\n" +
		"ab-1,Kettle,\"1.234,56\",5,Electronics\n" +
		"AB-1,Kettle again,15,3,Electronics\n" +
		"ab-2,Toaster,abc,2,Electronics\n" +
		"ab-3,Blender,99.90,,Elektronics\n"

	result, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "products.csv", defaultOpts())
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if result.Total != 4 {
		t.Errorf("total = %d, want 4", result.Total)
	}
	// Row 3 is an in-file duplicate of AB-1, row 4 has a broken price
	if result.SuccessCount != 2 {
		t.Errorf("success = %d, want 2 (errors %v)", result.SuccessCount, result.Errors)
	}
	if result.ErrorCount != 2 {
		t.Errorf("errors = %d, want 2", result.ErrorCount)
	}
	if result.CreatedCount != 2 {
		t.Errorf("created = %d, want 2", result.CreatedCount)
	}

	// SKU normalized to uppercase before persistence
	p, _ := products.GetBySKU(context.Background(), "AB-1")
	if p == nil {
		t.Fatal("AB-1 not persisted")
	}
	if p.Price.String() != "1234.56" {
		t.Errorf("price = %s, want 1234.56", p.Price.String())
	}
	if p.Stock != 5 {
		t.Errorf("stock = %d, want 5", p.Stock)
	}
	if p.CategoryID == "" {
		t.Error("category not resolved")
	}

	// Session reached its terminal state with matching counters
	session, _ := sessions.GetByID(context.Background(), result.SessionID)
	if session == nil {
		t.Fatal("session not persisted")
	}
	if session.Status != models.SessionStatusCompleted {
		t.Errorf("status = %s, want completed", session.Status)
	}
	if session.TotalRows != result.Total || session.SuccessCount != result.SuccessCount {
		t.Errorf("session counters diverge from result: %+v", session)
	}
	if session.ProcessedCount > session.TotalRows {
		t.Error("processed exceeds total")
	}
	if session.SuccessCount+session.ErrorCount > session.ProcessedCount {
		t.Error("success+error exceeds processed")
	}

	// Diagnostics and success records were flushed for later retrieval
	diags, _ := sessions.GetDiagnostics(context.Background(), result.SessionID, models.DiagnosticError, 0)
	if len(diags) == 0 {
		t.Error("no diagnostics persisted")
	}
	recs, _ := sessions.GetRecords(context.Background(), result.SessionID)
	if len(recs) != 2 {
		t.Errorf("persisted records = %d, want 2", len(recs))
	}
}

func TestImportCategoryFuzzyDedup(t *testing.T) {
	svc, _, _, categories, _ := newTestImportService(t)

	// "Elektronics" is a near-miss of "Electronics"; only one category may
	// be created for the whole run.
	source := "SKU,Name,Price,Category\n" +
		"c-1,One,10,Electronics\n" +
		"c-2,Two,20,Elektronics\n" +
		"c-3,Three,30,electronics\n"

	result, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "cats.csv", defaultOpts())
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.ErrorCount != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	count, _ := categories.Count(context.Background())
	if count != 1 {
		t.Errorf("categories created = %d, want 1", count)
	}
	if created := categories.Categories[0]; created.Slug != "electronics" || created.Description == "" {
		t.Errorf("auto-created category incomplete: %+v", created)
	}

	// Fuzzy match and auto-creation both land in the correction summary
	if result.Corrections.Counts["category"] < 2 {
		t.Errorf("category corrections = %d, want >= 2", result.Corrections.Counts["category"])
	}
}

func TestImportUpdateExistingDisabled(t *testing.T) {
	svc, _, products, _, _ := newTestImportService(t)

	source := "SKU,Name,Price\nd-1,First,10\n"
	if _, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "first.csv", defaultOpts()); err != nil {
		t.Fatal(err)
	}

	opts := models.ImportOptions{UpdateExisting: false}
	result, err := svc.Import(context.Background(), "products",
		strings.NewReader("SKU,Name,Price\nD-1,Renamed,20\n"), "second.csv", opts)
	if err != nil {
		t.Fatal(err)
	}

	if result.ErrorCount != 1 {
		t.Fatalf("errors = %d, want 1 (%v)", result.ErrorCount, result.Errors)
	}
	if result.Errors[0].Code != codeAlreadyExists {
		t.Errorf("code = %q, want %q", result.Errors[0].Code, codeAlreadyExists)
	}

	// The existing row was left untouched
	p, _ := products.GetBySKU(context.Background(), "D-1")
	if p.Name != "First" {
		t.Errorf("name = %q, want First", p.Name)
	}
}

func TestImportStockMovementHook(t *testing.T) {
	svc, _, products, _, _ := newTestImportService(t)

	source := "SKU,Name,Price,Stock\ne-1,Widget,10,7\n"
	if _, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "stock.csv", defaultOpts()); err != nil {
		t.Fatal(err)
	}
	if len(products.Movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(products.Movements))
	}
	if products.Movements[0].Delta != 7 {
		t.Errorf("delta = %d, want 7", products.Movements[0].Delta)
	}
	if products.Movements[0].Reason != "import" {
		t.Errorf("reason = %q", products.Movements[0].Reason)
	}

	// Re-importing the same stock level must not write a second movement
	if _, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "stock2.csv", defaultOpts()); err != nil {
		t.Fatal(err)
	}
	if len(products.Movements) != 1 {
		t.Errorf("unchanged stock wrote a movement, total %d", len(products.Movements))
	}
}

func TestImportTemplateDriftWarning(t *testing.T) {
	svc, _, _, _, _ := newTestImportService(t)

	source := "SKU,Name,Price\nf-1,Thing,10\n"
	result, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "drift.csv", defaultOpts())
	if err != nil {
		t.Fatal(err)
	}

	found := 0
	for _, w := range result.Warnings {
		if w.Code == codeTemplateDrift {
			found++
		}
	}
	if found != 1 {
		t.Errorf("template drift warnings = %d, want exactly 1", found)
	}
	if result.ErrorCount != 0 {
		t.Errorf("drift must not fail rows: %v", result.Errors)
	}
}

func TestImportUnknownKind(t *testing.T) {
	svc, _, _, _, _ := newTestImportService(t)
	_, err := svc.Import(context.Background(), "orders",
		strings.NewReader("a,b\n1,2\n"), "orders.csv", defaultOpts())
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestImportCustomers(t *testing.T) {
	svc, repos, _, _, _ := newTestImportService(t)

	source := "Email,Name,Phone\n" +
		"a@example.com,Alice,+90 212 555 0001\n" +
		"b@example.com,Bob,\n" +
		"A@example.com,Alice Again,\n" +
		"not-an-email,Carol,\n"

	result, err := svc.Import(context.Background(), "customers",
		strings.NewReader(source), "customers.csv", defaultOpts())
	if err != nil {
		t.Fatal(err)
	}

	if result.SuccessCount != 2 {
		t.Errorf("success = %d, want 2 (%v)", result.SuccessCount, result.Errors)
	}
	if result.ErrorCount != 2 {
		t.Errorf("errors = %d, want 2", result.ErrorCount)
	}

	count, _ := repos.Customer.Count(context.Background())
	if count != 2 {
		t.Errorf("customers persisted = %d, want 2", count)
	}
}

func TestReload(t *testing.T) {
	svc, _, _, _, sessions := newTestImportService(t)

	source := "SKU,Name,Price\ng-1,Thing,10\ng-2,Other,abc\n"
	first, err := svc.Import(context.Background(), "products",
		strings.NewReader(source), "reload.csv", defaultOpts())
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Reload(context.Background(), first.SessionID, defaultOpts())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Fatal("reload reused the original session id")
	}
	if second.Total != first.Total || second.ErrorCount != first.ErrorCount {
		t.Errorf("reload counts diverge: first %+v second %+v", first, second)
	}
	// Re-running against existing entities updates, never re-creates
	if second.CreatedCount != 0 || second.UpdatedCount != first.CreatedCount {
		t.Errorf("reload created = %d updated = %d, want 0 and %d",
			second.CreatedCount, second.UpdatedCount, first.CreatedCount)
	}

	child, _ := sessions.GetByID(context.Background(), second.SessionID)
	if child.ParentID != first.SessionID {
		t.Errorf("parent_id = %q, want %q", child.ParentID, first.SessionID)
	}
}

func TestReloadUnknownSession(t *testing.T) {
	svc, _, _, _, _ := newTestImportService(t)
	_, err := svc.Reload(context.Background(), "00000000-0000-0000-0000-000000000000", defaultOpts())
	if err != ErrSessionNotFound {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestImportWithWorkerPool(t *testing.T) {
	svc, _, products, _, _ := newTestImportService(t)

	var b strings.Builder
	b.WriteString("SKU,Name,Price\n")
	for i := 0; i < 50; i++ {
		b.WriteString(fmtRow(i))
	}

	opts := defaultOpts()
	opts.UseChunks = true
	result, err := svc.Import(context.Background(), "products",
		strings.NewReader(b.String()), "pool.csv", opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.SuccessCount != 50 {
		t.Errorf("success = %d, want 50 (%v)", result.SuccessCount, result.Errors)
	}
	count, _ := products.Count(context.Background())
	if count != 50 {
		t.Errorf("products persisted = %d, want 50", count)
	}
}

func TestImportCancellation(t *testing.T) {
	svc, _, _, _, sessions := newTestImportService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Import(ctx, "products",
		strings.NewReader("SKU,Name,Price\nh-1,Thing,10\n"), "cancel.csv", defaultOpts())
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	// A canceled run still leaves a queryable failed session when it got as
	// far as creating one.
	if result != nil {
		session, _ := sessions.GetByID(context.Background(), result.SessionID)
		if session != nil && !session.Terminal() {
			t.Errorf("session left in non-terminal state %s", session.Status)
		}
	}
}

func fmtRow(i int) string {
	n := strconv.Itoa(i)
	return "p-" + n + ",Product " + n + ",10\n"
}

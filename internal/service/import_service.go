package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/config"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/correction"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/excel"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/mapping"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned when a session id resolves to nothing
var ErrSessionNotFound = errors.New("import session not found")

// ErrUnknownKind is returned for an import kind outside the registry
var ErrUnknownKind = errors.New("unknown import kind")

// Diagnostic codes produced by the row processor itself, past validation
const (
	codeAlreadyExists = "already_exists"
	codePersistence   = "persistence_error"
	codeTemplateDrift = "template_drift"
	codeImageFetch    = "image_fetch_failed"
)

// diagFlushThreshold bounds in-flight diagnostic memory between bulk writes
const diagFlushThreshold = 200

// importService is the concrete implementation of ImportService
type importService struct {
	repos  *repository.Repositories
	cfg    *config.Config
	log    zerolog.Logger
	assets *http.Client
}

// newImportService creates a new ImportService
func newImportService(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("service", "import").Logger(),
		assets: &http.Client{
			Timeout: cfg.Import.AssetFetchTimeout,
		},
	}
}

// Import stores the upload, creates a session and runs the pipeline
func (s *importService) Import(ctx context.Context, kind string, src io.Reader, filename string, opts models.ImportOptions) (*models.ImportResult, error) {
	fm, ok := mapping.ForKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	opts = s.normalizeOptions(opts)

	id := uuid.New().String()
	path, size, hash, err := s.storeUpload(src, filename, id)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	session := &models.ImportSession{
		ID:         id,
		Kind:       kind,
		Status:     models.SessionStatusPending,
		SourceName: filepath.Base(filename),
		SourceSize: size,
		SourceHash: hash,
		SourcePath: path,
		CreatedAt:  time.Now(),
	}
	if err := s.repos.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("kind", kind).
		Str("file", session.SourceName).
		Int64("size", size).
		Msg("Import session created")

	return s.runSession(ctx, session, fm, opts)
}

// Reload re-runs a previous session's stored source under a new session
func (s *importService) Reload(ctx context.Context, sessionID string, opts models.ImportOptions) (*models.ImportResult, error) {
	parent, err := s.repos.Session.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrSessionNotFound
	}
	if parent.SourcePath == "" {
		return nil, fmt.Errorf("session %s has no stored source to reload", sessionID)
	}
	if _, err := os.Stat(parent.SourcePath); err != nil {
		return nil, fmt.Errorf("stored source is gone: %w", err)
	}
	fm, ok := mapping.ForKind(parent.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, parent.Kind)
	}
	opts = s.normalizeOptions(opts)

	session := &models.ImportSession{
		ID:         uuid.New().String(),
		Kind:       parent.Kind,
		Status:     models.SessionStatusPending,
		SourceName: parent.SourceName,
		SourceSize: parent.SourceSize,
		SourceHash: parent.SourceHash,
		SourcePath: parent.SourcePath,
		ParentID:   parent.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.repos.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create reload session: %w", err)
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("parent_id", parent.ID).
		Msg("Reload session created")

	return s.runSession(ctx, session, fm, opts)
}

func (s *importService) normalizeOptions(opts models.ImportOptions) models.ImportOptions {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = s.cfg.Import.ChunkSize
	}
	return opts
}

// storeUpload copies the source under UploadDir keyed by session id, hashing
// the bytes on the way through.
func (s *importService) storeUpload(src io.Reader, filename, id string) (string, int64, string, error) {
	if err := os.MkdirAll(s.cfg.Import.UploadDir, 0o755); err != nil {
		return "", 0, "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.cfg.Import.UploadDir, id+ext)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, "", err
	}
	h := sha256.New()
	size, err := io.Copy(f, io.TeeReader(src, h))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, "", err
	}
	return path, size, hex.EncodeToString(h.Sum(nil)), nil
}

// runSession executes the pipeline for one session: read chunks, map,
// validate, correct, persist. The session's final state is written even when
// the run is canceled mid-way, keeping accumulated diagnostics queryable.
func (s *importService) runSession(ctx context.Context, session *models.ImportSession, fm *mapping.FieldMapping, opts models.ImportOptions) (*models.ImportResult, error) {
	start := time.Now()
	session.Status = models.SessionStatusProcessing
	session.StartedAt = &start
	if err := s.repos.Session.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to mark session processing: %w", err)
	}

	corrector := correction.New(s.cfg.Import.DateFormats)
	refs := newReferenceCache(s.repos, corrector,
		s.cfg.Import.SimilarityThreshold, s.cfg.Import.AutoCreateCategories, s.log)

	run := &importRun{
		svc:       s,
		session:   session,
		opts:      opts,
		mapper:    mapping.NewMapper(fm),
		pipeline:  s.buildPipeline(ctx, session.Kind, fm, corrector, refs),
		corrector: corrector,
		refs:      refs,
		log:       s.log.With().Str("session_id", session.ID).Logger(),
	}

	runErr := s.readAndProcess(ctx, run)

	// Final flush and state transition run on a fresh context so a canceled
	// import still leaves a queryable failed session behind.
	finCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	run.flush(finCtx)

	end := time.Now()
	session.CompletedAt = &end
	run.fillSession(session)
	if runErr != nil {
		session.Status = models.SessionStatusFailed
	} else {
		session.Status = models.SessionStatusCompleted
	}
	if err := s.repos.Session.Update(finCtx, session); err != nil {
		run.log.Error().Err(err).Msg("Failed to persist final session state")
	}

	duration := end.Sub(start)
	var rowsPerSec float64
	if session.ProcessedCount > 0 && duration.Seconds() > 0 {
		rowsPerSec = float64(session.ProcessedCount) / duration.Seconds()
	}

	if runErr != nil {
		run.log.Error().Err(runErr).
			Int("processed", session.ProcessedCount).
			Msg("Import failed")
		return run.result(), runErr
	}

	run.log.Info().
		Int("total", session.TotalRows).
		Int("success", session.SuccessCount).
		Int("errors", session.ErrorCount).
		Int("warnings", session.WarningCount).
		Int64("duration_ms", duration.Milliseconds()).
		Float64("rows_per_sec", rowsPerSec).
		Msg("Import completed")

	return run.result(), nil
}

// readAndProcess drives the chunk loop, optionally fanning chunks out to a
// bounded worker pool. Reading and header mapping stay sequential; only row
// processing parallelizes.
func (s *importService) readAndProcess(ctx context.Context, run *importRun) error {
	reader, err := excel.NewReader(run.session.SourcePath, excel.ReaderOptions{
		MaxFileSize:       s.cfg.Import.MaxFileSize,
		AllowedExtensions: s.cfg.Import.AllowedExtensions,
	}, run.log)
	if err != nil {
		return err
	}

	workers := s.cfg.Import.Workers
	useWorkers := run.opts.UseChunks && workers > 1

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	readErr := reader.ReadChunks(ctx, run.opts.ChunkSize, func(chunk excel.Chunk) error {
		rows, missing := run.mapper.MapChunk(chunk)
		if len(missing) > 0 {
			run.log.Warn().Strs("missing_headers", missing).Msg("Source deviates from template")
			run.addWarnings(models.Diagnostic{
				Row:     1,
				Code:    codeTemplateDrift,
				Message: fmt.Sprintf("expected headers not found in source: %s", strings.Join(missing, ", ")),
				Level:   models.DiagnosticWarning,
			})
		}

		if !useWorkers {
			return run.processRows(ctx, rows)
		}

		if err := run.firstErr(); err != nil {
			return err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := run.processRows(ctx, rows); err != nil {
				run.setErr(err)
			}
		}()
		return nil
	})

	wg.Wait()
	if readErr != nil {
		return readErr
	}
	return run.firstErr()
}

// buildPipeline assembles the validator chain for an import kind. All
// validators run on every row; nothing short-circuits.
func (s *importService) buildPipeline(ctx context.Context, kind string, fm *mapping.FieldMapping, corr *correction.Corrector, refs *referenceCache) *validation.Pipeline {
	validators := []validation.Validator{
		validation.NewRequiredField(fm.RequiredFields),
		validation.NewUniqueness(fm.UniqueField),
	}

	switch kind {
	case "products":
		zero := 0.0
		validators = append(validators,
			validation.NewFormat([]validation.FieldRule{
				{Field: mapping.FieldPrice, Kind: validation.FormatDecimal, Code: validation.CodeInvalidPrice, Min: &zero},
				{Field: mapping.FieldStock, Kind: validation.FormatInteger, Code: validation.CodeInvalidStock},
				{Field: mapping.FieldImageURL, Kind: validation.FormatURL, Code: validation.CodeInvalidURL},
				{Field: mapping.FieldName, Kind: validation.FormatLength, Code: validation.CodeTooLong, MaxLen: 255},
			}, corr),
			validation.NewReference(mapping.FieldCategory, func(name string) error {
				_, err := refs.ResolveCategory(ctx, name)
				return err
			}),
			validation.NewReference(mapping.FieldFamily, func(name string) error {
				_, err := refs.ResolveFamily(ctx, name)
				return err
			}),
		)
	case "customers":
		validators = append(validators,
			validation.NewFormat([]validation.FieldRule{
				{Field: mapping.FieldEmail, Kind: validation.FormatEmail, Code: validation.CodeInvalidEmail},
				{Field: mapping.FieldPhone, Kind: validation.FormatPhone, Code: validation.CodeInvalidPhone},
				{Field: mapping.FieldName, Kind: validation.FormatLength, Code: validation.CodeTooLong, MaxLen: 255},
			}, corr),
		)
	}

	return validation.NewPipeline(validators...)
}

// importRun carries the mutable state of one pipeline execution. Counter and
// diagnostic mutations go through the mutex so chunk workers can share it.
type importRun struct {
	svc       *importService
	session   *models.ImportSession
	opts      models.ImportOptions
	mapper    *mapping.Mapper
	pipeline  *validation.Pipeline
	corrector *correction.Corrector
	refs      *referenceCache
	log       zerolog.Logger

	mu        sync.Mutex
	total     int
	processed int
	success   int
	failed    int
	created   int
	updated   int
	errs      []models.Diagnostic
	warns     []models.Diagnostic
	records   []models.SessionRecord

	pendingDiags []models.Diagnostic
	pendingRecs  []models.SessionRecord
	runErr       error
}

// processRows handles one mapped chunk, row by row in source order
func (r *importRun) processRows(ctx context.Context, rows []mapping.MappedRow) error {
	for i, row := range rows {
		if i%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		r.mu.Lock()
		r.total++
		r.mu.Unlock()

		if !r.opts.SkipValidation {
			res := r.pipeline.Validate(row.Values, row.Row)
			if len(res.Warnings) > 0 {
				r.addWarnings(res.Warnings...)
			}
			if !res.Valid {
				r.rowFailed(res.Errors...)
				r.flushIfNeeded(ctx)
				continue
			}
		}

		switch r.session.Kind {
		case "products":
			r.processProductRow(ctx, row)
		case "customers":
			r.processCustomerRow(ctx, row)
		}
		r.flushIfNeeded(ctx)
	}
	return nil
}

func (r *importRun) processProductRow(ctx context.Context, row mapping.MappedRow) {
	rec, diags := r.buildProductRecord(ctx, row)
	if len(diags) > 0 {
		r.rowFailed(diags...)
		return
	}

	product := &models.Product{
		SKU:         rec.SKU,
		Name:        rec.Name,
		Description: rec.Description,
		Price:       rec.Price,
		Stock:       rec.Stock,
		CategoryID:  rec.CategoryID,
		FamilyID:    rec.FamilyID,
		ImageURL:    rec.ImageURL,
	}
	outcome, err := r.svc.repos.Product.ImportUpsert(ctx, product, rec.Attributes(), r.opts.UpdateExisting)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			r.rowFailed(models.Diagnostic{
				Row: rec.Row, Field: mapping.FieldSKU, Code: codeAlreadyExists,
				Message: "product exists and updating existing records is disabled",
				Value:   rec.SKU, Level: models.DiagnosticError,
			})
			return
		}
		r.log.Error().Err(err).Int("row", rec.Row).Str("sku", rec.SKU).Msg("Product upsert failed")
		r.rowFailed(models.Diagnostic{
			Row: rec.Row, Field: mapping.FieldSKU, Code: codePersistence,
			Message: err.Error(), Value: rec.SKU, Level: models.DiagnosticError,
		})
		return
	}

	r.rowSucceeded(models.SessionRecord{
		SessionID: r.session.ID,
		Row:       rec.Row,
		EntityID:  outcome.ID,
		Key:       rec.SKU,
		Action:    recordAction(outcome.Created),
	}, outcome.Created)

	// Post-commit hooks: the row is already durable, failures here degrade
	// to warnings or log lines instead of failing it.
	if delta := rec.Stock - outcome.PrevStock; delta != 0 {
		err := r.svc.repos.Product.AddStockMovement(ctx, &models.StockMovement{
			ProductID: outcome.ID,
			Delta:     delta,
			Reason:    "import",
			SessionID: r.session.ID,
		})
		if err != nil {
			r.log.Warn().Err(err).Str("sku", rec.SKU).Msg("Stock movement write failed")
		}
	}
	if rec.ImageURL != "" {
		if err := r.svc.fetchImage(ctx, rec.ImageURL); err != nil {
			r.addWarnings(models.Diagnostic{
				Row: rec.Row, Field: mapping.FieldImageURL, Code: codeImageFetch,
				Message: err.Error(), Value: rec.ImageURL, Level: models.DiagnosticWarning,
			})
		}
	}
}

// buildProductRecord normalizes one validated row into its canonical form.
// With skip_validation set this is the only gate, so corrector failures
// surface as the same diagnostics validation would have produced.
func (r *importRun) buildProductRecord(ctx context.Context, row mapping.MappedRow) (*models.ProductRecord, []models.Diagnostic) {
	var diags []models.Diagnostic
	rec := &models.ProductRecord{Row: row.Row}

	sku, ok := r.corrector.SKU(row.Values[mapping.FieldSKU])
	if !ok {
		diags = append(diags, models.Diagnostic{
			Row: row.Row, Field: mapping.FieldSKU, Code: validation.CodeMissingRequired,
			Message: "SKU is missing or unrepairable", Value: row.Values[mapping.FieldSKU],
			Level: models.DiagnosticError,
		})
	}
	rec.SKU = sku

	rec.Name = strings.TrimSpace(row.Values[mapping.FieldName])
	if rec.Name == "" {
		diags = append(diags, models.Diagnostic{
			Row: row.Row, Field: mapping.FieldName, Code: validation.CodeMissingRequired,
			Message: "name is required", Level: models.DiagnosticError,
		})
	}
	rec.Description = strings.TrimSpace(row.Values[mapping.FieldDescription])

	price, ok := r.corrector.Price(row.Values[mapping.FieldPrice])
	if !ok {
		diags = append(diags, models.Diagnostic{
			Row: row.Row, Field: mapping.FieldPrice, Code: validation.CodeInvalidPrice,
			Message: "price could not be parsed", Value: row.Values[mapping.FieldPrice],
			Level: models.DiagnosticError,
		})
	}
	rec.Price = price

	if raw, present := row.Values[mapping.FieldStock]; present {
		stock, ok := r.corrector.Stock(raw)
		if !ok {
			diags = append(diags, models.Diagnostic{
				Row: row.Row, Field: mapping.FieldStock, Code: validation.CodeInvalidStock,
				Message: "stock could not be parsed", Value: raw,
				Level: models.DiagnosticError,
			})
		}
		rec.Stock = stock
	}

	if raw := row.Values[mapping.FieldCategory]; !validation.IsBlank(raw) {
		id, err := r.refs.ResolveCategory(ctx, raw)
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Row: row.Row, Field: mapping.FieldCategory, Code: validation.CodeReferenceError,
				Message: err.Error(), Value: raw, Level: models.DiagnosticError,
			})
		}
		rec.CategoryID = id
	}
	if raw := row.Values[mapping.FieldFamily]; !validation.IsBlank(raw) {
		id, err := r.refs.ResolveFamily(ctx, raw)
		if err != nil {
			diags = append(diags, models.Diagnostic{
				Row: row.Row, Field: mapping.FieldFamily, Code: validation.CodeReferenceError,
				Message: err.Error(), Value: raw, Level: models.DiagnosticError,
			})
		}
		rec.FamilyID = id
	}

	rec.ImageURL = strings.TrimSpace(row.Values[mapping.FieldImageURL])
	rec.Color = strings.TrimSpace(row.Values[mapping.FieldColor])
	rec.Size = strings.TrimSpace(row.Values[mapping.FieldSize])

	return rec, diags
}

func (r *importRun) processCustomerRow(ctx context.Context, row mapping.MappedRow) {
	rec := models.CustomerRecord{
		Row:     row.Row,
		Email:   strings.TrimSpace(row.Values[mapping.FieldEmail]),
		Name:    strings.TrimSpace(row.Values[mapping.FieldName]),
		Phone:   strings.TrimSpace(row.Values[mapping.FieldPhone]),
		Company: strings.TrimSpace(row.Values[mapping.FieldCompany]),
	}
	if rec.Email == "" || rec.Name == "" {
		r.rowFailed(models.Diagnostic{
			Row: rec.Row, Field: mapping.FieldEmail, Code: validation.CodeMissingRequired,
			Message: "email and name are required", Level: models.DiagnosticError,
		})
		return
	}

	customer := &models.Customer{
		Email:   rec.Email,
		Name:    rec.Name,
		Phone:   rec.Phone,
		Company: rec.Company,
	}
	outcome, err := r.svc.repos.Customer.ImportUpsert(ctx, customer, r.opts.UpdateExisting)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			r.rowFailed(models.Diagnostic{
				Row: rec.Row, Field: mapping.FieldEmail, Code: codeAlreadyExists,
				Message: "customer exists and updating existing records is disabled",
				Value:   rec.Email, Level: models.DiagnosticError,
			})
			return
		}
		r.log.Error().Err(err).Int("row", rec.Row).Msg("Customer upsert failed")
		r.rowFailed(models.Diagnostic{
			Row: rec.Row, Field: mapping.FieldEmail, Code: codePersistence,
			Message: err.Error(), Value: rec.Email, Level: models.DiagnosticError,
		})
		return
	}

	r.rowSucceeded(models.SessionRecord{
		SessionID: r.session.ID,
		Row:       rec.Row,
		EntityID:  outcome.ID,
		Key:       strings.ToLower(rec.Email),
		Action:    recordAction(outcome.Created),
	}, outcome.Created)
}

func (r *importRun) rowFailed(diags ...models.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed++
	r.failed++
	r.errs = append(r.errs, diags...)
	r.pendingDiags = append(r.pendingDiags, diags...)
}

func (r *importRun) rowSucceeded(rec models.SessionRecord, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed++
	r.success++
	if created {
		r.created++
	} else {
		r.updated++
	}
	rec.CreatedAt = time.Now()
	r.records = append(r.records, rec)
	r.pendingRecs = append(r.pendingRecs, rec)
}

func (r *importRun) addWarnings(diags ...models.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, diags...)
	r.pendingDiags = append(r.pendingDiags, diags...)
}

func (r *importRun) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runErr == nil {
		r.runErr = err
	}
}

func (r *importRun) firstErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}

// flushIfNeeded bulk-writes pending diagnostics and records once the
// threshold is reached, keeping memory bounded on large imports.
func (r *importRun) flushIfNeeded(ctx context.Context) {
	r.mu.Lock()
	over := len(r.pendingDiags) >= diagFlushThreshold || len(r.pendingRecs) >= diagFlushThreshold
	r.mu.Unlock()
	if over {
		r.flush(ctx)
	}
}

// flush persists everything pending: diagnostics, success records and the
// drained correction audit trail. Flush failures are logged, never fatal to
// the rows they describe.
func (r *importRun) flush(ctx context.Context) {
	r.mu.Lock()
	diags := r.pendingDiags
	recs := r.pendingRecs
	r.pendingDiags = nil
	r.pendingRecs = nil
	r.mu.Unlock()

	if len(diags) > 0 {
		if err := r.svc.repos.Session.AddDiagnostics(ctx, r.session.ID, diags); err != nil {
			r.log.Error().Err(err).Int("count", len(diags)).Msg("Failed to flush diagnostics")
		}
	}
	if len(recs) > 0 {
		if err := r.svc.repos.Session.AddRecords(ctx, r.session.ID, recs); err != nil {
			r.log.Error().Err(err).Int("count", len(recs)).Msg("Failed to flush session records")
		}
	}
	if corrs := r.corrector.Drain(); len(corrs) > 0 {
		if err := r.svc.repos.Session.AddCorrections(ctx, r.session.ID, corrs); err != nil {
			r.log.Error().Err(err).Int("count", len(corrs)).Msg("Failed to flush corrections")
		}
	}
}

func (r *importRun) fillSession(s *models.ImportSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.TotalRows = r.total
	s.ProcessedCount = r.processed
	s.SuccessCount = r.success
	s.ErrorCount = r.failed
	s.WarningCount = len(r.warns)
	s.CreatedCount = r.created
	s.UpdatedCount = r.updated
}

func (r *importRun) result() *models.ImportResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &models.ImportResult{
		SessionID:    r.session.ID,
		Total:        r.total,
		SuccessCount: r.success,
		ErrorCount:   r.failed,
		WarningCount: len(r.warns),
		CreatedCount: r.created,
		UpdatedCount: r.updated,
		Successes:    r.records,
		Errors:       r.errs,
		Warnings:     r.warns,
		Corrections:  r.corrector.Summary(),
	}
}

// fetchImage verifies a product image URL is reachable. Best effort with a
// short timeout; the result never decides the fate of the row.
func (s *importService) fetchImage(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}
	resp, err := s.assets.Do(req)
	if err != nil {
		return fmt.Errorf("image fetch failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
	return nil
}

func recordAction(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}

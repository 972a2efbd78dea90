package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/correction"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/rs/zerolog"
)

// referenceCache resolves raw category and family names to entity ids for
// one import run. Known entities are loaded once on first use; resolutions
// and auto-creations are cached so every raw spelling hits the database at
// most once. Mutex-guarded for chunk-level parallelism: the cache is what
// makes auto-creation deduplicated when two chunks carry the same new name.
type referenceCache struct {
	categories repository.CategoryRepository
	families   repository.FamilyRepository
	corrector  *correction.Corrector
	threshold  float64
	autoCreate bool
	log        zerolog.Logger

	mu       sync.Mutex
	loaded   bool
	cands    []correction.Candidate
	catByKey map[string]string // normalized raw name → category id
	famByKey map[string]string // normalized name → family id
}

func newReferenceCache(repos *repository.Repositories, corr *correction.Corrector, threshold float64, autoCreate bool, log zerolog.Logger) *referenceCache {
	return &referenceCache{
		categories: repos.Category,
		families:   repos.Family,
		corrector:  corr,
		threshold:  threshold,
		autoCreate: autoCreate,
		log:        log,
		catByKey:   make(map[string]string),
		famByKey:   make(map[string]string),
	}
}

func (rc *referenceCache) load(ctx context.Context) error {
	if rc.loaded {
		return nil
	}

	cats, err := rc.categories.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	for _, c := range cats {
		rc.cands = append(rc.cands, correction.Candidate{ID: c.ID, Name: c.Name, Slug: c.Slug})
		rc.catByKey[refKey(c.Name)] = c.ID
		rc.catByKey[refKey(c.Slug)] = c.ID
	}

	fams, err := rc.families.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load families: %w", err)
	}
	for _, f := range fams {
		rc.famByKey[refKey(f.Name)] = f.ID
	}

	rc.loaded = true
	return nil
}

// ResolveCategory maps a raw category name to an id. Resolution order: exact
// cached match, fuzzy match against known categories at or above the
// threshold, then auto-creation when enabled. Fuzzy hits and creations are
// recorded in the correction audit trail.
func (rc *referenceCache) ResolveCategory(ctx context.Context, name string) (string, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.load(ctx); err != nil {
		return "", err
	}

	key := refKey(name)
	if key == "" {
		return "", fmt.Errorf("category name is empty")
	}
	if id, ok := rc.catByKey[key]; ok {
		return id, nil
	}

	if best, score := correction.BestMatch(name, rc.cands); score >= rc.threshold {
		rc.catByKey[key] = best.ID
		rc.corrector.RecordCategory(name, best.Name, score, false)
		rc.log.Debug().
			Str("input", name).
			Str("matched", best.Name).
			Float64("score", score).
			Msg("Category resolved by fuzzy match")
		return best.ID, nil
	}

	if !rc.autoCreate {
		return "", fmt.Errorf("category %q not found", name)
	}

	cat := &models.Category{
		Name:        strings.TrimSpace(name),
		Slug:        correction.Slugify(name),
		Description: fmt.Sprintf("Auto-created during import for %q", strings.TrimSpace(name)),
	}
	if cat.Slug == "" {
		return "", fmt.Errorf("category %q yields an empty slug", name)
	}
	if err := rc.categories.Create(ctx, cat); err != nil {
		return "", fmt.Errorf("failed to create category %q: %w", name, err)
	}

	rc.cands = append(rc.cands, correction.Candidate{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	rc.catByKey[key] = cat.ID
	rc.catByKey[refKey(cat.Slug)] = cat.ID
	rc.corrector.RecordCategory(name, cat.Name, 0, true)
	rc.log.Info().Str("category", cat.Name).Str("slug", cat.Slug).Msg("Category auto-created")
	return cat.ID, nil
}

// ResolveFamily maps a raw family name to an id. Exact match only, with
// auto-creation when enabled.
func (rc *referenceCache) ResolveFamily(ctx context.Context, name string) (string, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.load(ctx); err != nil {
		return "", err
	}

	key := refKey(name)
	if key == "" {
		return "", fmt.Errorf("family name is empty")
	}
	if id, ok := rc.famByKey[key]; ok {
		return id, nil
	}

	if !rc.autoCreate {
		return "", fmt.Errorf("family %q not found", name)
	}

	fam := &models.Family{Name: strings.TrimSpace(name)}
	if err := rc.families.Create(ctx, fam); err != nil {
		return "", fmt.Errorf("failed to create family %q: %w", name, err)
	}
	rc.famByKey[key] = fam.ID
	rc.log.Info().Str("family", fam.Name).Msg("Family auto-created")
	return fam.ID, nil
}

func refKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/config"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/excel"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports: multipart file upload plus import
// options. The import runs synchronously; the response is the full result
// with counts and diagnostics, 200 even on partial failure.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	kind := c.PostForm("kind")
	if kind == "" {
		kind = c.Query("kind")
	}
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind parameter is required (products, customers)"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxFileSize/(1024*1024)),
		})
		return
	}

	opts := h.parseOptions(c)

	result, err := h.services.Import.Import(c.Request.Context(), kind, file, header.Filename, opts)
	if err != nil {
		h.respondImportError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ReloadSession handles POST /v1/imports/:session_id/reload
func (h *ImportHandler) ReloadSession(c *gin.Context) {
	opts := h.parseOptions(c)

	result, err := h.services.Import.Reload(c.Request.Context(), c.Param("session_id"), opts)
	if err != nil {
		h.respondImportError(c, result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSession handles GET /v1/imports/:session_id
func (h *ImportHandler) GetSession(c *gin.Context) {
	session, err := h.services.Session.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions handles GET /v1/imports
func (h *ImportHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	sessions, err := h.services.Session.List(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// GetSessionErrors handles GET /v1/imports/:session_id/errors. The level
// query filters by diagnostic level; by default only errors are returned.
func (h *ImportHandler) GetSessionErrors(c *gin.Context) {
	level := models.DiagnosticLevel(c.DefaultQuery("level", string(models.DiagnosticError)))
	if all := c.Query("all"); all == "true" {
		level = ""
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	diags, err := h.services.Session.Diagnostics(c.Request.Context(), c.Param("session_id"), level, limit)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":  c.Param("session_id"),
		"diagnostics": diags,
		"count":       len(diags),
	})
}

// GetSessionRecords handles GET /v1/imports/:session_id/records
func (h *ImportHandler) GetSessionRecords(c *gin.Context) {
	records, err := h.services.Session.Records(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("session_id"),
		"records":    records,
		"count":      len(records),
	})
}

// parseOptions reads import options from form or query values, falling back
// to configured defaults.
func (h *ImportHandler) parseOptions(c *gin.Context) models.ImportOptions {
	opts := models.ImportOptions{
		UpdateExisting: h.cfg.Import.UpdateExisting,
		ChunkSize:      h.cfg.Import.ChunkSize,
	}
	if v := formOrQuery(c, "update_existing"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.UpdateExisting = b
		}
	}
	if v := formOrQuery(c, "chunk_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.ChunkSize = n
		}
	}
	if v := formOrQuery(c, "skip_validation"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.SkipValidation = b
		}
	}
	if v := formOrQuery(c, "use_chunks"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.UseChunks = b
		}
	}
	return opts
}

func (h *ImportHandler) respondImportError(c *gin.Context, result *models.ImportResult, err error) {
	var sizeErr *excel.FileSizeError
	var typeErr *excel.UnsupportedFileTypeError
	switch {
	case errors.Is(err, service.ErrUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &sizeErr), errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Import failed")
		body := gin.H{"error": err.Error()}
		if result != nil {
			body["result"] = result
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}

func (h *ImportHandler) respondSessionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.log.Error().Err(err).Msg("Session lookup failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func formOrQuery(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	return c.Query(key)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?kind=products. The workbook is
// written straight to the response; headers go out before the body, so a
// mid-stream failure can only be logged.
func (h *ExportHandler) StreamExport(c *gin.Context) {
	kind := c.DefaultQuery("kind", "products")
	if kind != "products" && kind != "customers" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: products, customers"})
		return
	}
	sheetName := c.Query("sheet_name")

	filename := fmt.Sprintf("%s_%s.xlsx", kind, time.Now().Format("20060102_150405"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	var count int
	var err error
	if kind == "products" {
		count, err = h.services.Export.ExportProducts(c.Request.Context(), c.Writer, sheetName)
	} else {
		count, err = h.services.Export.ExportCustomers(c.Request.Context(), c.Writer, sheetName)
	}

	if err != nil {
		h.log.Error().Err(err).Str("kind", kind).Msg("Export failed")
		return
	}
	h.log.Info().Str("kind", kind).Int("rows", count).Msg("Export streamed")
}

// DownloadTemplate handles GET /v1/templates/:kind
func (h *ExportHandler) DownloadTemplate(c *gin.Context) {
	kind := c.Param("kind")

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.xlsx"`, kind))

	if err := h.services.Export.WriteTemplate(kind, c.Writer); err != nil {
		if errors.Is(err, service.ErrUnknownKind) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.log.Error().Err(err).Str("kind", kind).Msg("Template generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate template"})
	}
}

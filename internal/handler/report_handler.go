package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/response"
)

type reportService interface {
	Query(ctx context.Context, query dto.PeriodQuery) (*models.ArchiveReport, error)
	Export(ctx context.Context, query dto.PeriodQuery, format models.ReportFormat) (*service.ReportFile, error)
	Chart(ctx context.Context, query dto.PeriodQuery) ([]byte, error)
}

// ReportHandler exposes archive recap endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Archives godoc
// @Summary Archive report for a period
// @Tags Reports
// @Produce json
// @Param month query string false "Month 1-12 or all"
// @Param year query string false "Year or all"
// @Param typeId query string false "Document type ID or all"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/archives [get]
func (h *ReportHandler) Archives(c *gin.Context) {
	query, ok := bindPeriod(c)
	if !ok {
		return
	}
	report, err := h.service.Query(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Download the archive report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param month query string false "Month 1-12 or all"
// @Param year query string false "Year or all"
// @Param typeId query string false "Document type ID or all"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/archives/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	query, ok := bindPeriod(c)
	if !ok {
		return
	}
	format := models.ReportFormat(strings.ToLower(strings.TrimSpace(c.Query("format"))))
	file, err := h.service.Export(c.Request.Context(), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Chart godoc
// @Summary Category chart for the archive report
// @Tags Reports
// @Produce html
// @Success 200 {string} string
// @Router /reports/archives/chart [get]
func (h *ReportHandler) Chart(c *gin.Context) {
	query, ok := bindPeriod(c)
	if !ok {
		return
	}
	page, err := h.service.Chart(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func bindPeriod(c *gin.Context) (dto.PeriodQuery, bool) {
	var query dto.PeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return query, false
	}
	return query, true
}

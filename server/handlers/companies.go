package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contractor/server/services"
)

// MIME-тип файлов xlsx
const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CompaniesHandler обработчики каталога компаний-участников
type CompaniesHandler struct {
	service *services.CompanyService
}

// NewCompaniesHandler создает новый обработчик компаний
func NewCompaniesHandler(service *services.CompanyService) *CompaniesHandler {
	return &CompaniesHandler{service: service}
}

// HandleList возвращает текущий срез каталога
// GET /api/companies
func (h *CompaniesHandler) HandleList(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.service.List())
}

// HandleRefresh перечитывает каталог из CRM
// POST /api/companies/refresh
func (h *CompaniesHandler) HandleRefresh(c *gin.Context) {
	snap, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		SendAppError(c, crmFallback(err))
		return
	}

	SendJSONResponse(c, http.StatusOK, gin.H{
		"records":      len(snap.Records),
		"errors":       len(snap.Errors),
		"refreshed_at": snap.RefreshedAt,
	})
}

// HandleGet возвращает одну компанию, запрошенную напрямую из CRM
// GET /api/companies/:id
func (h *CompaniesHandler) HandleGet(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		SendAppError(c, crmFallback(err))
		return
	}

	SendJSONResponse(c, http.StatusOK, record)
}

// HandleExport отдает текущий срез каталога как xlsx
// GET /api/companies/export
func (h *CompaniesHandler) HandleExport(c *gin.Context) {
	// Буферизуем файл целиком: после начала записи в ResponseWriter
	// статус уже не поменять
	var buf bytes.Buffer
	if err := h.service.ExportExcel(&buf); err != nil {
		SendAppError(c, err)
		return
	}

	filename := fmt.Sprintf("companies_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

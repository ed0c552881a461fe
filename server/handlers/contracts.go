package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractor/server/services"
	"contractor/tex"
)

// ContractsHandler обработчики рендеринга договоров
type ContractsHandler struct {
	service *services.ContractService
}

// NewContractsHandler создает новый обработчик договоров
func NewContractsHandler(service *services.ContractService) *ContractsHandler {
	return &ContractsHandler{service: service}
}

// HandleRenderAll рендерит договоры для всех компаний текущего среза
// GET /api/contracts?format=mail|email|tex
func (h *ContractsHandler) HandleRenderAll(c *gin.Context) {
	result, err := h.service.RenderAll(c.Request.Context(), c.Query("format"))
	if err != nil {
		SendAppError(c, err)
		return
	}

	sendDocument(c, result)
}

// HandleRenderOne рендерит договор для одной компании из CRM
// GET /api/contracts/:id?format=mail|email|tex
func (h *ContractsHandler) HandleRenderOne(c *gin.Context) {
	result, err := h.service.RenderOne(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		SendAppError(c, crmFallback(err))
		return
	}

	sendDocument(c, result)
}

// sendDocument отдает готовый документ как attachment
func sendDocument(c *gin.Context, result *tex.Result) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.MIME, result.Data)
}

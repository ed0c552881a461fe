package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "contractor/server/errors"
	"contractor/server/services"
	"contractor/settings"
)

// SettingsHandler обработчики годовых настроек ярмарки
type SettingsHandler struct {
	service *services.SettingsService
}

// NewSettingsHandler создает новый обработчик настроек
func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// HandleGet возвращает текущие настройки
// GET /api/settings
func (h *SettingsHandler) HandleGet(c *gin.Context) {
	SendJSONResponse(c, http.StatusOK, h.service.Current())
}

// HandleUpdate валидирует и сохраняет новые настройки
// PUT /api/settings
func (h *SettingsHandler) HandleUpdate(c *gin.Context) {
	var y settings.Yearly
	if err := c.ShouldBindJSON(&y); err != nil {
		SendAppError(c, apperrors.NewValidationError("Некорректный JSON настроек", err))
		return
	}

	if err := y.Validate(); err != nil {
		SendAppError(c, apperrors.NewValidationError(err.Error(), err))
		return
	}

	// После валидации остается только ошибка записи на диск
	if err := h.service.Update(y); err != nil {
		SendAppError(c, apperrors.NewInternalError("save settings", err))
		return
	}

	SendJSONResponse(c, http.StatusOK, h.service.Current())
}

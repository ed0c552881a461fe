package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"contractor/classification"
	"contractor/importer"
	"contractor/normalization"
	apperrors "contractor/server/errors"
	"contractor/server/middleware"
	"contractor/server/services"
	"contractor/tex"
)

// SendJSONResponse отправляет JSON ответ через Gin context
func SendJSONResponse(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendAppError переводит доменную ошибку в HTTP ответ.
// Детали внутренних ошибок логируются, пользователь видит только сообщение
func SendAppError(c *gin.Context, err error) {
	appErr := mapDomainError(err)

	slog.Error("Request failed",
		"error", err,
		"status_code", appErr.Code,
		"request_id", middleware.GetRequestID(c.Request.Context()),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	c.JSON(appErr.Code, gin.H{
		"error":   true,
		"message": appErr.UserMessage(),
	})
}

// crmFallback помечает нераспознанные ошибки CRM-запросов как 502:
// если вызов ходил в CRM и ошибка не доменная, виновата CRM или сеть
func crmFallback(err error) error {
	if mapDomainError(err).Code == http.StatusInternalServerError {
		return apperrors.NewBadGatewayError("CRM недоступна", err)
	}
	return err
}

// mapDomainError подбирает HTTP статус по типу доменной ошибки
func mapDomainError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var formatErr *services.ErrUnknownFormat
	if errors.As(err, &formatErr) {
		return apperrors.NewValidationError(formatErr.Error(), nil)
	}

	if errors.Is(err, tex.ErrNoRecords) {
		return apperrors.NewValidationError("Каталог пуст, сначала выполните импорт", err)
	}

	if errors.Is(err, importer.ErrNotFound) {
		return apperrors.NewNotFoundError("Компания не найдена", err)
	}

	// Запись нашлась, но данные в CRM не годятся для договора
	var (
		missingErr        *normalization.MissingFieldsError
		unrecognizedErr   *normalization.UnrecognizedValueError
		representativeErr *normalization.RepresentativeError
		ambiguousErr      *normalization.AmbiguousDaysError
		classErr          *classification.UnknownClassificationError
	)
	switch {
	case errors.As(err, &missingErr),
		errors.As(err, &unrecognizedErr),
		errors.As(err, &representativeErr),
		errors.As(err, &ambiguousErr),
		errors.As(err, &classErr):
		return apperrors.NewUnprocessableError(err.Error(), err)
	}

	if errors.Is(err, tex.ErrCompilerUnavailable) {
		return apperrors.NewServiceUnavailableError("Компилятор LaTeX недоступен", err)
	}

	// Выдержка из лога xelatex попадает в ответ: без нее ошибку
	// компиляции шаблона не диагностировать
	var compileErr *tex.CompilationError
	if errors.As(err, &compileErr) {
		return &apperrors.AppError{
			Code:    http.StatusInternalServerError,
			Message: compileErr.Error(),
			Err:     err,
		}
	}

	return apperrors.WrapError(err, "request failed")
}

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"contractor/internal/config"
	"contractor/server/handlers"
	"contractor/server/middleware"
	"contractor/server/services"
)

// Server HTTP сервер приложения
type Server struct {
	config *config.Config

	companiesHandler *handlers.CompaniesHandler
	contractsHandler *handlers.ContractsHandler
	settingsHandler  *handlers.SettingsHandler

	httpServer  *http.Server
	httpHandler http.Handler
	handlerOnce sync.Once
}

// NewServer создает сервер поверх готовых сервисов
func NewServer(cfg *config.Config, companies *services.CompanyService, contracts *services.ContractService, settings *services.SettingsService) *Server {
	return &Server{
		config:           cfg,
		companiesHandler: handlers.NewCompaniesHandler(companies),
		contractsHandler: handlers.NewContractsHandler(contracts),
		settingsHandler:  handlers.NewSettingsHandler(settings),
	}
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	handler := s.ensureHTTPHandler()

	// WriteTimeout с запасом: компиляция LaTeX для полного каталога
	// занимает десятки секунд
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Сервер запускается на порту %s", s.config.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("не удалось запустить HTTP сервер на %s: %w", addr, err)
	}

	return nil
}

// Shutdown останавливает HTTP сервер gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Initiating graceful shutdown...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}

	log.Println("Graceful shutdown completed")
	return nil
}

// ServeHTTP реализует http.Handler для тестов и вспомогательных утилит
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.ensureHTTPHandler().ServeHTTP(w, r)
}

func (s *Server) ensureHTTPHandler() http.Handler {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildHTTPHandler()
	})
	return s.httpHandler
}

func (s *Server) buildHTTPHandler() http.Handler {
	// Режим Gin: release для продакшена, переопределяется через GIN_MODE
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())

	s.registerRoutes(router)

	return router
}

// registerRoutes регистрирует все маршруты сервера
func (s *Server) registerRoutes(router *gin.Engine) {
	// Health check endpoint без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "contractor",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	api.Use(middleware.GinTokenAuthMiddleware(s.config.AuthToken))

	// Companies API
	companiesAPI := api.Group("/companies")
	{
		companiesAPI.GET("", s.companiesHandler.HandleList)
		companiesAPI.POST("/refresh", s.companiesHandler.HandleRefresh)
		companiesAPI.GET("/export", s.companiesHandler.HandleExport)
		companiesAPI.GET("/:id", s.companiesHandler.HandleGet)
	}

	// Contracts API
	contractsAPI := api.Group("/contracts")
	{
		contractsAPI.GET("", s.contractsHandler.HandleRenderAll)
		contractsAPI.GET("/:id", s.contractsHandler.HandleRenderOne)
	}

	// Settings API
	settingsAPI := api.Group("/settings")
	{
		settingsAPI.GET("", s.settingsHandler.HandleGet)
		settingsAPI.PUT("", s.settingsHandler.HandleUpdate)
	}
}

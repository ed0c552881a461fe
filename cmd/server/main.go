package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"contractor/crm"
	"contractor/database"
	"contractor/importer"
	"contractor/internal/config"
	"contractor/server"
	"contractor/server/services"
	"contractor/tex"
)

func main() {
	log.Println("Запуск Contractor HTTP Server...")

	// Загружаем конфигурацию
	log.Println("[1/6] Загрузка конфигурации...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Ошибка загрузки конфигурации: %v", err)
	}
	log.Printf("✓ Конфигурация загружена. Порт: %s", cfg.Port)

	// Инициализируем хранилище срезов
	log.Println("[2/6] Инициализация базы срезов...")
	snapshotDB, err := database.NewSnapshotDB(cfg.SnapshotDBPath)
	if err != nil {
		log.Fatalf("✗ Не удалось открыть базу срезов %s: %v", cfg.SnapshotDBPath, err)
	}
	defer snapshotDB.Close()
	log.Printf("✓ База срезов открыта: %s", cfg.SnapshotDBPath)

	// Создаем CRM клиент и импортер
	log.Println("[3/6] Инициализация CRM клиента...")
	crmClient := crm.NewClient(crm.Config{
		URL:          cfg.CRMURL,
		AppName:      cfg.CRMAppName,
		Username:     cfg.CRMUsername,
		PasswordHash: cfg.CRMPasswordHash,
		Timeout:      cfg.CRMTimeout,
		RateLimit:    rateLimitFromInterval(cfg.CRMRateInterval),
	})
	catalogImporter := importer.New(crmClient)
	log.Printf("✓ CRM клиент создан: %s", cfg.CRMURL)

	// Собираем сервисы
	log.Println("[4/6] Инициализация сервисов...")
	companyService := services.NewCompanyService(catalogImporter, snapshotDB)
	if err := companyService.RestoreFromDisk(); err != nil {
		log.Printf("⚠ Не удалось восстановить срез с диска: %v", err)
	}
	settingsService := services.NewSettingsService(cfg.SettingsPath)
	renderer := tex.NewRenderer(cfg.CompilerPath)
	contractService := services.NewContractService(companyService, settingsService, renderer, cfg.RenderTimeout)
	log.Println("✓ Сервисы инициализированы")

	// Создаем сервер
	log.Println("[5/6] Создание сервера...")
	srv := server.NewServer(cfg, companyService, contractService, settingsService)
	log.Println("✓ Сервер создан")

	// Запускаем сервер в горутине
	log.Println("[6/6] Запуск HTTP сервера...")
	startErrorChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			startErrorChan <- err
		}
	}()

	log.Printf("✓ Сервер запущен на порту %s", cfg.Port)
	log.Printf("Health check: http://localhost:%s/health", cfg.Port)
	log.Println("Для остановки нажмите Ctrl+C")

	// Ожидаем сигнал завершения или ошибку запуска
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-startErrorChan:
		log.Fatalf("✗ Сервер не запустился: %v", err)
	case <-sigChan:
		log.Println("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}

// rateLimitFromInterval переводит минимальный интервал между
// SOAP-вызовами в rate.Limit. Нулевой интервал снимает ограничение
func rateLimitFromInterval(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

package services

import (
	"log/slog"
	"sync"

	"contractor/settings"
)

// SettingsService хранит годовые настройки ярмарки.
// Настройки читаются из JSON-файла при старте и перезаписываются
// целиком при каждом обновлении
type SettingsService struct {
	path string

	mu      sync.RWMutex
	current settings.Yearly
}

// NewSettingsService загружает настройки из файла. Отсутствующий файл
// не ошибка, поврежденный файл заменяется значениями по умолчанию
func NewSettingsService(path string) *SettingsService {
	y, err := settings.Load(path)
	if err != nil {
		slog.Error("Failed to load settings, using defaults", "path", path, "error", err)
	}
	return &SettingsService{
		path:    path,
		current: y,
	}
}

// Current возвращает текущие настройки
func (ss *SettingsService) Current() settings.Yearly {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.current
}

// Update валидирует, сохраняет и применяет новые настройки.
// При ошибке сохранения текущие настройки не меняются
func (ss *SettingsService) Update(y settings.Yearly) error {
	if err := y.Validate(); err != nil {
		return err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := y.Save(ss.path); err != nil {
		return err
	}
	ss.current = y
	return nil
}

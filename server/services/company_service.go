package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"contractor/database"
	"contractor/importer"
	"contractor/normalization"
)

// CompanyService сервис каталога компаний-участников.
// Объединяет кэш импортера и персистентное хранилище срезов:
// каждый успешный Refresh сохраняется на диск, при старте последний
// срез восстанавливается в кэш.
type CompanyService struct {
	importer *importer.CatalogImporter
	db       *database.SnapshotDB
}

// NewCompanyService создает новый сервис компаний
func NewCompanyService(imp *importer.CatalogImporter, db *database.SnapshotDB) *CompanyService {
	return &CompanyService{
		importer: imp,
		db:       db,
	}
}

// RestoreFromDisk загружает последний сохраненный срез в кэш импортера.
// Вызывается один раз при старте, до первого Refresh
func (cs *CompanyService) RestoreFromDisk() error {
	if cs.db == nil {
		return nil
	}

	snap, err := cs.db.LoadLatestSnapshot()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	cs.importer.Restore(snap)
	slog.Info("Snapshot restored from disk",
		"records", len(snap.Records),
		"errors", len(snap.Errors),
		"refreshed_at", snap.RefreshedAt,
	)
	return nil
}

// Refresh перечитывает каталог из CRM и сохраняет новый срез на диск.
// Ошибка сохранения не фатальна: кэш уже обновлен, срез живет в памяти
func (cs *CompanyService) Refresh(ctx context.Context) (*importer.Snapshot, error) {
	if err := cs.importer.Refresh(ctx); err != nil {
		return nil, err
	}

	snap := cs.importer.List()
	if cs.db != nil {
		if err := cs.db.SaveSnapshot(snap); err != nil {
			slog.Error("Failed to persist snapshot", "error", err)
		}
	}
	return snap, nil
}

// List возвращает текущий срез каталога
func (cs *CompanyService) List() *importer.Snapshot {
	return cs.importer.List()
}

// Get запрашивает одну компанию напрямую из CRM
func (cs *CompanyService) Get(ctx context.Context, id string) (*normalization.CompanyRecord, error) {
	return cs.importer.Get(ctx, id)
}

// ExportExcel пишет текущий срез каталога в xlsx
func (cs *CompanyService) ExportExcel(w io.Writer) error {
	return importer.ExportExcel(w, cs.importer.List())
}

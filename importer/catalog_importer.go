package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"contractor/crm"
	"contractor/normalization"
)

// ErrNotFound компания с таким id отсутствует в CRM
var ErrNotFound = errors.New("company not found")

// Параметры запроса участников ярмарки в модуле Accounts
const (
	accountsModule = "Accounts"
	fairQuery      = "accounts_cstm.messeteilnahme_c = 1"
	fairOrderBy    = "accounts.name"
)

// accountFields поля, запрашиваемые у CRM для каждой компании
var accountFields = []string{
	"id",
	"name",
	"assigned_user_name",
	"shipping_address_street",
	"shipping_address_street_2",
	"shipping_address_street_3",
	"shipping_address_street_4",
	"shipping_address_city",
	"shipping_address_state",
	"shipping_address_postalcode",
	"shipping_address_country",
	"tag1_c",
	"tag2_c",
	"tischgroesse_c",
	"packet_c",
	"mediapaket_c",
	"kategorie_c",
	"kontaktinfo_c",
}

// CRMSource источник сырых записей CRM (реализуется crm.Client)
type CRMSource interface {
	Session(ctx context.Context, fn func(ctx context.Context) error) error
	GetEntryList(ctx context.Context, module, query, orderBy string, fields []string) ([]map[string]string, error)
	GetEntry(ctx context.Context, module, id string, fields []string) (map[string]string, error)
}

// Snapshot неизменяемый результат одного импорта: записи компаний и
// ошибки классификации по именам компаний. Читатели всегда видят
// снапшот целиком, частичных обновлений не бывает.
type Snapshot struct {
	Records     []*normalization.CompanyRecord `json:"records"`
	Errors      map[string]string              `json:"errors"`
	RefreshedAt time.Time                      `json:"refreshed_at"`
}

// CatalogImporter импортер каталога компаний из CRM с кешированным
// снапшотом. Единственный писатель снапшота — Refresh.
type CatalogImporter struct {
	crm CRMSource

	mu   sync.RWMutex
	snap *Snapshot
}

// New создает импортер с пустым начальным снапшотом
func New(source CRMSource) *CatalogImporter {
	return &CatalogImporter{
		crm: source,
		snap: &Snapshot{
			Records: []*normalization.CompanyRecord{},
			Errors:  map[string]string{},
		},
	}
}

// Refresh запрашивает участников ярмарки у CRM, нормализует каждую запись
// и атомарно подменяет кешированный снапшот. Ошибка транспорта оставляет
// прежний снапшот нетронутым и уходит вызывающему как есть: политика
// повторов здесь сознательно отсутствует.
func (ci *CatalogImporter) Refresh(ctx context.Context) error {
	var raws []map[string]string
	err := ci.crm.Session(ctx, func(ctx context.Context) error {
		var err error
		raws, err = ci.crm.GetEntryList(ctx, accountsModule, fairQuery, fairOrderBy, accountFields)
		return err
	})
	if err != nil {
		return fmt.Errorf("refresh companies: %w", err)
	}

	snap := &Snapshot{
		Records:     make([]*normalization.CompanyRecord, 0, len(raws)),
		Errors:      map[string]string{},
		RefreshedAt: time.Now().UTC(),
	}

	for _, raw := range raws {
		record, err := normalization.NormalizeCompany(raw)
		if err != nil {
			snap.Errors[errorKey(raw)] = err.Error()
			continue
		}
		snap.Records = append(snap.Records, record)
	}

	ci.mu.Lock()
	ci.snap = snap
	ci.mu.Unlock()

	return nil
}

// List возвращает текущий снапшот. Снапшот после публикации не
// изменяется, вызывающий может читать его без синхронизации.
func (ci *CatalogImporter) List() *Snapshot {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.snap
}

// Get запрашивает одну компанию напрямую у CRM (мимо кеша) и
// нормализует ее тем же путем, что и Refresh
func (ci *CatalogImporter) Get(ctx context.Context, id string) (*normalization.CompanyRecord, error) {
	var raw map[string]string
	err := ci.crm.Session(ctx, func(ctx context.Context) error {
		var err error
		raw, err = ci.crm.GetEntry(ctx, accountsModule, id, accountFields)
		return err
	})
	if err != nil {
		if errors.Is(err, crm.ErrNoEntry) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get company %s: %w", id, err)
	}

	return normalization.NormalizeCompany(raw)
}

// Restore подменяет снапшот загруженным с диска. Используется при старте
// сервиса и только до первого успешного Refresh.
func (ci *CatalogImporter) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	if snap.Records == nil {
		snap.Records = []*normalization.CompanyRecord{}
	}
	if snap.Errors == nil {
		snap.Errors = map[string]string{}
	}

	ci.mu.Lock()
	defer ci.mu.Unlock()
	if !ci.snap.RefreshedAt.IsZero() {
		// Свежие данные из CRM не затираем
		return
	}
	ci.snap = snap
}

// errorKey ключ для карты ошибок: имя компании, иначе id
func errorKey(raw map[string]string) string {
	if name := raw[normalization.FieldName]; name != "" {
		return name
	}
	if id := raw[normalization.FieldID]; id != "" {
		return id
	}
	return "unknown company"
}

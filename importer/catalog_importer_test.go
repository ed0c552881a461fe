package importer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"contractor/crm"
	"contractor/normalization"
)

// fakeSource источник CRM для тестов: отдает подготовленные записи
// или ошибку транспорта
type fakeSource struct {
	entries []map[string]string
	entry   map[string]string
	err     error

	sessions int
}

func (f *fakeSource) Session(ctx context.Context, fn func(ctx context.Context) error) error {
	f.sessions++
	return fn(ctx)
}

func (f *fakeSource) GetEntryList(ctx context.Context, module, query, orderBy string, fields []string) ([]map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeSource) GetEntry(ctx context.Context, module, id string, fields []string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.entry == nil {
		return nil, crm.ErrNoEntry
	}
	return f.entry, nil
}

func rawCompany(name string) map[string]string {
	return map[string]string{
		normalization.FieldID:         "id-" + name,
		normalization.FieldName:       name,
		normalization.FieldAssigned:   "Max Betreuer",
		normalization.FieldStreet:     "Teststrasse 1",
		normalization.FieldCity:       "Zürich",
		normalization.FieldPostalCode: "8001",
		normalization.FieldDay1:       "1",
		normalization.FieldDay2:       "1",
		normalization.FieldBoothSize:  "ein",
		normalization.FieldCategory:   "katB",
		normalization.FieldContact:    "Muster, Hans",
	}
}

func TestRefresh_PartitionsRecordsAndErrors(t *testing.T) {
	broken := rawCompany("Broken GmbH")
	delete(broken, normalization.FieldStreet)

	source := &fakeSource{entries: []map[string]string{
		rawCompany("Alpha AG"),
		broken,
		rawCompany("Gamma AG"),
	}}
	ci := New(source)

	if err := ci.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := ci.List()
	if len(snap.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(snap.Records))
	}
	if len(snap.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(snap.Errors), snap.Errors)
	}
	reason, ok := snap.Errors["Broken GmbH"]
	if !ok {
		t.Fatalf("error not keyed by company name: %v", snap.Errors)
	}
	if reason == "" {
		t.Error("empty error reason")
	}
	if snap.RefreshedAt.IsZero() {
		t.Error("RefreshedAt not set")
	}
}

// TestRefresh_ZeroResults: пустой результат CRM — это успешный импорт
// без компаний, а не ошибка
func TestRefresh_ZeroResults(t *testing.T) {
	ci := New(&fakeSource{entries: nil})

	if err := ci.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := ci.List()
	if len(snap.Records) != 0 || len(snap.Errors) != 0 {
		t.Errorf("records=%d errors=%d, want 0/0", len(snap.Records), len(snap.Errors))
	}
	if snap.Records == nil || snap.Errors == nil {
		t.Error("records and errors must be non-nil after successful refresh")
	}
}

// TestRefresh_TransportErrorKeepsCache: ошибка транспорта уходит
// вызывающему, прежний снапшот остается на месте
func TestRefresh_TransportErrorKeepsCache(t *testing.T) {
	source := &fakeSource{entries: []map[string]string{rawCompany("Alpha AG")}}
	ci := New(source)

	if err := ci.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	before := ci.List()

	source.err = errors.New("connection refused")
	err := ci.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}

	after := ci.List()
	if after != before {
		t.Error("failed refresh must not replace the snapshot")
	}
	if len(after.Records) != 1 {
		t.Errorf("cache lost: %d records", len(after.Records))
	}
}

func TestGet(t *testing.T) {
	source := &fakeSource{entry: rawCompany("Delta AG")}
	ci := New(source)

	record, err := ci.Get(context.Background(), "id-Delta AG")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.CompanyName != "Delta AG" {
		t.Errorf("CompanyName = %q", record.CompanyName)
	}
	// Get ходит в CRM напрямую, кеш не трогает
	if len(ci.List().Records) != 0 {
		t.Error("Get must not populate the cache")
	}
}

func TestGet_NotFound(t *testing.T) {
	ci := New(&fakeSource{})

	_, err := ci.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
}

func TestGet_NormalizationError(t *testing.T) {
	broken := rawCompany("Broken GmbH")
	broken[normalization.FieldCategory] = "katX"

	ci := New(&fakeSource{entry: broken})

	_, err := ci.Get(context.Background(), "id-Broken GmbH")
	var valueErr *normalization.UnrecognizedValueError
	if !errors.As(err, &valueErr) {
		t.Fatalf("Get = %v, want UnrecognizedValueError", err)
	}
}

func TestRestore(t *testing.T) {
	ci := New(&fakeSource{entries: []map[string]string{rawCompany("Alpha AG")}})

	restored := &Snapshot{
		Records: []*normalization.CompanyRecord{{CompanyName: "Persisted AG"}},
		Errors:  map[string]string{},
	}
	ci.Restore(restored)

	if got := ci.List().Records[0].CompanyName; got != "Persisted AG" {
		t.Errorf("restored record = %q", got)
	}

	// После успешного Refresh загрузка с диска больше не перекрывает кеш
	if err := ci.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	ci.Restore(restored)
	if got := ci.List().Records[0].CompanyName; got != "Alpha AG" {
		t.Errorf("Restore overwrote fresh data: %q", got)
	}
}

func TestExportExcel(t *testing.T) {
	source := &fakeSource{entries: []map[string]string{rawCompany("Alpha AG")}}
	ci := New(source)
	if err := ci.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	var buf bytes.Buffer
	if err := ExportExcel(&buf, ci.List()); err != nil {
		t.Fatalf("ExportExcel: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty xlsx output")
	}
	// xlsx это zip-архив
	if buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("output does not look like an xlsx file")
	}
}

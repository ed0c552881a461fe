package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"contractor/crm"
	"contractor/importer"
	"contractor/normalization"
	"contractor/tex"
)

// fakeSource источник CRM, отдающий фиксированные записи
type fakeSource struct {
	entries []map[string]string
}

func (fs *fakeSource) Session(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fs *fakeSource) GetEntryList(ctx context.Context, module, query, orderBy string, fields []string) ([]map[string]string, error) {
	return fs.entries, nil
}

func (fs *fakeSource) GetEntry(ctx context.Context, module, id string, fields []string) (map[string]string, error) {
	for _, e := range fs.entries {
		if e[normalization.FieldID] == id {
			return e, nil
		}
	}
	return nil, crm.ErrNoEntry
}

func testEntry(id, name string) map[string]string {
	return map[string]string{
		normalization.FieldID:         id,
		normalization.FieldName:       name,
		normalization.FieldAssigned:   "Max Betreuer",
		normalization.FieldStreet:     "Musterstrasse 5",
		normalization.FieldCity:       "Zürich",
		normalization.FieldPostalCode: "8092",
		normalization.FieldCountry:    "Schweiz",
		normalization.FieldDay1:       "1",
		normalization.FieldDay2:       "0",
		normalization.FieldBoothSize:  "kein",
		normalization.FieldCategory:   "katA",
		normalization.FieldPacket:     "business",
		normalization.FieldMedia:      "mediaPaket",
		normalization.FieldContact:    "Muster, Hans, hans@muster.ch",
	}
}

func newContractService(t *testing.T, source importer.CRMSource) (*ContractService, *CompanyService) {
	t.Helper()

	companies := NewCompanyService(importer.New(source), nil)
	settings := NewSettingsService(filepath.Join(t.TempDir(), "settings.json"))
	contracts := NewContractService(companies, settings, tex.NewRenderer(""), 0)
	return contracts, companies
}

func TestOptionsFor(t *testing.T) {
	tests := []struct {
		format       string
		contractOnly bool
		sourceOnly   bool
		wantErr      bool
	}{
		{"", false, false, false},
		{FormatMail, false, false, false},
		{FormatEmail, true, false, false},
		{FormatTeX, false, true, false},
		{"pdf", false, false, true},
		{"MAIL", false, false, true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			opts, err := optionsFor(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("optionsFor(%q) expected error", tt.format)
				}
				var formatErr *ErrUnknownFormat
				if !errors.As(err, &formatErr) {
					t.Fatalf("optionsFor(%q) = %v, want ErrUnknownFormat", tt.format, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("optionsFor(%q) error: %v", tt.format, err)
			}
			if opts.ContractOnly != tt.contractOnly || opts.SourceOnly != tt.sourceOnly {
				t.Errorf("optionsFor(%q) = %+v", tt.format, opts)
			}
		})
	}
}

func TestContractService_RenderAll(t *testing.T) {
	contracts, companies := newContractService(t, &fakeSource{entries: []map[string]string{
		testEntry("id-1", "Muster AG"),
		testEntry("id-2", "Beispiel GmbH"),
	}})

	if _, err := companies.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	result, err := contracts.RenderAll(context.Background(), FormatTeX)
	if err != nil {
		t.Fatalf("RenderAll() error: %v", err)
	}

	source := string(result.Data)
	if !strings.Contains(source, "Muster AG") || !strings.Contains(source, "Beispiel GmbH") {
		t.Error("rendered source is missing company names")
	}
	if result.MIME != tex.MIMETeX {
		t.Errorf("MIME = %s, want %s", result.MIME, tex.MIMETeX)
	}
}

func TestContractService_RenderOne(t *testing.T) {
	contracts, _ := newContractService(t, &fakeSource{entries: []map[string]string{
		testEntry("id-1", "Muster AG"),
	}})

	// RenderOne ходит в CRM напрямую, без Refresh
	result, err := contracts.RenderOne(context.Background(), "id-1", FormatTeX)
	if err != nil {
		t.Fatalf("RenderOne() error: %v", err)
	}
	if !strings.Contains(string(result.Data), "Muster AG") {
		t.Error("rendered source is missing company name")
	}
	if !strings.Contains(result.Filename, "Muster_AG") {
		t.Errorf("Filename = %s, want transliterated company name", result.Filename)
	}
}

func TestContractService_RenderOne_NotFound(t *testing.T) {
	contracts, _ := newContractService(t, &fakeSource{})

	_, err := contracts.RenderOne(context.Background(), "missing", FormatTeX)
	if !errors.Is(err, importer.ErrNotFound) {
		t.Fatalf("RenderOne() = %v, want ErrNotFound", err)
	}
}

func TestContractService_UnknownFormat(t *testing.T) {
	contracts, _ := newContractService(t, &fakeSource{})

	_, err := contracts.RenderAll(context.Background(), "docx")
	var formatErr *ErrUnknownFormat
	if !errors.As(err, &formatErr) {
		t.Fatalf("RenderAll() = %v, want ErrUnknownFormat", err)
	}
	if formatErr.Format != "docx" {
		t.Errorf("Format = %s, want docx", formatErr.Format)
	}
}

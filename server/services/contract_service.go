package services

import (
	"context"
	"fmt"
	"time"

	"contractor/normalization"
	"contractor/tex"
)

// Форматы документа договора
const (
	// FormatMail полный почтовый комплект: письмо и два экземпляра договора
	FormatMail = "mail"
	// FormatEmail один экземпляр договора без письма, для отправки по e-mail
	FormatEmail = "email"
	// FormatTeX LaTeX-исходник полного комплекта, без компиляции
	FormatTeX = "tex"
)

// ErrUnknownFormat запрошен неизвестный формат документа
type ErrUnknownFormat struct {
	Format string
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("unknown document format %q", e.Format)
}

// ContractService собирает данные для договоров и рендерит документы
type ContractService struct {
	companies *CompanyService
	settings  *SettingsService
	renderer  *tex.Renderer
	timeout   time.Duration
}

// NewContractService создает новый сервис договоров.
// Таймаут ограничивает один рендеринг вместе с компиляцией
func NewContractService(companies *CompanyService, settings *SettingsService, renderer *tex.Renderer, timeout time.Duration) *ContractService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ContractService{
		companies: companies,
		settings:  settings,
		renderer:  renderer,
		timeout:   timeout,
	}
}

// RenderAll рендерит договоры для всех компаний текущего среза
func (cs *ContractService) RenderAll(ctx context.Context, format string) (*tex.Result, error) {
	return cs.render(ctx, cs.companies.List().Records, format)
}

// RenderOne рендерит договор для одной компании, запрошенной из CRM
func (cs *ContractService) RenderOne(ctx context.Context, id, format string) (*tex.Result, error) {
	record, err := cs.companies.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return cs.render(ctx, []*normalization.CompanyRecord{record}, format)
}

func (cs *ContractService) render(ctx context.Context, records []*normalization.CompanyRecord, format string) (*tex.Result, error) {
	opts, err := optionsFor(format)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()

	return cs.renderer.Render(ctx, records, cs.settings.Current(), opts)
}

// optionsFor переводит формат запроса в опции рендерера.
// Пустой формат означает почтовый комплект
func optionsFor(format string) (tex.Options, error) {
	switch format {
	case "", FormatMail:
		return tex.Options{}, nil
	case FormatEmail:
		return tex.Options{ContractOnly: true}, nil
	case FormatTeX:
		return tex.Options{SourceOnly: true}, nil
	default:
		return tex.Options{}, &ErrUnknownFormat{Format: format}
	}
}

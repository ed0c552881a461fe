package tex

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"text/template"
	"time"

	"contractor/normalization"
	"contractor/settings"
)

// MIME-типы результатов рендеринга
const (
	MIMEPDF = "application/pdf"
	MIMETeX = "text/x-tex"
)

// ErrNoRecords рендеринг запрошен без единой компании
var ErrNoRecords = errors.New("no companies selected for rendering")

//go:embed contract_template.tex
var contractTemplate string

// Delimiter ((( ))) выбраны, чтобы не конфликтовать со скобками LaTeX
var tmpl = template.Must(
	template.New("document").Delims("(((", ")))").Parse(contractTemplate))

// Options параметры одного вызова рендеринга
type Options struct {
	// ContractOnly печатать только тело договора, без
	// сопроводительного письма и без второго экземпляра
	ContractOnly bool
	// SourceOnly вернуть LaTeX-исходник вместо скомпилированного PDF
	SourceOnly bool
}

// Result готовый документ: байты, предлагаемое имя файла и MIME-тип
type Result struct {
	Data     []byte
	Filename string
	MIME     string
}

// Renderer рендерит договоры из шаблона и компилирует их внешним
// xelatex. Документы не кешируются: каждый вызов строит документ заново.
type Renderer struct {
	compiler string
}

// NewRenderer создает рендерер; пустой путь компилятора означает
// xelatex из PATH
func NewRenderer(compiler string) *Renderer {
	if compiler == "" {
		compiler = "xelatex"
	}
	return &Renderer{compiler: compiler}
}

// companyView данные одной компании, подготовленные для шаблона.
// Весь свободный текст уже экранирован.
type companyView struct {
	FairTitle string
	President string

	CompanyName        string
	Representative     string
	AMIVRepresentative string
	Address            string
	City               string
	Country            string

	BoothDescription string
	BoothPrice       string
	DayLabel         string
	Packets          []packetView
}

type packetView struct {
	Description string
	Price       string
}

// renderContext корневой контекст шаблона
type renderContext struct {
	FairTitle    string
	President    string
	Sender       string
	ContractOnly bool
	Companies    []companyView
}

// Render строит документ для списка компаний. Возвращает исходник
// или PDF в зависимости от опций; имя файла contracts_<год> плюс
// транслитерированное имя компании, если компания одна.
func (r *Renderer) Render(ctx context.Context, records []*normalization.CompanyRecord, y settings.Yearly, opts Options) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	view := buildContext(records, y, opts)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render contract template: %w", err)
	}

	basename := "contracts_" + time.Now().UTC().Format("2006")
	if len(records) == 1 {
		basename += "_" + SecureFilename(records[0].CompanyName)
	}

	if opts.SourceOnly {
		return &Result{
			Data:     buf.Bytes(),
			Filename: basename + ".tex",
			MIME:     MIMETeX,
		}, nil
	}

	pdf, err := r.compile(ctx, basename, buf.Bytes())
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     pdf,
		Filename: basename + ".pdf",
		MIME:     MIMEPDF,
	}, nil
}

func buildContext(records []*normalization.CompanyRecord, y settings.Yearly, opts Options) *renderContext {
	view := &renderContext{
		FairTitle:    Escape(y.FairTitle),
		President:    Escape(y.President),
		Sender:       Newline(Escape(y.Sender)),
		ContractOnly: opts.ContractOnly,
		Companies:    make([]companyView, 0, len(records)),
	}

	for _, record := range records {
		company := companyView{
			FairTitle:          view.FairTitle,
			President:          view.President,
			CompanyName:        Escape(record.CompanyName),
			Representative:     Escape(record.CompanyRepresentative),
			AMIVRepresentative: Escape(record.AMIVRepresentative),
			Address:            Escape(record.CompanyAddress),
			City:               Escape(record.CompanyCity),
			Country:            Escape(record.CompanyCountry),
			BoothDescription:   record.BoothChoice.Description,
			BoothPrice:         y.Prices.Booths[record.BoothChoice.Name],
			DayLabel:           dayLabel(record.Days, y.Days),
		}

		if record.First != nil {
			company.Packets = append(company.Packets, packetView{
				Description: record.First.Description,
				Price:       y.Prices.First,
			})
		}
		if record.Business != nil {
			company.Packets = append(company.Packets, packetView{
				Description: record.Business.Description,
				Price:       y.Prices.Business,
			})
		}
		if record.Media != nil {
			company.Packets = append(company.Packets, packetView{
				Description: record.Media.Description,
				Price:       y.Prices.Media,
			})
		}

		view.Companies = append(view.Companies, company)
	}

	return view
}

func dayLabel(days string, labels settings.DayLabels) string {
	switch days {
	case normalization.DaysFirst:
		return labels.First
	case normalization.DaysSecond:
		return labels.Second
	case normalization.DaysBoth:
		return labels.Both
	}
	return ""
}

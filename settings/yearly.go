package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"contractor/classification"
)

// Yearly настройки, меняющиеся раз в год: название ярмарки, подписанты,
// прайс-лист и подписи дней. Рендерер читает структуру как есть и
// не проверяет ничего сверх нужных ему ключей.
type Yearly struct {
	FairTitle string `json:"fairtitle"`
	President string `json:"president"`
	// Sender может занимать несколько строк (имя + должность)
	Sender string `json:"sender"`

	Prices Prices    `json:"prices"`
	Days   DayLabels `json:"days"`
}

// Prices цены без валюты, строками, как их печатает договор
type Prices struct {
	// Booths цены по короткому имени варианта стенда (sA1 ... su2)
	Booths   map[string]string `json:"booths"`
	Media    string            `json:"media"`
	Business string            `json:"business"`
	First    string            `json:"first"`
}

// DayLabels подписи дней ярмарки в тексте договора
type DayLabels struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Both   string `json:"both"`
}

// Default настройки по умолчанию; используются, пока файл настроек
// не сохранен через форму
func Default() Yearly {
	return Yearly{
		FairTitle: "Kontakt.26",
		President: "Alexander Ens",
		Sender:    "Pascal Gutzwiller",
		Prices: Prices{
			Booths: map[string]string{
				"sA1": "1100",
				"sA2": "2800",
				"sB1": "850",
				"sB2": "2600",
				"bA1": "2200",
				"bA2": "4800",
				"bB1": "1800",
				"bB2": "4400",
				"su1": "300",
				"su2": "750",
			},
			Media:    "850",
			Business: "1500",
			First:    "2500",
		},
		Days: DayLabels{
			First:  "Dienstag, 20.10.",
			Second: "Mittwoch, 21.10.",
			Both:   "Dienstag und Mittwoch, 20./21.10.",
		},
	}
}

// Load читает настройки из файла, отсутствующий файл дает значения
// по умолчанию
func Load(path string) (Yearly, error) {
	y := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return y, nil
	}
	if err != nil {
		return y, fmt.Errorf("read yearly settings: %w", err)
	}

	if err := json.Unmarshal(data, &y); err != nil {
		return Default(), fmt.Errorf("parse yearly settings: %w", err)
	}
	if err := y.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid yearly settings in %s: %w", path, err)
	}
	return y, nil
}

// Save записывает настройки в файл
func (y Yearly) Save(path string) error {
	if err := y.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(y, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal yearly settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yearly settings: %w", err)
	}
	return nil
}

// Validate проверяет, что заполнено все, что печатается в договоре
func (y Yearly) Validate() error {
	if y.FairTitle == "" {
		return errors.New("fairtitle is required")
	}
	if y.President == "" {
		return errors.New("president is required")
	}
	if y.Sender == "" {
		return errors.New("sender is required")
	}
	if y.Days.First == "" || y.Days.Second == "" || y.Days.Both == "" {
		return errors.New("all day labels are required")
	}
	if y.Prices.Media == "" || y.Prices.Business == "" || y.Prices.First == "" {
		return errors.New("all packet prices are required")
	}

	// Цена должна существовать для каждого варианта стенда
	for _, choice := range classification.AllBoothChoices() {
		if y.Prices.Booths[choice.Name] == "" {
			return fmt.Errorf("missing booth price for %s", choice.Name)
		}
	}
	return nil
}

package normalization

import (
	"fmt"
	"strings"

	"contractor/classification"
)

// Имена полей CRM (модуль Accounts)
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldAssigned   = "assigned_user_name"
	FieldStreet     = "shipping_address_street"
	FieldCity       = "shipping_address_city"
	FieldPostalCode = "shipping_address_postalcode"
	FieldCountry    = "shipping_address_country"
	FieldDay1       = "tag1_c"
	FieldDay2       = "tag2_c"
	FieldBoothSize  = "tischgroesse_c"
	FieldPacket     = "packet_c"
	FieldMedia      = "mediapaket_c"
	FieldCategory   = "kategorie_c"
	FieldContact    = "kontaktinfo_c"
)

// Сентинельные значения в полях CRM
const (
	dayFlagSet = "1"

	boothSizeStartup = "startup"
	boothSizeSmall   = "kein" // историческое кодирование: 'kein' = малый стенд
	boothSizeBig     = "ein"  // 'ein' = большой стенд

	categoryA = "katA"
	categoryB = "katB"
	categoryC = "katC"

	mediaPacket = "mediaPaket"

	homeCountry = "Schweiz"
)

// Дни участия в ярмарке
const (
	DaysFirst  = "first"
	DaysSecond = "second"
	DaysBoth   = "both"
)

// CompanyRecord каноническая запись компании, получаемая нормализацией
// одной сырой записи CRM. После создания не изменяется.
type CompanyRecord struct {
	ID                    string `json:"id"`
	CompanyName           string `json:"companyname"`
	AMIVRepresentative    string `json:"amivrepresentative"`
	CompanyRepresentative string `json:"companyrepresentative"`

	CompanyAddress string `json:"companyaddress"`
	CompanyCity    string `json:"companycity"`
	// CompanyCountry пустая строка означает Швейцарию или неуказанную
	// страну: строка страны в документах тогда опускается
	CompanyCountry string `json:"companycountry"`

	BoothChoice classification.BoothChoice `json:"boothchoice"`
	Days        string                     `json:"days"`

	Media    *classification.PacketChoice `json:"media,omitempty"`
	Business *classification.PacketChoice `json:"business,omitempty"`
	First    *classification.PacketChoice `json:"first,omitempty"`
}

// MissingFieldsError обязательные адресные поля отсутствуют в записи CRM
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// UnrecognizedValueError поле CRM содержит значение вне известного набора
type UnrecognizedValueError struct {
	Field string
	Value string
}

func (e *UnrecognizedValueError) Error() string {
	return fmt.Sprintf("unrecognized value for '%s': '%s'", e.Field, e.Value)
}

// RepresentativeError имя контактного лица не извлекается из kontaktinfo_c
type RepresentativeError struct {
	Raw string
}

func (e *RepresentativeError) Error() string {
	return fmt.Sprintf("company representative could not be extracted from '%s': '%s'",
		FieldContact, e.Raw)
}

// AmbiguousDaysError ни один из флагов дней участия не установлен.
// Раньше запись в этом случае молча получала день по умолчанию,
// теперь это явная ошибка классификации.
type AmbiguousDaysError struct{}

func (e *AmbiguousDaysError) Error() string {
	return "neither fair day flag is set"
}

// NormalizeCompany превращает сырую запись CRM в каноническую запись
// компании. Чистая функция: не трогает ни вход, ни внешнее состояние.
func NormalizeCompany(raw map[string]string) (*CompanyRecord, error) {
	// 1. Обязательные поля: улица, индекс, город
	var missing []string
	for _, f := range []string{FieldStreet, FieldPostalCode, FieldCity} {
		if raw[f] == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	record := &CompanyRecord{
		ID:                 raw[FieldID],
		CompanyName:        raw[FieldName],
		AMIVRepresentative: raw[FieldAssigned],
		CompanyAddress:     raw[FieldStreet],
		CompanyCity:        raw[FieldPostalCode] + " " + raw[FieldCity],
	}

	// 2. Пакеты: коды packet_c совпадают с именами пакетов классификатора,
	// поэтому выбор идет через PacketChoiceFor. Все прочие значения
	// означают "пакет не запрошен" и ошибкой не считаются
	if raw[FieldMedia] == mediaPacket {
		if p, ok := classification.PacketChoiceFor(classification.PacketMedia.Name); ok {
			record.Media = &p
		}
	}
	if p, ok := classification.PacketChoiceFor(raw[FieldPacket]); ok {
		switch p.Name {
		case classification.PacketBusiness.Name:
			record.Business = &p
		case classification.PacketFirst.Name:
			record.First = &p
		}
	}

	// 3. Страна: домашняя страна и пустое значение дают пустую строку
	if country := raw[FieldCountry]; country != "" && country != homeCountry {
		record.CompanyCountry = country
	}

	// 4. Дни участия
	day1 := raw[FieldDay1] == dayFlagSet
	day2 := raw[FieldDay2] == dayFlagSet
	switch {
	case day1 && day2:
		record.Days = DaysBoth
	case day1:
		record.Days = DaysFirst
	case day2:
		record.Days = DaysSecond
	default:
		return nil, &AmbiguousDaysError{}
	}

	// 5. Размер стенда
	var size classification.BoothSize
	switch raw[FieldBoothSize] {
	case boothSizeStartup:
		size = classification.SizeStartup
	case boothSizeSmall:
		size = classification.SizeSmall
	case boothSizeBig:
		size = classification.SizeBig
	default:
		return nil, &UnrecognizedValueError{Field: FieldBoothSize, Value: raw[FieldBoothSize]}
	}

	// 6. Категория
	var category classification.Category
	switch raw[FieldCategory] {
	case categoryA:
		category = classification.CategoryA
	case categoryB:
		category = classification.CategoryB
	case categoryC:
		category = classification.CategoryC
	default:
		return nil, &UnrecognizedValueError{Field: FieldCategory, Value: raw[FieldCategory]}
	}

	// 7. Вариант стенда по таблице классификации
	dayCount := 1
	if record.Days == DaysBoth {
		dayCount = 2
	}
	choice, err := classification.BoothChoiceFor(size, category, dayCount)
	if err != nil {
		return nil, err
	}
	record.BoothChoice = choice

	// 8. Контактное лицо: первые два токена kontaktinfo_c через запятую.
	// Токены склеиваются как есть, пробел после запятой сохраняется.
	contact := raw[FieldContact]
	if contact == "" {
		return nil, &RepresentativeError{Raw: contact}
	}
	parts := strings.SplitN(contact, ",", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	record.CompanyRepresentative = strings.Join(parts, "")

	return record, nil
}

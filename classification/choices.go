package classification

import (
	"fmt"
)

// BoothSize размер стенда на ярмарке
type BoothSize string

const (
	SizeSmall   BoothSize = "small"
	SizeBig     BoothSize = "big"
	SizeStartup BoothSize = "startup"
)

// Category ценовая категория стенда.
// Категория C не является самостоятельной категорией: в CRM она маркирует
// стартапы, поэтому в описании стенда она не отображается.
type Category string

const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
)

// BoothChoice один из закрытого набора вариантов стенда.
// Набор фиксирован при старте процесса, значения неизменяемы.
type BoothChoice struct {
	Name        string    `json:"name"`
	Size        BoothSize `json:"size"`
	Category    Category  `json:"category"`
	Days        int       `json:"days"`
	Description string    `json:"description"`
}

// UnknownClassificationError возникает, когда комбинация
// (размер, категория, дни) не соответствует ни одному варианту стенда.
type UnknownClassificationError struct {
	Size     BoothSize
	Category Category
	Days     int
}

func (e *UnknownClassificationError) Error() string {
	return fmt.Sprintf("no booth choice for size=%s category=%s days=%d",
		e.Size, e.Category, e.Days)
}

// newBoothChoice создает вариант стенда с предвычисленным описанием
func newBoothChoice(name string, size BoothSize, category Category, days int) BoothChoice {
	var desc string
	if size == SizeStartup {
		desc = "startup, "
	} else {
		desc = fmt.Sprintf("%s booth, ", size)
	}

	// Категория C — маркер стартапа, в описании не показываем
	if category != CategoryC {
		desc += fmt.Sprintf("category %s, ", category)
	}

	if days > 1 {
		desc += fmt.Sprintf("%d days", days)
	} else {
		desc += "1 day"
	}

	return BoothChoice{
		Name:        name,
		Size:        size,
		Category:    category,
		Days:        days,
		Description: desc,
	}
}

// boothChoices исчерпывающая таблица вариантов стенда.
// Малые и большие стенды существуют только в категориях A и B,
// стартапы только в категории C.
var boothChoices = []BoothChoice{
	// Малые стенды
	newBoothChoice("sA1", SizeSmall, CategoryA, 1),
	newBoothChoice("sA2", SizeSmall, CategoryA, 2),
	newBoothChoice("sB1", SizeSmall, CategoryB, 1),
	newBoothChoice("sB2", SizeSmall, CategoryB, 2),

	// Большие стенды
	newBoothChoice("bA1", SizeBig, CategoryA, 1),
	newBoothChoice("bA2", SizeBig, CategoryA, 2),
	newBoothChoice("bB1", SizeBig, CategoryB, 1),
	newBoothChoice("bB2", SizeBig, CategoryB, 2),

	// Стартапы
	newBoothChoice("su1", SizeStartup, CategoryC, 1),
	newBoothChoice("su2", SizeStartup, CategoryC, 2),
}

// BoothChoiceFor возвращает единственный вариант стенда для комбинации
// (размер, категория, дни) или UnknownClassificationError, если такой
// комбинации нет в таблице
func BoothChoiceFor(size BoothSize, category Category, days int) (BoothChoice, error) {
	for _, c := range boothChoices {
		if c.Size == size && c.Category == category && c.Days == days {
			return c, nil
		}
	}
	return BoothChoice{}, &UnknownClassificationError{Size: size, Category: category, Days: days}
}

// AllBoothChoices возвращает копию полного списка вариантов стенда
// (используется для валидации прайс-листа и форм настроек)
func AllBoothChoices() []BoothChoice {
	out := make([]BoothChoice, len(boothChoices))
	copy(out, boothChoices)
	return out
}

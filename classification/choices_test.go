package classification

import (
	"errors"
	"testing"
)

// TestBoothChoiceFor_AllMembers проверяет, что каждая валидная комбинация
// находит ровно свой вариант стенда
func TestBoothChoiceFor_AllMembers(t *testing.T) {
	tests := []struct {
		name     string
		size     BoothSize
		category Category
		days     int
	}{
		{"sA1", SizeSmall, CategoryA, 1},
		{"sA2", SizeSmall, CategoryA, 2},
		{"sB1", SizeSmall, CategoryB, 1},
		{"sB2", SizeSmall, CategoryB, 2},
		{"bA1", SizeBig, CategoryA, 1},
		{"bA2", SizeBig, CategoryA, 2},
		{"bB1", SizeBig, CategoryB, 1},
		{"bB2", SizeBig, CategoryB, 2},
		{"su1", SizeStartup, CategoryC, 1},
		{"su2", SizeStartup, CategoryC, 2},
	}

	for _, tt := range tests {
		choice, err := BoothChoiceFor(tt.size, tt.category, tt.days)
		if err != nil {
			t.Errorf("BoothChoiceFor(%s, %s, %d): unexpected error: %v",
				tt.size, tt.category, tt.days, err)
			continue
		}
		if choice.Name != tt.name {
			t.Errorf("BoothChoiceFor(%s, %s, %d) = %s, want %s",
				tt.size, tt.category, tt.days, choice.Name, tt.name)
		}
		if choice.Days != tt.days {
			t.Errorf("%s: Days = %d, want %d", tt.name, choice.Days, tt.days)
		}
	}
}

// TestBoothChoiceFor_InvalidCombinations проверяет, что комбинации вне
// таблицы дают UnknownClassificationError
func TestBoothChoiceFor_InvalidCombinations(t *testing.T) {
	tests := []struct {
		size     BoothSize
		category Category
		days     int
	}{
		{SizeSmall, CategoryC, 1}, // категория C только для стартапов
		{SizeBig, CategoryC, 2},
		{SizeStartup, CategoryA, 1}, // стартапы только в категории C
		{SizeStartup, CategoryB, 2},
		{SizeSmall, CategoryA, 3}, // дней бывает 1 или 2
		{SizeSmall, CategoryA, 0},
	}

	for _, tt := range tests {
		_, err := BoothChoiceFor(tt.size, tt.category, tt.days)
		if err == nil {
			t.Errorf("BoothChoiceFor(%s, %s, %d): expected error, got nil",
				tt.size, tt.category, tt.days)
			continue
		}
		var unknownErr *UnknownClassificationError
		if !errors.As(err, &unknownErr) {
			t.Errorf("BoothChoiceFor(%s, %s, %d): error %v is not UnknownClassificationError",
				tt.size, tt.category, tt.days, err)
		}
	}
}

// TestBoothChoice_Descriptions проверяет предвычисленные описания
func TestBoothChoice_Descriptions(t *testing.T) {
	tests := []struct {
		size     BoothSize
		category Category
		days     int
		want     string
	}{
		{SizeSmall, CategoryA, 2, "small booth, category A, 2 days"},
		{SizeSmall, CategoryA, 1, "small booth, category A, 1 day"},
		{SizeBig, CategoryB, 1, "big booth, category B, 1 day"},
		// Стартапы: без слова booth и без категории
		{SizeStartup, CategoryC, 1, "startup, 1 day"},
		{SizeStartup, CategoryC, 2, "startup, 2 days"},
	}

	for _, tt := range tests {
		choice, err := BoothChoiceFor(tt.size, tt.category, tt.days)
		if err != nil {
			t.Fatalf("BoothChoiceFor(%s, %s, %d): %v", tt.size, tt.category, tt.days, err)
		}
		if choice.Description != tt.want {
			t.Errorf("Description = %q, want %q", choice.Description, tt.want)
		}
	}
}

func TestAllBoothChoices(t *testing.T) {
	all := AllBoothChoices()
	if len(all) != 10 {
		t.Fatalf("AllBoothChoices() returned %d choices, want 10", len(all))
	}

	// Возвращаемый срез должен быть копией
	all[0].Name = "mutated"
	if AllBoothChoices()[0].Name == "mutated" {
		t.Error("AllBoothChoices() must return a copy")
	}
}

func TestPacketChoiceFor(t *testing.T) {
	for _, p := range AllPacketChoices() {
		got, ok := PacketChoiceFor(p.Name)
		if !ok {
			t.Errorf("PacketChoiceFor(%q): not found", p.Name)
		}
		if got != p {
			t.Errorf("PacketChoiceFor(%q) = %+v, want %+v", p.Name, got, p)
		}
	}

	if _, ok := PacketChoiceFor("gold"); ok {
		t.Error("PacketChoiceFor(\"gold\") should not be found")
	}
	if _, ok := PacketChoiceFor(""); ok {
		t.Error("PacketChoiceFor(\"\") should not be found")
	}
}

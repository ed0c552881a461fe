package classification

// PacketChoice один из закрытого набора спонсорских пакетов.
// Пакет media независим от first/business; first и business взаимно
// исключают друг друга по соглашению в CRM (тип это не контролирует).
type PacketChoice struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var (
	PacketFirst    = PacketChoice{Name: "first", Description: "first packet"}
	PacketBusiness = PacketChoice{Name: "business", Description: "business packet"}
	PacketMedia    = PacketChoice{Name: "media", Description: "media packet"}
)

// PacketChoiceFor возвращает пакет по имени. Второе значение false
// означает "пакет не запрошен" — нераспознанные имена ошибкой не считаются.
func PacketChoiceFor(name string) (PacketChoice, bool) {
	switch name {
	case PacketFirst.Name:
		return PacketFirst, true
	case PacketBusiness.Name:
		return PacketBusiness, true
	case PacketMedia.Name:
		return PacketMedia, true
	default:
		return PacketChoice{}, false
	}
}

// AllPacketChoices возвращает список всех пакетов
func AllPacketChoices() []PacketChoice {
	return []PacketChoice{PacketFirst, PacketBusiness, PacketMedia}
}

package tex

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents убирает диакритику: NFD-разложение, удаление
// комбинируемых знаков, обратная сборка
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename транслитерирует имя компании в безопасное имя файла:
// "Müller & Söhne AG" -> "Muller_Sohne_AG"
func SecureFilename(name string) string {
	clean, _, err := transform.String(stripAccents, name)
	if err != nil {
		clean = name
	}

	clean = unsafeChars.ReplaceAllString(clean, "_")
	return strings.Trim(clean, "._-")
}

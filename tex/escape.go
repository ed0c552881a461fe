package tex

import (
	"regexp"
	"strings"
)

// latexSubs упорядоченные подстановки для экранирования свободного
// текста в LaTeX. Порядок важен: обратный слеш заменяется первым,
// иначе экранирование экранировало бы само себя.
var latexSubs = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\\`), `\textbackslash`},
	{regexp.MustCompile(`([{}_#%&$])`), `\${1}`},
	{regexp.MustCompile(`~`), `\~{}`},
	{regexp.MustCompile(`\^`), `\^{}`},
	{regexp.MustCompile(`"`), `''`},
	{regexp.MustCompile(`\.\.\.+`), `\ldots`},
}

// Escape экранирует свободный текст (имена, адреса) для LaTeX
func Escape(value string) string {
	for _, sub := range latexSubs {
		value = sub.pattern.ReplaceAllString(value, sub.repl)
	}
	return value
}

// Newline превращает переводы строк в явные разрывы строк LaTeX.
// Используется для многострочных блоков вроде отправителя письма.
func Newline(value string) string {
	return strings.ReplaceAll(value, "\n", `\\`)
}

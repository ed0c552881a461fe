package tex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrCompilerUnavailable компилятор LaTeX не найден или не запускается
var ErrCompilerUnavailable = errors.New("latex compiler unavailable")

// logExcerptSize сколько байтов с конца лога компилятора попадает в ошибку
const logExcerptSize = 2048

// CompilationError компилятор запустился, но завершился с ошибкой.
// LogExcerpt хвост диагностического лога xelatex, если лог удалось
// прочитать, иначе захваченный вывод процесса.
type CompilationError struct {
	LogExcerpt string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("latex compilation failed: %v\n%s", e.Err, e.LogExcerpt)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// compile пишет исходник во временный каталог, дважды прогоняет
// компилятор и возвращает байты PDF. Каталог со всеми промежуточными
// артефактами удаляется на любом пути выхода.
func (r *Renderer) compile(ctx context.Context, basename string, source []byte) (_ []byte, err error) {
	dir, err := os.MkdirTemp("", "contractor-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	texPath := filepath.Join(dir, basename+".tex")
	if err := os.WriteFile(texPath, source, 0o644); err != nil {
		return nil, fmt.Errorf("write tex source: %w", err)
	}

	// sic! компилятор запускается ровно дважды: второй проход
	// подставляет перекрестные ссылки (нумерацию страниц экземпляров).
	// Один проход дает документ с неразрешенными ссылками.
	for pass := 1; pass <= 2; pass++ {
		cmd := exec.CommandContext(ctx, r.compiler,
			"-output-directory", dir,
			"-interaction=batchmode",
			texPath)

		output, err := cmd.CombinedOutput()
		if err != nil {
			// Абсолютный путь к отсутствующему бинарнику дает ENOENT,
			// поиск по PATH дает exec.ErrNotFound
			if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
				return nil, fmt.Errorf("%w: %s", ErrCompilerUnavailable, r.compiler)
			}
			return nil, &CompilationError{
				LogExcerpt: logExcerpt(filepath.Join(dir, basename+".log"), output),
				Err:        fmt.Errorf("pass %d: %w", pass, err),
			}
		}
	}

	pdf, err := os.ReadFile(filepath.Join(dir, basename+".pdf"))
	if err != nil {
		return nil, &CompilationError{
			LogExcerpt: logExcerpt(filepath.Join(dir, basename+".log"), nil),
			Err:        fmt.Errorf("read compiled pdf: %w", err),
		}
	}
	return pdf, nil
}

// logExcerpt хвост лога компилятора; при недоступном логе
// хвост захваченного вывода процесса
func logExcerpt(logPath string, processOutput []byte) string {
	data, err := os.ReadFile(logPath)
	if err != nil {
		data = processOutput
	}
	if len(data) > logExcerptSize {
		data = data[len(data)-logExcerptSize:]
	}
	return string(data)
}

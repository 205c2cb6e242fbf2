package email

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Amulyanrao7777/MorningGlow/internal/formatter"
	"github.com/Amulyanrao7777/MorningGlow/internal/news"
)

// PreviewWriter сохраняет отрендеренное письмо в HTML-файл вместо отправки.
type PreviewWriter struct {
	dir      string
	renderer *formatter.EmailRenderer
	owner    Owner
	logger   *slog.Logger
}

// NewPreviewWriter создаёт writer, складывающий файлы в dir.
func NewPreviewWriter(dir string, renderer *formatter.EmailRenderer, owner Owner, logger *slog.Logger) *PreviewWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewWriter{dir: dir, renderer: renderer, owner: owner, logger: logger}
}

// Write рендерит выпуск с приветствием владельца и пишет preview/<date>-<runID>.html.
func (p *PreviewWriter) Write(d news.Digest, runID string) (string, error) {
	greeting := formatter.Greeting(p.owner.Email, p.owner.Email, p.owner.Name)
	rendered, err := p.renderer.Render(d, greeting)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.html", d.Date.Format("2006-01-02"), runID)
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, []byte(rendered.HTML), 0o644); err != nil {
		return "", fmt.Errorf("write preview: %w", err)
	}
	p.logger.Info("preview saved", "path", path)
	return path, nil
}

// PreviewFile: сохранённый предпросмотр.
type PreviewFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// ListPreviews возвращает HTML-файлы каталога, новые первыми. Отсутствующий каталог: пустой список.
func ListPreviews(dir string) ([]PreviewFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preview dir: %w", err)
	}

	var files []PreviewFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, PreviewFile{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.After(files[j].ModTime)
		}
		return files[i].Name > files[j].Name
	})
	return files, nil
}

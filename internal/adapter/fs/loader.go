package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// Loader reads knowledge-base sources from disk. With an explicit file
// list it reads exactly those files in order; otherwise it walks the
// directory with the include/exclude patterns.
type Loader struct {
	files  []string
	walker *Walker
}

func NewLoader(files, includes, excludes []string) *Loader {
	return &Loader{
		files:  files,
		walker: NewWalker(includes, excludes),
	}
}

type source struct {
	name string
	path string
}

// Load reads every source under root. Sources that cannot be read are
// reported and skipped; they never abort the load.
func (l *Loader) Load(root string, progress port.ProgressFunc) ([]domain.Document, []domain.LoadError) {
	sources, err := l.sources(root)
	if err != nil {
		return nil, []domain.LoadError{{Name: root, Err: err}}
	}

	var (
		docs     []domain.Document
		failures []domain.LoadError
	)
	for i, src := range sources {
		content, err := ReadFile(src.path)
		if err != nil {
			failures = append(failures, domain.LoadError{Name: src.name, Err: err})
		} else {
			docs = append(docs, domain.Document{Name: src.name, Content: content})
		}
		if progress != nil {
			progress(i+1, len(sources), src.name)
		}
	}

	return docs, failures
}

func (l *Loader) sources(root string) ([]source, error) {
	if len(l.files) > 0 {
		sources := make([]source, len(l.files))
		for i, f := range l.files {
			path := f
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, f)
			}
			sources[i] = source{name: filepath.Base(f), path: path}
		}
		return sources, nil
	}

	files, err := l.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sources := make([]source, len(files))
	for i, f := range files {
		sources[i] = source{name: f.RelPath, path: f.Path}
	}
	return sources, nil
}

// ReadFile returns the text of a source. PDFs are reduced to plain text.
func ReadFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

package port

import "kbrag/internal/domain"

// ProgressFunc is called after each source is processed.
type ProgressFunc func(done, total int, name string)

type Loader interface {
	Load(root string, progress ProgressFunc) ([]domain.Document, []domain.LoadError)
}

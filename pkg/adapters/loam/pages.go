// Package loam loads instruction pages from a directory of markdown
// documents with YAML frontmatter.
package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/hdt/pkg/ports"
	"github.com/aretw0/loam"
)

// ErrNoPages is returned when the repository holds no pages.
var ErrNoPages = errors.New("no instruction pages found")

// PageLoader adapts a Loam repository to ports.PageLoader.
type PageLoader struct {
	Repo *loam.TypedRepository[PageMetadata]
}

// New creates a loader over an existing typed repository.
func New(repo *loam.TypedRepository[PageMetadata]) *PageLoader {
	return &PageLoader{Repo: repo}
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string) (*PageLoader, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PageMetadata](repo)), nil
}

// Pages returns every page sorted by order, then ID.
func (l *PageLoader) Pages(ctx context.Context) ([]ports.Page, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNoPages
	}

	type entry struct {
		order int
		page  ports.Page
	}
	seen := make(map[string]string, len(docs))
	entries := make([]entry, 0, len(docs))

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: page '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		entries = append(entries, entry{
			order: doc.Data.Order,
			page: ports.Page{
				ID:      id,
				Title:   doc.Data.Title,
				Content: strings.TrimSpace(doc.Content),
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return entries[i].page.ID < entries[j].page.ID
	})

	pages := make([]ports.Page, len(entries))
	for i, e := range entries {
		pages[i] = e.page
	}
	return pages, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

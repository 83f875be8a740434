package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/markdown"
)

var ErrPageNotFound = errors.New("page not found")

// LegalService serves rendered legal pages (terms, privacy, imprint)
// from markdown files under CONTENT_PATH/legal.
type LegalService struct {
	dir string
}

func NewLegalService(cfg *config.Config) *LegalService {
	return &LegalService{dir: filepath.Join(cfg.ContentPath, "legal")}
}

// Page renders a single legal page by slug. Slugs are restricted to
// simple names so a crafted slug cannot escape the content directory.
func (s *LegalService) Page(slug string) (*markdown.Document, error) {
	if slug == "" || strings.ContainsAny(slug, "/\\.") {
		return nil, ErrPageNotFound
	}

	path := filepath.Join(s.dir, slug+".md")
	doc, err := markdown.ParseFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("rendering legal page %q: %w", slug, err)
	}
	return doc, nil
}

// Pages lists all available legal documents.
func (s *LegalService) Pages() ([]*markdown.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var docs []*markdown.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		doc, err := markdown.ParseFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const maxCatalogSize = 8 * 1024 * 1024

// ParseBookCatalog reads a YAML catalogue of the form:
//
//	books:
//	  - book_title: Dune
//	    author: Frank Herbert
//	    book_id: dune-1965
//	    year: 1965
//
// book_title and book_id are required and book_id must be unique within the file.
func ParseBookCatalog(data []byte) ([]BookInput, error) {
	if len(data) == 0 {
		return nil, errors.New("catalogue is empty")
	}
	if len(data) > maxCatalogSize {
		return nil, fmt.Errorf("catalogue is too large (limit %d bytes)", maxCatalogSize)
	}

	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalogue is not valid yaml: %w", err)
	}
	if len(doc.Books) == 0 {
		return nil, errors.New("catalogue has no books")
	}

	seen := make(map[string]int, len(doc.Books))
	out := make([]BookInput, 0, len(doc.Books))
	for i, b := range doc.Books {
		b.BookTitle = strings.TrimSpace(b.BookTitle)
		b.BookID = strings.TrimSpace(b.BookID)
		b.Author = strings.TrimSpace(b.Author)
		if b.BookTitle == "" {
			return nil, fmt.Errorf("books[%d]: book_title is required", i)
		}
		if b.BookID == "" {
			return nil, fmt.Errorf("books[%d]: book_id is required", i)
		}
		if prev, dup := seen[b.BookID]; dup {
			return nil, fmt.Errorf("books[%d]: book_id %q already used by books[%d]", i, b.BookID, prev)
		}
		if b.Year < 0 {
			return nil, fmt.Errorf("books[%d]: year must not be negative", i)
		}
		seen[b.BookID] = i
		out = append(out, b)
	}
	return out, nil
}

type catalogDoc struct {
	Books []BookInput `yaml:"books"`
}

// ImportResult counts what ImportBooks did.
type ImportResult struct {
	Created int
	Skipped int
}

// ImportBooks inserts every book whose book_id is not stored yet.
func ImportBooks(ctx context.Context, books BookRepository, items []BookInput, logger *slog.Logger) (ImportResult, error) {
	var res ImportResult
	for _, in := range items {
		exists, err := books.ExistsByBookID(ctx, in.BookID)
		if err != nil {
			return res, err
		}
		if exists {
			res.Skipped++
			logger.Debug("book already present", "book_id", in.BookID)
			continue
		}
		created, err := books.Create(ctx, in)
		if err != nil {
			return res, oops.Code("BOOK_IMPORT_FAILED").With("book_id", in.BookID).With("created", res.Created).Wrap(err)
		}
		res.Created++
		logger.Info("book imported", "id", created.ID, "book_id", created.BookID)
	}
	return res, nil
}

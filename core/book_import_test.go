package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
books:
  - book_title: " Dune "
    author: Frank Herbert
    book_id: dune-1965
    year: 1965
    categories: Science Fiction
  - book_title: Emma
    author: Jane Austen
    book_id: emma-1815
    year: 1815
`

func TestParseBookCatalog(t *testing.T) {
	books, err := ParseBookCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].BookTitle)
	assert.Equal(t, "dune-1965", books[0].BookID)
	assert.Equal(t, 1965, books[0].Year)
	assert.Equal(t, "Science Fiction", books[0].Categories)
	assert.Equal(t, "Jane Austen", books[1].Author)
}

func TestParseBookCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":         ``,
		"not yaml":      "books: [",
		"no books":      "books: []",
		"missing title": "books:\n  - book_id: x\n",
		"missing id":    "books:\n  - book_title: X\n",
		"duplicate id":  "books:\n  - {book_title: A, book_id: x}\n  - {book_title: B, book_id: x}\n",
		"negative year": "books:\n  - {book_title: A, book_id: x, year: -1}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBookCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestImportBooks_SkipsExisting(t *testing.T) {
	repo := newMemBookRepository(nil)
	_, err := repo.Create(context.Background(), BookInput{BookTitle: "Emma", BookID: "emma-1815"})
	require.NoError(t, err)

	books, err := ParseBookCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	res, err := ImportBooks(context.Background(), repo, books, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Skipped: 1}, res)

	res, err = ImportBooks(context.Background(), repo, books, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 0, Skipped: 2}, res, "re-running imports nothing")
}

func TestImportBooks_StoreError(t *testing.T) {
	repo := newMemBookRepository(nil)
	repo.err = errors.New("db error")

	_, err := ImportBooks(context.Background(), repo, []BookInput{{BookTitle: "A", BookID: "a"}}, discardLogger())
	assert.Error(t, err)
}

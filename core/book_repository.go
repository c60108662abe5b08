package core

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// Book is a row of the bookslist table.
type Book struct {
	ID              int64  `json:"id"`
	BookTitle       string `json:"book_title"`
	Author          string `json:"author"`
	BookID          string `json:"book_id"`
	Year            int    `json:"year"`
	BookSnippet     string `json:"book_snippet"`
	ImgLink         string `json:"img_link"`
	Categories      string `json:"categories"`
	BookDescription string `json:"book_description"`
}

// BookInput is the body of POST /allBooks and one entry of an import catalogue.
type BookInput struct {
	BookTitle       string `json:"book_title" yaml:"book_title"`
	Author          string `json:"author" yaml:"author"`
	BookID          string `json:"book_id" yaml:"book_id"`
	Year            int    `json:"year" yaml:"year"`
	BookSnippet     string `json:"book_snippet" yaml:"book_snippet"`
	ImgLink         string `json:"img_link" yaml:"img_link"`
	Categories      string `json:"categories" yaml:"categories"`
	BookDescription string `json:"book_description" yaml:"book_description"`
}

type BookRepository interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, in BookInput) (*Book, error)
	AverageRating(ctx context.Context, id int64) (*float64, error)
	ExistsByBookID(ctx context.Context, bookID string) (bool, error)
}

type PgBookRepository struct {
	db DBTX
}

func NewPgBookRepository(db DBTX) *PgBookRepository {
	return &PgBookRepository{db: db}
}

const bookColumns = `id, book_title, author, book_id, year, book_snippet, img_link, categories, book_description`

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	if err := row.Scan(&b.ID, &b.BookTitle, &b.Author, &b.BookID, &b.Year, &b.BookSnippet, &b.ImgLink, &b.Categories, &b.BookDescription); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PgBookRepository) List(ctx context.Context) ([]Book, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM bookslist ORDER BY id`)
	if err != nil {
		return nil, oops.Code("BOOK_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	items := make([]Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, oops.Code("BOOK_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BOOK_LIST_FAILED").Wrap(err)
	}
	return items, nil
}

func (r *PgBookRepository) Get(ctx context.Context, id int64) (*Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM bookslist WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("BOOK_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("BOOK_GET_FAILED").With("id", id).Wrap(err)
	}
	return b, nil
}

func (r *PgBookRepository) Create(ctx context.Context, in BookInput) (*Book, error) {
	const q = `INSERT INTO bookslist (book_title, author, book_id, year, book_snippet, img_link, categories, book_description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + bookColumns
	b, err := scanBook(r.db.QueryRow(ctx, q,
		strings.TrimSpace(in.BookTitle),
		strings.TrimSpace(in.Author),
		strings.TrimSpace(in.BookID),
		in.Year,
		in.BookSnippet,
		in.ImgLink,
		in.Categories,
		in.BookDescription,
	))
	if err != nil {
		return nil, oops.Code("BOOK_CREATE_FAILED").With("book_title", in.BookTitle).Wrap(err)
	}
	return b, nil
}

// AverageRating returns nil when the book has no reviews.
func (r *PgBookRepository) AverageRating(ctx context.Context, id int64) (*float64, error) {
	var avg *float64
	if err := r.db.QueryRow(ctx, `SELECT AVG(rating)::float8 FROM reviews WHERE bookslist_id = $1`, id).Scan(&avg); err != nil {
		return nil, oops.Code("BOOK_RATING_FAILED").With("id", id).Wrap(err)
	}
	return avg, nil
}

func (r *PgBookRepository) ExistsByBookID(ctx context.Context, bookID string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookslist WHERE book_id = $1)`, bookID).Scan(&found); err != nil {
		return false, oops.Code("BOOK_LOOKUP_FAILED").With("book_id", bookID).Wrap(err)
	}
	return found, nil
}

package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

type Review struct {
	ID           int64     `json:"id"`
	BooksListID  int64     `json:"bookslist_id"`
	UserUsername string    `json:"user_username"`
	Review       string    `json:"review"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewWithBook is a review joined with the fields of the book it belongs to.
type ReviewWithBook struct {
	ID          int64     `json:"id"`
	Review      string    `json:"review"`
	Rating      int       `json:"rating"`
	BooksListID int64     `json:"bookslist_id"`
	CreatedAt   time.Time `json:"created_at"`
	BookTitle   string    `json:"book_title"`
	Author      string    `json:"author"`
	Year        int       `json:"year"`
	ImgLink     string    `json:"img_link"`
}

// ReviewInput is the body of POST /addBookReview/:id and PUT /alterreview/:id.
type ReviewInput struct {
	UserUsername string `json:"user_username"`
	Review       string `json:"review"`
	Rating       int    `json:"rating"`
}

type ReviewRepository interface {
	ListByBook(ctx context.Context, bookID int64) ([]Review, error)
	ListByUsername(ctx context.Context, username string) ([]ReviewWithBook, error)
	GetWithBook(ctx context.Context, id int64) (*ReviewWithBook, error)
	Create(ctx context.Context, bookID int64, in ReviewInput) (*Review, error)
	Update(ctx context.Context, id int64, review string, rating int) (*Review, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type PgReviewRepository struct {
	db DBTX
}

func NewPgReviewRepository(db DBTX) *PgReviewRepository {
	return &PgReviewRepository{db: db}
}

const reviewColumns = `id, bookslist_id, user_username, review, rating, created_at`

const reviewWithBookSelect = `
SELECT reviews.id, review, rating, bookslist_id, created_at, book_title, author, year, img_link
FROM reviews
INNER JOIN bookslist ON reviews.bookslist_id = bookslist.id`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	if err := row.Scan(&rv.ID, &rv.BooksListID, &rv.UserUsername, &rv.Review, &rv.Rating, &rv.CreatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func scanReviewWithBook(row pgx.Row) (*ReviewWithBook, error) {
	var rv ReviewWithBook
	if err := row.Scan(&rv.ID, &rv.Review, &rv.Rating, &rv.BooksListID, &rv.CreatedAt, &rv.BookTitle, &rv.Author, &rv.Year, &rv.ImgLink); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *PgReviewRepository) ListByBook(ctx context.Context, bookID int64) ([]Review, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE bookslist_id = $1 ORDER BY created_at DESC, id DESC`, bookID)
	if err != nil {
		return nil, oops.Code("REVIEW_LIST_FAILED").With("book_id", bookID).Wrap(err)
	}
	defer rows.Close()

	items := make([]Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, oops.Code("REVIEW_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		items = append(items, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("REVIEW_LIST_FAILED").Wrap(err)
	}
	return items, nil
}

func (r *PgReviewRepository) ListByUsername(ctx context.Context, username string) ([]ReviewWithBook, error) {
	rows, err := r.db.Query(ctx, reviewWithBookSelect+`
WHERE user_username = $1
ORDER BY created_at DESC, reviews.id DESC`, username)
	if err != nil {
		return nil, oops.Code("REVIEW_LIST_FAILED").With("username", username).Wrap(err)
	}
	defer rows.Close()

	items := make([]ReviewWithBook, 0)
	for rows.Next() {
		rv, err := scanReviewWithBook(rows)
		if err != nil {
			return nil, oops.Code("REVIEW_LIST_FAILED").With("operation", "scan").Wrap(err)
		}
		items = append(items, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("REVIEW_LIST_FAILED").Wrap(err)
	}
	return items, nil
}

func (r *PgReviewRepository) GetWithBook(ctx context.Context, id int64) (*ReviewWithBook, error) {
	rv, err := scanReviewWithBook(r.db.QueryRow(ctx, reviewWithBookSelect+`
WHERE reviews.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REVIEW_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REVIEW_GET_FAILED").With("id", id).Wrap(err)
	}
	return rv, nil
}

func (r *PgReviewRepository) Create(ctx context.Context, bookID int64, in ReviewInput) (*Review, error) {
	const q = `INSERT INTO reviews (bookslist_id, user_username, review, rating) VALUES ($1, $2, $3, $4) RETURNING ` + reviewColumns
	rv, err := scanReview(r.db.QueryRow(ctx, q, bookID, strings.TrimSpace(in.UserUsername), strings.TrimSpace(in.Review), in.Rating))
	if err != nil {
		return nil, oops.Code("REVIEW_CREATE_FAILED").With("book_id", bookID).Wrap(err)
	}
	return rv, nil
}

func (r *PgReviewRepository) Update(ctx context.Context, id int64, review string, rating int) (*Review, error) {
	const q = `UPDATE reviews SET review = $1, rating = $2 WHERE id = $3 RETURNING ` + reviewColumns
	rv, err := scanReview(r.db.QueryRow(ctx, q, strings.TrimSpace(review), rating, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("REVIEW_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("REVIEW_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	return rv, nil
}

// Delete removes a review and returns the id of the book it belonged to.
func (r *PgReviewRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var bookID int64
	err := r.db.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING bookslist_id`, id).Scan(&bookID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("REVIEW_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("REVIEW_DELETE_FAILED").With("id", id).Wrap(err)
	}
	return bookID, nil
}

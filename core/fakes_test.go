package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memUserRepository is an in-memory UserRepository enforcing the same
// uniqueness rules as the users table.
type memUserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Account
	err    error
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{byID: map[int64]*Account{}}
}

func (m *memUserRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").Wrap(ErrNotFound)
}

func (m *memUserRepository) FindByID(_ context.Context, id int64) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.byID[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (m *memUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memUserRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, a := range m.byID {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepository) Create(_ context.Context, email, username, hash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	for _, a := range m.byID {
		if a.Email == email {
			return 0, ErrDuplicateEmail
		}
		if a.Username == username {
			return 0, ErrDuplicateUsername
		}
	}
	m.nextID++
	m.byID[m.nextID] = &Account{ID: m.nextID, Email: email, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	return m.nextID, nil
}

func (m *memUserRepository) delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// seed stores an account with a low-cost bcrypt hash of password.
func (m *memUserRepository) seed(email, username, password string) *Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	id, err := m.Create(context.Background(), email, username, string(hash))
	if err != nil {
		panic(err)
	}
	a, _ := m.FindByID(context.Background(), id)
	return a
}

type memBookRepository struct {
	mu      sync.Mutex
	books   map[int64]Book
	nextID  int64
	reviews *memReviewRepository
	calls   int
	err     error
}

func newMemBookRepository(reviews *memReviewRepository) *memBookRepository {
	return &memBookRepository{books: map[int64]Book{}, reviews: reviews}
}

func (m *memBookRepository) List(context.Context) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookRepository) Get(_ context.Context, id int64) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.books[id]
	if !ok {
		return nil, oops.Code("BOOK_NOT_FOUND").Wrap(ErrNotFound)
	}
	return &b, nil
}

func (m *memBookRepository) Create(_ context.Context, in BookInput) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	b := Book{
		ID:              m.nextID,
		BookTitle:       in.BookTitle,
		Author:          in.Author,
		BookID:          in.BookID,
		Year:            in.Year,
		BookSnippet:     in.BookSnippet,
		ImgLink:         in.ImgLink,
		Categories:      in.Categories,
		BookDescription: in.BookDescription,
	}
	m.books[b.ID] = b
	return &b, nil
}

func (m *memBookRepository) AverageRating(_ context.Context, id int64) (*float64, error) {
	if m.reviews == nil {
		return nil, nil
	}
	rs, _ := m.reviews.ListByBook(context.Background(), id)
	if len(rs) == 0 {
		return nil, nil
	}
	var sum int
	for _, r := range rs {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(rs))
	return &avg, nil
}

func (m *memBookRepository) ExistsByBookID(_ context.Context, bookID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, b := range m.books {
		if b.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

type memReviewRepository struct {
	mu      sync.Mutex
	reviews map[int64]Review
	nextID  int64
	books   *memBookRepository
}

func newMemReviewRepository() *memReviewRepository {
	return &memReviewRepository{reviews: map[int64]Review{}}
}

func (m *memReviewRepository) ListByBook(_ context.Context, bookID int64) ([]Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Review, 0)
	for _, r := range m.reviews {
		if r.BooksListID == bookID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memReviewRepository) withBook(r Review) ReviewWithBook {
	out := ReviewWithBook{ID: r.ID, Review: r.Review, Rating: r.Rating, BooksListID: r.BooksListID, CreatedAt: r.CreatedAt}
	if m.books != nil {
		if b, ok := m.books.books[r.BooksListID]; ok {
			out.BookTitle, out.Author, out.Year, out.ImgLink = b.BookTitle, b.Author, b.Year, b.ImgLink
		}
	}
	return out
}

func (m *memReviewRepository) ListByUsername(_ context.Context, username string) ([]ReviewWithBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ReviewWithBook, 0)
	for _, r := range m.reviews {
		if r.UserUsername == username {
			out = append(out, m.withBook(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memReviewRepository) GetWithBook(_ context.Context, id int64) (*ReviewWithBook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, oops.Code("REVIEW_NOT_FOUND").Wrap(ErrNotFound)
	}
	out := m.withBook(r)
	return &out, nil
}

func (m *memReviewRepository) Create(_ context.Context, bookID int64, in ReviewInput) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r := Review{ID: m.nextID, BooksListID: bookID, UserUsername: in.UserUsername, Review: in.Review, Rating: in.Rating, CreatedAt: time.Now()}
	m.reviews[r.ID] = r
	return &r, nil
}

func (m *memReviewRepository) Update(_ context.Context, id int64, review string, rating int) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, oops.Code("REVIEW_NOT_FOUND").Wrap(ErrNotFound)
	}
	r.Review, r.Rating = review, rating
	m.reviews[id] = r
	return &r, nil
}

func (m *memReviewRepository) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return 0, oops.Code("REVIEW_NOT_FOUND").Wrap(ErrNotFound)
	}
	delete(m.reviews, id)
	return r.BooksListID, nil
}

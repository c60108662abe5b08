package core

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	fieldID         = "id"
	fieldBookTitle  = "book_title"
	fieldRating     = "rating"
	fieldReview     = "review"
	minReviewRating = 1
	maxReviewRating = 5
)

type catalogHandlers struct {
	books   BookRepository
	reviews ReviewRepository
	cache   BookCache
	logger  *slog.Logger
}

// bookDetail is the data object of GET /allBooks/:id and the cached value for it.
type bookDetail struct {
	Book          Book          `json:"bookslist"`
	Reviews       []Review      `json:"review"`
	AverageRating averageRating `json:"averageRating"`
}

type averageRating struct {
	Avg *float64 `json:"avg"`
}

func registerCatalogRoutes(r gin.IRouter, h *catalogHandlers) {
	r.GET("/allBooks", h.listBooks)
	r.POST("/allBooks", h.createBook)
	r.GET("/allBooks/:id", h.getBook)

	r.GET("/review/:username", h.reviewsByUser)
	r.GET("/revieweditdata/:id", h.reviewForEdit)
	r.POST("/addBookReview/:id", h.addReview)
	r.PUT("/alterreview/:id", h.alterReview)
	r.DELETE("/deletereview/:id", h.deleteReview)
}

func (h *catalogHandlers) listBooks(c *gin.Context) {
	ctx := c.Request.Context()
	var books []Book
	if !h.cacheGet(ctx, bookListCacheKey, &books) {
		var err error
		books, err = h.books.List(ctx)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		h.cacheSet(ctx, bookListCacheKey, books)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(books),
		"data":    gin.H{"bookslist": books},
	})
}

func (h *catalogHandlers) getBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	key := bookDetailCacheKey(id)

	var detail bookDetail
	if !h.cacheGet(ctx, key, &detail) {
		book, err := h.books.Get(ctx, id)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		reviews, err := h.reviews.ListByBook(ctx, id)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		avg, err := h.books.AverageRating(ctx, id)
		if err != nil {
			respondServiceError(c, h.logger, err)
			return
		}
		detail = bookDetail{Book: *book, Reviews: reviews, AverageRating: averageRating{Avg: avg}}
		h.cacheSet(ctx, key, detail)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": detail})
}

func (h *catalogHandlers) createBook(c *gin.Context) {
	var req BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errCodeValidation, "invalid json")
		return
	}
	if strings.TrimSpace(req.BookTitle) == "" {
		respondValidation(c, []FieldError{{Field: fieldBookTitle, Message: "Book title is required"}})
		return
	}

	ctx := c.Request.Context()
	book, err := h.books.Create(ctx, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	h.invalidate(ctx, bookListCacheKey)
	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"results": 1,
		"data":    gin.H{"bookslist": book},
	})
}

func (h *catalogHandlers) reviewsByUser(c *gin.Context) {
	reviews, err := h.reviews.ListByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(reviews),
		"data":    gin.H{"review": reviews},
	})
}

func (h *catalogHandlers) reviewForEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	review, err := h.reviews.GetWithBook(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"review": review}})
}

func (h *catalogHandlers) addReview(c *gin.Context) {
	bookID, ok := pathID(c)
	if !ok {
		return
	}
	var req ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errCodeValidation, "invalid json")
		return
	}
	if errs := validateReview(req.Review, req.Rating); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.books.Get(ctx, bookID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	review, err := h.reviews.Create(ctx, bookID, req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	h.invalidate(ctx, bookListCacheKey, bookDetailCacheKey(bookID))
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{"review": review}})
}

func (h *catalogHandlers) alterReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, errCodeValidation, "invalid json")
		return
	}
	if errs := validateReview(req.Review, req.Rating); len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	ctx := c.Request.Context()
	review, err := h.reviews.Update(ctx, id, req.Review, req.Rating)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	h.invalidate(ctx, bookListCacheKey, bookDetailCacheKey(review.BooksListID))
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"review": review}})
}

func (h *catalogHandlers) deleteReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	bookID, err := h.reviews.Delete(ctx, id)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	h.invalidate(ctx, bookListCacheKey, bookDetailCacheKey(bookID))
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func validateReview(review string, rating int) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(review) == "" {
		errs = append(errs, FieldError{Field: fieldReview, Message: "Review text is required"})
	}
	if rating < minReviewRating || rating > maxReviewRating {
		errs = append(errs, FieldError{Field: fieldRating, Message: "Rating must be between 1 and 5"})
	}
	return errs
}

// pathID parses :id and writes a 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondValidation(c, []FieldError{{Field: fieldID, Message: "id must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// Cache failures degrade to a miss; they never fail the request.

func (h *catalogHandlers) cacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := h.cache.Get(ctx, key, dest)
	if err != nil {
		h.logger.Warn("cache read failed", "key", key, "error", err.Error())
		return false
	}
	return hit
}

func (h *catalogHandlers) cacheSet(ctx context.Context, key string, value any) {
	if err := h.cache.Set(ctx, key, value); err != nil {
		h.logger.Warn("cache write failed", "key", key, "error", err.Error())
	}
}

func (h *catalogHandlers) invalidate(ctx context.Context, keys ...string) {
	if err := h.cache.Delete(ctx, keys...); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn("cache invalidation failed", "keys", keys, "error", err.Error())
	}
}

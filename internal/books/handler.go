package books

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayang/library-lending/internal/models"
)

// Ledger failures. The store reports these when a conditional update
// matched no row, i.e. no book with that name is in the required state.
var (
	ErrNoneAvailable = errors.New("no available book with that name")
	ErrNotLent       = errors.New("no lent book with that name")
)

// BookStore defines the interface for ledger persistence.
type BookStore interface {
	ListAll(ctx context.Context) ([]models.Book, error)
	ListOverdue(ctx context.Context, thresholdDays int) ([]models.Book, error)
	MarkBorrowed(ctx context.Context, name string, day time.Time) error
	MarkReturned(ctx context.Context, name string, day time.Time) error
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds the ledger HTTP handlers.
type Handler struct {
	store BookStore
	now   func() time.Time
}

func NewHandler(store BookStore) *Handler {
	return &Handler{store: store, now: time.Now}
}

// GetLendoutTimes returns every book with its raw stored fields.
func (h *Handler) GetLendoutTimes(w http.ResponseWriter, r *http.Request) {
	booksList, err := h.store.ListAll(r.Context())
	if err != nil {
		log.Printf("list books: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, booksList)
}

// Borrow marks one available book with the requested name as lent out.
func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	var req models.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.store.MarkBorrowed(r.Context(), req.Name, h.now()); err != nil {
		if errors.Is(err, ErrNoneAvailable) {
			http.Error(w, `{"error":"Invalid book to borrow!"}`, http.StatusBadRequest)
			return
		}
		log.Printf("borrow %q: %v", req.Name, err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Book borrowed successfully!"})
}

// Return marks one lent book with the requested name as returned.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	var req models.BorrowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error":"name is required"}`, http.StatusBadRequest)
		return
	}

	if err := h.store.MarkReturned(r.Context(), req.Name, h.now()); err != nil {
		if errors.Is(err, ErrNotLent) {
			http.Error(w, `{"error":"Invalid book to return!"}`, http.StatusBadRequest)
			return
		}
		log.Printf("return %q: %v", req.Name, err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Book returned successfully!"})
}

// GetOverdue returns the books out longer than the legal borrow duration,
// or a human-readable message when there are none.
func (h *Handler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	overdue, err := h.store.ListOverdue(r.Context(), models.LegalBorrowDuration)
	if err != nil {
		log.Printf("list overdue: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	if len(overdue) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "There are no overdue books as of now!"})
		return
	}
	writeJSON(w, http.StatusOK, overdue)
}

// ListBooks returns every book with the derived is_overdue flag.
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	booksList, err := h.store.ListAll(r.Context())
	if err != nil {
		log.Printf("list books: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	today := h.now()
	result := make([]models.BookWithOverdue, 0, len(booksList))
	for _, b := range booksList {
		result = append(result, models.BookWithOverdue{
			Book:      b,
			IsOverdue: b.OverdueAt(today, models.LegalBorrowDuration),
		})
	}
	writeJSON(w, http.StatusOK, result)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// LegalBorrowDuration is the number of days a book may be kept out
// before it counts as overdue.
const LegalBorrowDuration = 7

// Book represents a row in the books table. Exactly one of LendoutTime /
// ReturnTime is set at any time, mirroring IsLent; the other is cleared
// on each borrow/return transition.
type Book struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	IsLent      bool       `json:"is_lent"`
	LendoutTime *time.Time `json:"lendout_time"`
	ReturnTime  *time.Time `json:"return_time"`
}

// OverdueAt reports whether the book is overdue as of today: lent out and
// strictly more than thresholdDays whole calendar days since LendoutTime.
// A book lent exactly thresholdDays ago is not overdue.
func (b Book) OverdueAt(today time.Time, thresholdDays int) bool {
	if !b.IsLent || b.LendoutTime == nil {
		return false
	}
	return daysBetween(*b.LendoutTime, today) > thresholdDays
}

// daysBetween counts whole calendar days from one date to another,
// ignoring the time-of-day components.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// BookWithOverdue is a Book plus the derived overdue flag for GET /books.
type BookWithOverdue struct {
	Book
	IsOverdue bool `json:"is_overdue"`
}

// BorrowRequest is the JSON body for POST /borrow and POST /return.
type BorrowRequest struct {
	Name string `json:"name"`
}

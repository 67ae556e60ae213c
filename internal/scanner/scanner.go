// Package scanner implements the daily overdue sweep: query the ledger
// for books out past the legal borrow duration and email the manager one
// aggregate alert. Every failure here is logged and swallowed; the sweep
// has no caller to propagate to and simply waits for its next firing.
package scanner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ayang/library-lending/internal/models"
)

// OverdueLister is the slice of the ledger the scanner reads.
type OverdueLister interface {
	ListOverdue(ctx context.Context, thresholdDays int) ([]models.Book, error)
}

// Notifier delivers one alert message.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AlertLog records which days an alert has already gone out. MarkSent
// returns true if this is the first alert recorded for that day.
type AlertLog interface {
	MarkSent(ctx context.Context, day time.Time) (bool, error)
}

// Scanner runs the overdue sweep.
type Scanner struct {
	ledger    OverdueLister
	notifier  Notifier
	alerts    AlertLog // nil disables same-day dedupe
	recipient string
	now       func() time.Time
}

func New(ledger OverdueLister, notifier Notifier, alerts AlertLog, recipient string) *Scanner {
	return &Scanner{
		ledger:    ledger,
		notifier:  notifier,
		alerts:    alerts,
		recipient: recipient,
		now:       time.Now,
	}
}

// Scan performs one sweep. If any books are overdue it sends a single
// aggregate notification; if none are, it does nothing.
func (s *Scanner) Scan(ctx context.Context) {
	overdue, err := s.ledger.ListOverdue(ctx, models.LegalBorrowDuration)
	if err != nil {
		log.Printf("overdue scan: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	if s.alerts != nil {
		first, err := s.alerts.MarkSent(ctx, s.now())
		if err != nil {
			// dedupe is best-effort: a duplicate beats a missed alert
			log.Printf("overdue scan: alert log: %v", err)
		} else if !first {
			log.Printf("overdue scan: alert for today already sent, skipping")
			return
		}
	}

	n := len(overdue)
	subject := fmt.Sprintf("%d book(s) are overdue!", n)
	body := fmt.Sprintf("Dear Manager, \nThere are %d book(s) overdue, please check the library management system!", n)

	if err := s.notifier.Send(ctx, s.recipient, subject, body); err != nil {
		log.Printf("overdue scan: send alert: %v", err)
		return
	}
	log.Printf("overdue scan: alerted %s about %d book(s)", s.recipient, n)
}

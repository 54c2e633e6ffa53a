package service

import (
	"context"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type EventType string

const (
	LoanCreated    EventType = "loan.created"
	LoanUpdated    EventType = "loan.updated"
	LoanDeleted    EventType = "loan.deleted"
	FineCreated    EventType = "fine.created"
	FineDeleted    EventType = "fine.deleted"
	PaymentCreated EventType = "payment.created"
	PaymentDeleted EventType = "payment.deleted"
)

// Event is published to the lending topic once the change it describes
// has been committed.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	LoanID     int64     `json:"loanId,omitempty"`
	BookID     int64     `json:"bookId,omitempty"`
	MemberID   int64     `json:"memberId,omitempty"`
	FineID     int64     `json:"fineId,omitempty"`
	PaymentID  int64     `json:"paymentId,omitempty"`
	Returned   bool      `json:"returned,omitempty"`
}

func (s *Service) newEvent(typ EventType) Event {
	now := s.clock.Now()
	return Event{
		ID:         ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Type:       typ,
		OccurredAt: now,
	}
}

func (e Event) key() string {
	switch {
	case e.LoanID != 0:
		return "loan-" + strconv.FormatInt(e.LoanID, 10)
	case e.FineID != 0:
		return "fine-" + strconv.FormatInt(e.FineID, 10)
	}
	return "payment-" + strconv.FormatInt(e.PaymentID, 10)
}

// publish never fails the caller: the change is already committed.
func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.pub.Publish(ctx, e.key(), e); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(e.Type)),
			zap.String("id", e.ID),
			zap.Error(err))
	}
}

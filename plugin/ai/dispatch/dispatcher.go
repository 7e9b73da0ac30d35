package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	errs "github.com/inaratravel/concierge/internal/errors"
	"github.com/inaratravel/concierge/internal/observability"
	"github.com/inaratravel/concierge/store"
)

// Notifier pushes one message to an external channel.
type Notifier interface {
	Send(ctx context.Context, to, message string) error
}

// Ticket is one confirmed escalation ready for handoff.
type Ticket struct {
	UserID  string
	Contact string
	Message string
	Reason  string
}

// Dispatcher persists escalation tickets and notifies the on-call operator.
// The record is written before the notification is attempted, so a dead
// gateway never loses the escalation.
type Dispatcher struct {
	store          *store.Store
	notifier       Notifier
	operatorNumber string
}

// NewDispatcher wires the dispatcher. A nil notifier disables notifications;
// records are still written.
func NewDispatcher(st *store.Store, notifier Notifier, operatorNumber string) *Dispatcher {
	return &Dispatcher{
		store:          st,
		notifier:       notifier,
		operatorNumber: operatorNumber,
	}
}

// Dispatch writes the audit record, then notifies the operator. A failed
// notification marks the record FAILED and is reported through the returned
// notify error; the record error alone decides whether the handoff stands.
func (d *Dispatcher) Dispatch(ctx context.Context, t Ticket) (*store.EscalationRecord, error) {
	logger := observability.TurnLogger(ctx)
	now := time.Now()
	record := &store.EscalationRecord{
		ID:           shortuuid.New(),
		UserID:       t.UserID,
		Contact:      t.Contact,
		Message:      t.Message,
		Reason:       t.Reason,
		NotifyStatus: store.NotifyPending,
		CreatedTs:    now.Unix(),
	}
	record, err := d.store.CreateEscalation(ctx, record)
	if err != nil {
		return nil, errs.DispatchFailed(errors.Wrap(err, "failed to persist escalation"))
	}

	if d.notifier == nil || d.operatorNumber == "" {
		logger.Warn("operator notification disabled, escalation recorded only", "escalation", record.ID)
		return record, nil
	}

	if err := d.notifier.Send(ctx, d.operatorNumber, operatorMessage(record, now)); err != nil {
		logger.Error("operator notification failed", "escalation", record.ID, "error", err)
		if markErr := d.store.UpdateEscalationNotifyStatus(ctx, record.ID, store.NotifyFailed); markErr != nil {
			logger.Error("failed to mark escalation notify status", "escalation", record.ID, "error", markErr)
		}
		record.NotifyStatus = store.NotifyFailed
		return record, errs.DispatchFailed(errors.Wrap(err, "operator notification failed"))
	}

	if err := d.store.UpdateEscalationNotifyStatus(ctx, record.ID, store.NotifySent); err != nil {
		logger.Error("failed to mark escalation notify status", "escalation", record.ID, "error", err)
	}
	record.NotifyStatus = store.NotifySent
	return record, nil
}

func operatorMessage(record *store.EscalationRecord, at time.Time) string {
	return fmt.Sprintf(`🚨 *ESKALASI CHATBOT* 🚨

*ID:* %s
*User:* %s
*Kontak:* %s
*Alasan:* %s
*Pesan terakhir:* "%s"
*Waktu:* %s

Mohon segera follow up.`,
		record.ID,
		record.UserID,
		record.Contact,
		record.Reason,
		record.Message,
		at.Format("02 Jan 2006 15:04 WIB"),
	)
}

package postgres

import (
	"context"

	"github.com/inaratravel/concierge/store"
)

func (d *DB) CreateEscalation(ctx context.Context, create *store.EscalationRecord) (*store.EscalationRecord, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO escalation (id, user_id, contact, message, reason, notify_status, created_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, create.ID, create.UserID, create.Contact, create.Message, create.Reason, create.NotifyStatus, create.CreatedTs)
	if err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) UpdateEscalationNotifyStatus(ctx context.Context, id string, status store.NotifyStatus) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE escalation SET notify_status = $1 WHERE id = $2
	`, status, id)
	return err
}

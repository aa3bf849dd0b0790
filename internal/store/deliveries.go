package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyashahama/wellness-notifier/internal/db"
	"github.com/sqlc-dev/pqtype"
)

// Delivery statuses. They match the CHECK constraint on
// notification_deliveries.status.
const (
	StatusSent       = "sent"
	StatusFailed     = "failed"
	StatusSubscribed = "subscribed"
)

// ─── INPUT TYPES ─────────────────────────────────────────────────────────────

// Delivery is the outcome of one outbound call made while handling an event.
type Delivery struct {
	RunID         uuid.UUID
	DocumentID    string
	Handler       string // "results_notifier" | "mailing_list_sync"
	RecipientRole string // "original" | "client" | "practitioner" | "subscriber"
	Recipient     string
	Status        string
	Err           error
	ErrorBody     []byte // provider diagnostic payload; stored only when it is valid JSON
}

// Recorder persists delivery outcomes. *Store is the Postgres implementation;
// Discard is used when no database is configured.
type Recorder interface {
	RecordDeliveries(ctx context.Context, deliveries ...Delivery) error
}

// Discard is a Recorder that drops everything.
type Discard struct{}

// RecordDeliveries implements Recorder.
func (Discard) RecordDeliveries(context.Context, ...Delivery) error { return nil }

// ─── METHODS ─────────────────────────────────────────────────────────────────

// RecordDeliveries writes every outcome of one handler run in a single
// transaction, so a run is either fully logged or not logged at all.
func (s *Store) RecordDeliveries(ctx context.Context, deliveries ...Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}

	return s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		for _, d := range deliveries {
			if _, err := q.InsertDelivery(ctx, toInsertParams(d)); err != nil {
				return fmt.Errorf("RecordDeliveries: insert %s/%s: %w", d.Handler, d.RecipientRole, err)
			}
		}
		return nil
	})
}

// DeliveriesForDocument returns the audit trail for one upstream record,
// oldest first. Handlers never call it; it exists to verify the rows written
// by RecordDeliveries, in the integration tests and when tracing a document.
func (s *Store) DeliveriesForDocument(ctx context.Context, documentID string) ([]db.NotificationDelivery, error) {
	rows, err := s.q.ListDeliveriesByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("DeliveriesForDocument: %w", err)
	}
	return rows, nil
}

func toInsertParams(d Delivery) db.InsertDeliveryParams {
	p := db.InsertDeliveryParams{
		RunID:         d.RunID,
		DocumentID:    d.DocumentID,
		Handler:       d.Handler,
		RecipientRole: d.RecipientRole,
		Recipient:     d.Recipient,
		Status:        d.Status,
	}
	if d.Err != nil {
		p.ErrorMessage = sql.NullString{String: d.Err.Error(), Valid: true}
	}
	if len(d.ErrorBody) > 0 && json.Valid(d.ErrorBody) {
		p.ErrorBody = pqtype.NullRawMessage{RawMessage: d.ErrorBody, Valid: true}
	}
	return p
}

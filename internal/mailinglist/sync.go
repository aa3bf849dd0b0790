package mailinglist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nyashahama/wellness-notifier/internal/metrics"
	"github.com/nyashahama/wellness-notifier/internal/store"
	"github.com/nyashahama/wellness-notifier/internal/survey"
)

// HandlerName identifies the Syncer in logs, metrics and the audit table.
const HandlerName = "mailing_list_sync"

// DefaultTags are attached to every subscriber forwarded from an assessment.
var DefaultTags = []string{"Wellness Assessment", "Newsletter"}

// ShouldSubscribe reports whether a record is forwarded to the mailing list.
//
// Both email and subscribeNewsletter must be present and truthy. Practitioner
// records never carry subscribeNewsletter, so its presence is what keeps them
// out even when they also happen to have an email field.
func ShouldSubscribe(rec survey.Record) bool {
	return rec.Email.Present() && rec.Email.Truthy() &&
		rec.SubscribeNewsletter.Present() && rec.SubscribeNewsletter.Truthy()
}

// Syncer forwards newsletter opt-ins to the mailing list. It is best-effort:
// failures are logged and dropped, never retried.
type Syncer struct {
	client   Client
	tags     []string
	recorder store.Recorder
	logger   *slog.Logger
}

// NewSyncer constructs a Syncer. recorder may be nil.
func NewSyncer(client Client, recorder store.Recorder, logger *slog.Logger) *Syncer {
	if recorder == nil {
		recorder = store.Discard{}
	}
	return &Syncer{
		client:   client,
		tags:     DefaultTags,
		recorder: recorder,
		logger:   logger,
	}
}

// Name implements trigger.Handler.
func (s *Syncer) Name() string { return HandlerName }

// Sync forwards the record if it qualifies. It reports whether an upsert was
// attempted, and the API error if that attempt failed.
func (s *Syncer) Sync(ctx context.Context, ev survey.Event) (bool, error) {
	if !ShouldSubscribe(ev.Record) {
		return false, nil
	}

	addr := ev.Record.Email.Value()
	err := s.client.UpsertMember(ctx, Member{
		EmailAddress: addr,
		Status:       StatusSubscribed,
		StatusIfNew:  StatusSubscribed,
		Tags:         s.tags,
	})

	d := store.Delivery{
		RunID:         uuid.New(),
		DocumentID:    ev.DocumentID,
		Handler:       HandlerName,
		RecipientRole: "subscriber",
		Recipient:     addr,
		Status:        store.StatusSubscribed,
	}
	if err != nil {
		d.Status = store.StatusFailed
		d.Err = err
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			d.ErrorBody = apiErr.Body
		}
	}
	s.record(ctx, d)

	return true, err
}

// Handle implements trigger.Handler. It never returns an error: a mailing-list
// failure must not cause the event source to redeliver the record.
func (s *Syncer) Handle(ctx context.Context, ev survey.Event) error {
	log := s.logger.With("handler", HandlerName, "document_id", ev.DocumentID)

	attempted, err := s.Sync(ctx, ev)
	switch {
	case !attempted:
		metrics.MailingListSync.WithLabelValues("skipped").Inc()
		log.Info("mailinglist: record not eligible, skipping",
			"has_email", ev.Record.Email.Present(),
			"has_subscribe_field", ev.Record.SubscribeNewsletter.Present(),
		)

	case err != nil:
		metrics.MailingListSync.WithLabelValues("failed").Inc()
		attrs := []any{"error", err}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			attrs = append(attrs,
				"status", apiErr.StatusCode,
				"title", apiErr.Title,
				"detail", apiErr.Detail,
				"response_body", string(apiErr.Body),
			)
		}
		log.Error("mailinglist: upsert failed", attrs...)

	default:
		metrics.MailingListSync.WithLabelValues("subscribed").Inc()
		log.Info("mailinglist: subscriber upserted",
			"subscriber_hash", SubscriberHash(ev.Record.Email.Value()),
		)
	}

	return nil
}

// record writes the audit row on a detached context so a cancelled request
// does not lose the outcome of a call that already happened.
func (s *Syncer) record(ctx context.Context, d store.Delivery) {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.RecordDeliveries(recCtx, d); err != nil {
		s.logger.Warn("mailinglist: could not record delivery", "document_id", d.DocumentID, "error", err)
	}
}

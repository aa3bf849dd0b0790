package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nyashahama/wellness-notifier/internal/email"
	"github.com/nyashahama/wellness-notifier/internal/metrics"
	"github.com/nyashahama/wellness-notifier/internal/store"
	"github.com/nyashahama/wellness-notifier/internal/survey"
)

// HandlerName identifies the Notifier in logs, metrics and the audit table.
const HandlerName = "results_notifier"

// Notifier emails survey results to every recipient of a record.
type Notifier struct {
	sender   email.Sender
	opts     RenderOptions
	recorder store.Recorder
	logger   *slog.Logger
}

// NewNotifier constructs a Notifier. recorder may be nil.
func NewNotifier(sender email.Sender, opts RenderOptions, recorder store.Recorder, logger *slog.Logger) *Notifier {
	if recorder == nil {
		recorder = store.Discard{}
	}
	return &Notifier{
		sender:   sender,
		opts:     opts,
		recorder: recorder,
		logger:   logger,
	}
}

// Name implements trigger.Handler.
func (n *Notifier) Name() string { return HandlerName }

// Notify sends one email per recipient, all at once, and waits for every send
// to finish. A failed send does not cancel the others; the run fails as a
// whole with the first error observed. A record with no recipients is a
// successful no-op.
func (n *Notifier) Notify(ctx context.Context, ev survey.Event) error {
	tasks := Recipients(ev.Record)
	if len(tasks) == 0 {
		n.logger.Info("notify: no recipients, nothing to send", "document_id", ev.DocumentID)
		return nil
	}

	runID := uuid.New()
	outcomes := make([]store.Delivery, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			err := n.send(ctx, task, ev.Record)
			outcomes[i] = n.outcome(runID, ev.DocumentID, task, err)
			if err != nil {
				return fmt.Errorf("notify: send %s email: %w", task.Role, err)
			}
			return nil
		})
	}
	err := g.Wait()

	n.record(ctx, ev.DocumentID, outcomes)
	return err
}

func (n *Notifier) send(ctx context.Context, task Task, rec survey.Record) error {
	log := n.logger.With("role", task.Role, "to", task.Address)

	msg, err := Render(task, rec, n.opts)
	if err != nil {
		metrics.EmailsSent.WithLabelValues(string(task.Role), store.StatusFailed).Inc()
		log.Error("notify: render failed", "error", err)
		return err
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		metrics.EmailsSent.WithLabelValues(string(task.Role), store.StatusFailed).Inc()
		log.Error("notify: send failed", errorAttrs(err)...)
		return err
	}

	metrics.EmailsSent.WithLabelValues(string(task.Role), store.StatusSent).Inc()
	log.Info("notify: email sent", "subject", msg.Subject)
	return nil
}

func (n *Notifier) outcome(runID uuid.UUID, documentID string, task Task, err error) store.Delivery {
	d := store.Delivery{
		RunID:         runID,
		DocumentID:    documentID,
		Handler:       HandlerName,
		RecipientRole: string(task.Role),
		Recipient:     task.Address,
		Status:        store.StatusSent,
	}
	if err != nil {
		d.Status = store.StatusFailed
		d.Err = err
		var apiErr *email.APIError
		if errors.As(err, &apiErr) {
			d.ErrorBody = apiErr.Body
		}
	}
	return d
}

// record writes the audit rows on a detached context so a cancelled request
// does not lose the outcome of sends that already happened.
func (n *Notifier) record(ctx context.Context, documentID string, outcomes []store.Delivery) {
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := n.recorder.RecordDeliveries(recCtx, outcomes...); err != nil {
		n.logger.Warn("notify: could not record deliveries", "document_id", documentID, "error", err)
	}
}

// Handle implements trigger.Handler. The aggregate failure is logged with the
// provider's diagnostic body and then dropped: one bad recipient must not
// make the event source redeliver to the others.
func (n *Notifier) Handle(ctx context.Context, ev survey.Event) error {
	if err := n.Notify(ctx, ev); err != nil {
		attrs := append([]any{"handler", HandlerName, "document_id", ev.DocumentID}, errorAttrs(err)...)
		n.logger.Error("notify: results run failed", attrs...)
	}
	return nil
}

func errorAttrs(err error) []any {
	attrs := []any{"error", err}
	var apiErr *email.APIError
	if errors.As(err, &apiErr) {
		attrs = append(attrs,
			"status", apiErr.StatusCode,
			"error_name", apiErr.Name,
			"response_body", string(apiErr.Body),
		)
	}
	return attrs
}

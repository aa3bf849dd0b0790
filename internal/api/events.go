package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nyashahama/wellness-notifier/internal/metrics"
	"github.com/nyashahama/wellness-notifier/internal/survey"
)

// ─── REQUEST / RESPONSE TYPES ─────────────────────────────────────────────────

// eventEnvelope is one "record created" delivery from the event source.
type eventEnvelope struct {
	DocumentID string          `json:"document_id" validate:"required,max=1500"`
	Data       json.RawMessage `json:"data" validate:"required"`
}

type eventResponse struct {
	Status     string `json:"status"`
	DocumentID string `json:"document_id"`
}

// ─── POST /api/events/survey-responses ────────────────────────────────────────

// handleSurveyResponse decodes one event and runs every handler on it before
// answering. Handler failures are non-fatal and still yield 200; only a
// handler panic yields 500, which lets the event source redeliver.
func (s *Server) handleSurveyResponse(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(env); err != nil {
		respond(w, http.StatusBadRequest, validationBody(err))
		return
	}
	if bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		respondErr(w, http.StatusBadRequest, "data: must be an object")
		return
	}

	var rec survey.Record
	if err := json.Unmarshal(env.Data, &rec); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid survey record: "+err.Error())
		return
	}

	metrics.EventsReceived.Inc()
	ev := survey.Event{DocumentID: env.DocumentID, Record: rec}

	if err := s.dispatcher.Dispatch(r.Context(), ev); err != nil {
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, eventResponse{Status: "processed", DocumentID: env.DocumentID})
}

// validationError is the 400 payload for an envelope that fails validation.
type validationError struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

// validationBody converts a validator error into a validationError, keyed by
// JSON field name.
func validationBody(err error) validationError {
	fields := map[string][]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], fe.Tag())
		}
	}
	if len(fields) == 0 {
		return validationError{Error: err.Error(), Fields: fields}
	}
	return validationError{Error: "validation_failed", Fields: fields}
}

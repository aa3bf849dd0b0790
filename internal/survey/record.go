// Package survey defines the immutable survey-response record delivered by the
// "record created" event, and the presence-aware field type used to tell a
// single-respondent submission apart from a practitioner submission.
//
// It is intentionally dependency-free: it imports nothing from internal/.
package survey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ─── OPTIONAL FIELD ───────────────────────────────────────────────────────────

// Optional records whether a JSON key appeared in the payload at all, separate
// from its value. A key sent as null is Present but not Valid.
//
// Routing decisions in this service are made on presence ("does the record
// have a clientEmail field?"), not on value truthiness, so a plain pointer is
// not enough: a pointer cannot tell `"clientEmail": null` from a missing key.
type Optional[T comparable] struct {
	value   T
	present bool
	valid   bool
}

// Some returns a present, non-null Optional holding v.
func Some[T comparable](v T) Optional[T] {
	return Optional[T]{value: v, present: true, valid: true}
}

// Null returns an Optional whose key was present with a null value.
func Null[T comparable]() Optional[T] {
	return Optional[T]{present: true}
}

// Present reports whether the key appeared in the payload, including as null.
func (o Optional[T]) Present() bool { return o.present }

// Get returns the value and true when the key was present with a non-null
// value.
func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }

// Value returns the held value, or the zero value when absent or null.
func (o Optional[T]) Value() T { return o.value }

// Truthy reports whether the field is present, non-null and not the zero
// value of T: a non-empty string, a true bool.
func (o Optional[T]) Truthy() bool {
	var zero T
	return o.valid && o.value != zero
}

// UnmarshalJSON marks the field present. encoding/json calls it for explicit
// nulls too, which is what lets Present distinguish null from absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value, o.valid = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}

// ─── TIMESTAMP ────────────────────────────────────────────────────────────────

// Timestamp is the submission time. Upstream exporters disagree on the wire
// shape, so UnmarshalJSON accepts:
//
//	"2026-10-19T08:30:00Z"                       RFC 3339 string
//	1792398600000                                 epoch milliseconds
//	{"seconds": 1792398600, "nanos": 0}           protobuf-style object
//	{"_seconds": 1792398600, "_nanoseconds": 0}   Firestore admin JSON
type Timestamp struct {
	time.Time
}

type timestampObject struct {
	Seconds  *int64 `json:"seconds"`
	Nanos    int64  `json:"nanos"`
	USeconds *int64 `json:"_seconds"`
	UNanos   int64  `json:"_nanoseconds"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("survey: empty timestamp")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("survey: timestamp string: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("survey: timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil

	case '{':
		var obj timestampObject
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("survey: timestamp object: %w", err)
		}
		switch {
		case obj.Seconds != nil:
			t.Time = time.Unix(*obj.Seconds, obj.Nanos).UTC()
		case obj.USeconds != nil:
			t.Time = time.Unix(*obj.USeconds, obj.UNanos).UTC()
		default:
			return fmt.Errorf("survey: timestamp object has no seconds field")
		}
		return nil

	default:
		ms, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("survey: timestamp %s: %w", data, err)
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}
}

// ─── RECORD ───────────────────────────────────────────────────────────────────

// Record is one survey response as written by the assessment front-end. It is
// read-only: handlers never mutate it.
//
// A single-respondent submission carries Email and SubscribeNewsletter. A
// practitioner-administered submission carries ClientEmail and/or
// PractitionerEmail and never sets SubscribeNewsletter.
type Record struct {
	Email               Optional[string]    `json:"email"`
	SubscribeNewsletter Optional[bool]      `json:"subscribeNewsletter"`
	ClientEmail         Optional[string]    `json:"clientEmail"`
	PractitionerEmail   Optional[string]    `json:"practitionerEmail"`
	TotalScore          float64             `json:"totalScore"`
	DomainScores        map[string]float64  `json:"domainScores"`
	Timestamp           Optional[Timestamp] `json:"timestamp"`
}

// IsPractitionerSubmission reports whether the record was administered by a
// practitioner. Presence of either field decides, regardless of value.
func (r Record) IsPractitionerSubmission() bool {
	return r.PractitionerEmail.Present() || r.ClientEmail.Present()
}

// SubmittedAt returns the record timestamp, if one was sent.
func (r Record) SubmittedAt() (time.Time, bool) {
	ts, ok := r.Timestamp.Get()
	if !ok {
		return time.Time{}, false
	}
	return ts.Time, true
}

// Event is a single "record created" delivery. DocumentID is the upstream
// store's opaque identifier for the new record.
type Event struct {
	DocumentID string
	Record     Record
}

// Package classifier turns free-text and voice chat messages into structured
// order proposals using a large language model.
//
// The model is asked for a strict JSON document; ParseResponse validates it
// and drops malformed fields instead of failing the whole message.
package classifier

import (
	"context"
	"errors"
)

// ErrMalformedResponse is returned when the model reply is not the expected
// JSON document.
var ErrMalformedResponse = errors.New("malformed classifier response")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty classifier response")

// Proposal is one order detected in a message. RequestedDate is YYYY-MM-DD
// and RequestedTime is HH:MM; either may be nil.
type Proposal struct {
	Priority      string
	RequestedDate *string
	RequestedTime *string
	ItemSummary   string
}

// Classification is the outcome of classifying one message.
type Classification struct {
	IsOrder bool
	Orders  []Proposal
}

// Classifier decides whether text contains orders.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}

// Transcriber converts a voice note to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

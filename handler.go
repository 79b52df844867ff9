package fanout

import (
	"bytes"
	"io"
	"iter"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// BodyFunc returns a fresh reader over a message's payload on every call.
type BodyFunc func() (io.Reader, error)

func bytesBody(b []byte) BodyFunc {
	return func() (io.Reader, error) {
		return bytes.NewReader(b), nil
	}
}

func stringBody(s string) BodyFunc {
	return func() (io.Reader, error) {
		return strings.NewReader(s), nil
	}
}

func failingBody(err error) BodyFunc {
	return func() (io.Reader, error) {
		return nil, err
	}
}

// EventHandler adapts one source shape. B is the materialized batch type and
// M the record type it carries.
type EventHandler[B, M any] interface {
	// Messages yields the batch's records in wire order. A nil batch
	// yields nothing.
	Messages(batch B) iter.Seq[M]

	// Identifier returns the key the platform expects back for a failed
	// record.
	Identifier(msg M) string

	// Body returns the record's payload.
	Body(msg M) BodyFunc

	// Response builds the partial batch response for the given failed
	// identifiers, or returns false when nothing should be written.
	Response(failures []string, cfg Config) (any, bool)

	// MessageType tags M.
	MessageType() MessageType
}

// Message is one record of a batch, independent of its source.
type Message struct {
	ID    string
	Value any
	Body  BodyFunc
}

// sourceHandler wraps a typed handler so we can store handlers of different
// types in a single map.
type sourceHandler interface {
	messages(batch any) (iter.Seq[Message], error)
	response(failures []string, cfg Config) (any, bool)
	messageType() MessageType
}

func bind[B, M any](h EventHandler[B, M]) sourceHandler {
	return boundHandler[B, M]{h: h}
}

type boundHandler[B, M any] struct {
	h EventHandler[B, M]
}

func (b boundHandler[B, M]) messages(batch any) (iter.Seq[Message], error) {
	var typed B
	if batch != nil {
		v, ok := batch.(B)
		if !ok {
			return nil, errors.Errorf("batch is %T, want %T", batch, typed)
		}
		typed = v
	}
	return func(yield func(Message) bool) {
		for m := range b.h.Messages(typed) {
			msg := Message{ID: b.h.Identifier(m), Value: m, Body: b.h.Body(m)}
			if !yield(msg) {
				return
			}
		}
	}, nil
}

func (b boundHandler[B, M]) response(failures []string, cfg Config) (any, bool) {
	return b.h.Response(failures, cfg)
}

func (b boundHandler[B, M]) messageType() MessageType {
	return b.h.MessageType()
}

// handlers is the shape lookup used by every Processor.
var handlers = map[Shape]sourceHandler{
	ShapeSQS:           bind[*events.SQSEvent, events.SQSMessage](sqsHandler{}),
	ShapePipesSQS:      bind[[]events.SQSMessage, events.SQSMessage](pipesSQSHandler{}),
	ShapeSNS:           bind[*events.SNSEvent, events.SNSEventRecord](snsHandler{}),
	ShapeKinesis:       bind[*events.KinesisEvent, events.KinesisEventRecord](kinesisHandler{}),
	ShapePipesKinesis:  bind[[]PipesKinesisRecord, PipesKinesisRecord](pipesKinesisHandler{}),
	ShapeDynamoDB:      bind[*events.DynamoDBEvent, events.DynamoDBEventRecord](dynamoDBHandler{}),
	ShapePipesDynamoDB: bind[[]events.DynamoDBEventRecord, events.DynamoDBEventRecord](pipesDynamoDBHandler{}),
	ShapeCloudEvents:   bind[[]CloudEvent, CloudEvent](cloudEventsHandler{}),
}

// itemFailures maps failed identifiers to a response's failure entries. The
// result is never nil so empty lists encode as [].
func itemFailures[T any](failures []string, entry func(id string) T) []T {
	out := make([]T, 0, len(failures))
	for _, id := range failures {
		out = append(out, entry(id))
	}
	return out
}

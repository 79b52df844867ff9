package fanout

import (
	"iter"
	"slices"

	"github.com/aws/aws-lambda-go/events"
)

type sqsHandler struct{}

func (sqsHandler) Messages(e *events.SQSEvent) iter.Seq[events.SQSMessage] {
	if e == nil {
		return slices.Values([]events.SQSMessage(nil))
	}
	return slices.Values(e.Records)
}

func (sqsHandler) Identifier(m events.SQSMessage) string {
	return m.MessageId
}

func (sqsHandler) Body(m events.SQSMessage) BodyFunc {
	return stringBody(m.Body)
}

func (sqsHandler) Response(failures []string, cfg Config) (any, bool) {
	if !cfg.AdvancedEventHandling.SQS.ReportBatchItemFailures {
		return nil, false
	}
	return events.SQSEventResponse{
		BatchItemFailures: itemFailures(failures, func(id string) events.SQSBatchItemFailure {
			return events.SQSBatchItemFailure{ItemIdentifier: id}
		}),
	}, true
}

func (sqsHandler) MessageType() MessageType {
	return MessageSQS
}

// pipesSQSHandler handles SQS messages re-wrapped by EventBridge Pipes as a
// bare array.
type pipesSQSHandler struct {
	sqsHandler
}

func (pipesSQSHandler) Messages(batch []events.SQSMessage) iter.Seq[events.SQSMessage] {
	return slices.Values(batch)
}

package fanout

import (
	"iter"
	"slices"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// ErrUnsupportedBody is returned for DynamoDB stream records, which have no
// body to decode into a function input. Functions consuming DynamoDB streams
// must take events.DynamoDBEventRecord, or run with advanced event handling
// disabled.
var ErrUnsupportedBody = errors.New("dynamodb stream records cannot be decoded into a function input")

type dynamoDBHandler struct{}

func (dynamoDBHandler) Messages(e *events.DynamoDBEvent) iter.Seq[events.DynamoDBEventRecord] {
	if e == nil {
		return slices.Values([]events.DynamoDBEventRecord(nil))
	}
	return slices.Values(e.Records)
}

func (dynamoDBHandler) Identifier(r events.DynamoDBEventRecord) string {
	return r.Change.SequenceNumber
}

func (dynamoDBHandler) Body(events.DynamoDBEventRecord) BodyFunc {
	return failingBody(ErrUnsupportedBody)
}

func (dynamoDBHandler) Response(failures []string, cfg Config) (any, bool) {
	if !cfg.AdvancedEventHandling.DynamoDB.ReportBatchItemFailures {
		return nil, false
	}
	return events.DynamoDBEventResponse{
		BatchItemFailures: itemFailures(failures, func(id string) events.DynamoDBBatchItemFailure {
			return events.DynamoDBBatchItemFailure{ItemIdentifier: id}
		}),
	}, true
}

func (dynamoDBHandler) MessageType() MessageType {
	return MessageDynamoDB
}

type pipesDynamoDBHandler struct {
	dynamoDBHandler
}

func (pipesDynamoDBHandler) Messages(batch []events.DynamoDBEventRecord) iter.Seq[events.DynamoDBEventRecord] {
	return slices.Values(batch)
}

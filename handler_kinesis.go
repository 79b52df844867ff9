package fanout

import (
	"iter"
	"slices"

	"github.com/aws/aws-lambda-go/events"
)

type kinesisHandler struct{}

func (kinesisHandler) Messages(e *events.KinesisEvent) iter.Seq[events.KinesisEventRecord] {
	if e == nil {
		return slices.Values([]events.KinesisEventRecord(nil))
	}
	return slices.Values(e.Records)
}

func (kinesisHandler) Identifier(r events.KinesisEventRecord) string {
	return r.Kinesis.SequenceNumber
}

func (kinesisHandler) Body(r events.KinesisEventRecord) BodyFunc {
	return bytesBody(r.Kinesis.Data)
}

func (kinesisHandler) Response(failures []string, cfg Config) (any, bool) {
	return kinesisResponse(failures, cfg)
}

func (kinesisHandler) MessageType() MessageType {
	return MessageKinesis
}

type pipesKinesisHandler struct{}

func (pipesKinesisHandler) Messages(batch []PipesKinesisRecord) iter.Seq[PipesKinesisRecord] {
	return slices.Values(batch)
}

func (pipesKinesisHandler) Identifier(r PipesKinesisRecord) string {
	return r.SequenceNumber
}

func (pipesKinesisHandler) Body(r PipesKinesisRecord) BodyFunc {
	return bytesBody(r.Data)
}

func (pipesKinesisHandler) Response(failures []string, cfg Config) (any, bool) {
	return kinesisResponse(failures, cfg)
}

func (pipesKinesisHandler) MessageType() MessageType {
	return MessagePipesKinesis
}

func kinesisResponse(failures []string, cfg Config) (any, bool) {
	if !cfg.AdvancedEventHandling.Kinesis.ReportBatchItemFailures {
		return nil, false
	}
	return events.KinesisEventResponse{
		BatchItemFailures: itemFailures(failures, func(id string) events.KinesisBatchItemFailure {
			return events.KinesisBatchItemFailure{ItemIdentifier: id}
		}),
	}, true
}

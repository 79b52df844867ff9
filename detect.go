package fanout

const (
	sourceTagField       = "eventSource"
	legacySourceTagField = "EventSource"
	defaultSourceTag     = "default"
	cloudEventsVersion   = "1.0"
)

// shapeRule resolves the shape for a known source tag. The container is the
// value the record was taken from: the outer object for native deliveries,
// the bare array for EventBridge Pipes.
type shapeRule func(record, container View) Shape

// sourceShapes maps source tags to their shapes.
// See https://docs.aws.amazon.com/lambda/latest/dg/lambda-services.html and
// https://docs.aws.amazon.com/eventbridge/latest/userguide/eb-pipes-event-source.html
var sourceShapes = map[string]shapeRule{
	"aws:sqs":      viaPipes(ShapeSQS, ShapePipesSQS),
	"aws:sns":      func(View, View) Shape { return ShapeSNS },
	"aws:kinesis":  kinesisShape,
	"aws:dynamodb": viaPipes(ShapeDynamoDB, ShapePipesDynamoDB),
}

var (
	// Kinesis tumbling window deliveries expect a stateful response.
	windowed   = Or(HasFields("window"), HasFields("isFinalInvokeForWindow"))
	unwindowed = Not(windowed)

	// EventBridge Pipes deliver records in a bare array.
	piped = IsArray()

	// Required attributes of https://github.com/cloudevents/spec/blob/v1.0.2/cloudevents/spec.md
	cloudEvent = And(FieldEquals("specversion", cloudEventsVersion), HasFields("type"))
)

func viaPipes(native, pipes Shape) shapeRule {
	return func(_, container View) Shape {
		if matches(piped, container) {
			return pipes
		}
		return native
	}
}

func kinesisShape(record, container View) Shape {
	switch {
	case windowed.Match(record):
		return ShapeUnknown
	case matches(piped, container):
		return ShapePipesKinesis
	case container == nil || unwindowed.Match(container):
		return ShapeKinesis
	}
	return ShapeUnknown
}

// matches is d.Match with a nil view never matching.
func matches(d Discriminator, v View) bool {
	return v != nil && d.Match(v)
}

// SourceTag returns the record's event source, preferring eventSource over
// the capitalized EventSource used by SNS. Records without either report
// "default".
func SourceTag(record View) string {
	if s, ok := record.GetString(sourceTagField); ok {
		return s
	}
	if s, ok := record.GetString(legacySourceTagField); ok {
		return s
	}
	return defaultSourceTag
}

// Detect classifies a batch by its first record and the container holding
// it. A payload never mixes shapes, so one record decides for the batch.
func Detect(record, container View) Shape {
	if record == nil {
		return ShapeUnknown
	}
	if rule, ok := sourceShapes[SourceTag(record)]; ok {
		return rule(record, container)
	}
	if cloudEvent.Match(record) {
		return ShapeCloudEvents
	}
	return ShapeUnknown
}

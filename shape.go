package fanout

// Shape identifies the wire format family of an incoming payload.
type Shape int

const (
	// ShapeUnknown is any payload the detector does not recognize. Unknown
	// payloads are decoded directly into the function's input.
	ShapeUnknown Shape = iota
	ShapeSQS
	ShapePipesSQS
	ShapeSNS
	ShapeKinesis
	ShapePipesKinesis
	ShapeDynamoDB
	ShapePipesDynamoDB
	ShapeCloudEvents
)

var shapeNames = [...]string{
	ShapeUnknown:       "unknown",
	ShapeSQS:           "sqs",
	ShapePipesSQS:      "pipes-sqs",
	ShapeSNS:           "sns",
	ShapeKinesis:       "kinesis",
	ShapePipesKinesis:  "pipes-kinesis",
	ShapeDynamoDB:      "dynamodb",
	ShapePipesDynamoDB: "pipes-dynamodb",
	ShapeCloudEvents:   "cloudevents",
}

// String returns the stable name used in logs and hooks.
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// Batched reports whether payloads of this shape are split into messages.
func (s Shape) Batched() bool {
	return s != ShapeUnknown
}

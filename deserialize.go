package fanout

import (
	"bytes"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Envelope is a decoded payload. Batched shapes carry their materialized
// batch; ShapeUnknown carries the payload decoded as the function's input.
type Envelope struct {
	Shape Shape
	Value any
}

// Deserializer turns raw payloads into Envelopes.
type Deserializer struct {
	inspector Inspector
	codec     Codec
	fn        *Function
	advanced  bool
}

// NewDeserializer creates a Deserializer for fn. With advanced set to false
// every payload is decoded directly into fn's input.
func NewDeserializer(fn *Function, codec Codec, advanced bool) *Deserializer {
	return &Deserializer{
		inspector: JSONInspector(),
		codec:     codec,
		fn:        fn,
		advanced:  advanced,
	}
}

// Deserialize detects the payload's shape and decodes it. It fails with
// ErrInvalidJSON when raw is not JSON.
func (d *Deserializer) Deserialize(raw []byte) (Envelope, error) {
	root, err := d.inspector.Inspect(raw)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "read event")
	}

	if d.advanced {
		if shape := sniff(root); shape.Batched() {
			batch, err := materializers[shape](d.codec, raw)
			if err != nil {
				return Envelope{}, errors.Wrapf(err, "decode %s batch", shape)
			}
			return Envelope{Shape: shape, Value: batch}, nil
		}
	}

	// We have no clue what it is, hand it to the function as-is.
	v, err := d.direct(raw)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Shape: ShapeUnknown, Value: v}, nil
}

func (d *Deserializer) direct(raw []byte) (any, error) {
	if d.fn == nil {
		return nil, nil
	}
	v, err := d.fn.Decode(d.codec, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "decode input of function %s", d.fn.Name())
	}
	return v, nil
}

// DetectPayload reports the shape of a raw payload.
func DetectPayload(raw []byte) (Shape, error) {
	root, err := JSONInspector().Inspect(raw)
	if err != nil {
		return ShapeUnknown, err
	}
	return sniff(root), nil
}

// sniff finds the first record of a batch container and detects its shape.
// Native deliveries wrap records in an object's "Records" array; EventBridge
// Pipes deliver a bare array.
func sniff(root View) Shape {
	switch {
	case root.IsObject():
		records, ok := root.Field("Records")
		if !ok || !records.IsArray() {
			return ShapeUnknown
		}
		first, ok := records.Field("0")
		if !ok {
			return ShapeUnknown
		}
		return Detect(first, root)
	case root.IsArray():
		first, ok := root.Field("0")
		if !ok {
			return ShapeUnknown
		}
		return Detect(first, root)
	}
	return ShapeUnknown
}

type materializer func(c Codec, raw []byte) (any, error)

var materializers = map[Shape]materializer{
	ShapeSQS:           decodeEvent[events.SQSEvent],
	ShapePipesSQS:      decodeList[events.SQSMessage],
	ShapeSNS:           decodeSNS,
	ShapeKinesis:       decodeKinesis,
	ShapePipesKinesis:  decodeList[PipesKinesisRecord],
	ShapeDynamoDB:      decodeEvent[events.DynamoDBEvent],
	ShapePipesDynamoDB: decodeList[events.DynamoDBEventRecord],
	ShapeCloudEvents:   decodeCloudEvents,
}

func decodeEvent[E any](c Codec, raw []byte) (any, error) {
	var e E
	if err := c.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func decodeList[M any](c Codec, raw []byte) (any, error) {
	var list []M
	if err := c.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func decodeSNS(c Codec, raw []byte) (any, error) {
	if !gjson.ParseBytes(raw).IsArray() {
		return decodeEvent[events.SNSEvent](c, raw)
	}
	var records []events.SNSEventRecord
	if err := c.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return &events.SNSEvent{Records: records}, nil
}

func decodeCloudEvents(c Codec, raw []byte) (any, error) {
	if gjson.ParseBytes(raw).IsArray() {
		return decodeList[CloudEvent](c, raw)
	}
	var env struct {
		Records []CloudEvent `json:"Records"`
	}
	if err := c.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	return env.Records, nil
}

// decodeKinesis decodes a native Kinesis event and re-reads every
// approximateArrivalTimestamp at millisecond resolution.
func decodeKinesis(c Codec, raw []byte) (any, error) {
	var e events.KinesisEvent
	if err := c.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	i := 0
	gjson.GetBytes(raw, "Records").ForEach(func(_, record gjson.Result) bool {
		if i >= len(e.Records) {
			return false
		}
		ts := record.Get("kinesis.approximateArrivalTimestamp")
		if ts.Type == gjson.Number {
			e.Records[i].Kinesis.ApproximateArrivalTimestamp = events.SecondsEpochTime{Time: epochMillis(ts.Float())}
		}
		i++
		return true
	})
	return &e, nil
}

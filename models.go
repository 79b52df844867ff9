package fanout

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MillisTime is an epoch timestamp sent as fractional seconds and kept at
// millisecond resolution. The fraction beyond milliseconds is truncated.
type MillisTime struct {
	time.Time
}

// UnmarshalJSON decodes fractional epoch seconds.
func (t *MillisTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	seconds, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return errors.Wrapf(err, "decode epoch seconds %s", b)
	}
	t.Time = epochMillis(seconds)
	return nil
}

// MarshalJSON encodes the timestamp as fractional epoch seconds.
func (t MillisTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(t.UnixMilli())/1000, 'f', -1, 64), nil
}

func epochMillis(seconds float64) time.Time {
	return time.UnixMilli(int64(seconds * 1000)).UTC()
}

// PipesKinesisRecord is a Kinesis record as EventBridge Pipes delivers it:
// flattened, without the nested "kinesis" object of native deliveries.
type PipesKinesisRecord struct {
	EventSource                 string     `json:"eventSource"`
	EventVersion                string     `json:"eventVersion"`
	EventID                     string     `json:"eventID"`
	EventName                   string     `json:"eventName"`
	InvokeIdentityArn           string     `json:"invokeIdentityArn"`
	AwsRegion                   string     `json:"awsRegion"`
	EventSourceArn              string     `json:"eventSourceARN"`
	KinesisSchemaVersion        string     `json:"kinesisSchemaVersion"`
	PartitionKey                string     `json:"partitionKey"`
	SequenceNumber              string     `json:"sequenceNumber"`
	Data                        []byte     `json:"data"`
	ApproximateArrivalTimestamp MillisTime `json:"approximateArrivalTimestamp"`
}

// CloudEvent is a CloudEvents v1.0 event in structured JSON mode.
// Attributes outside the core set are kept in Extensions.
type CloudEvent struct {
	ID              string                     `json:"id"`
	Source          string                     `json:"source"`
	SpecVersion     string                     `json:"specversion"`
	Type            string                     `json:"type"`
	DataContentType string                     `json:"datacontenttype,omitempty"`
	DataSchema      string                     `json:"dataschema,omitempty"`
	Subject         string                     `json:"subject,omitempty"`
	Time            *time.Time                 `json:"time,omitempty"`
	Data            json.RawMessage            `json:"data,omitempty"`
	DataBase64      []byte                     `json:"data_base64,omitempty"`
	Extensions      map[string]json.RawMessage `json:"-"`
}

var cloudEventAttributes = map[string]struct{}{
	"id":              {},
	"source":          {},
	"specversion":     {},
	"type":            {},
	"datacontenttype": {},
	"dataschema":      {},
	"subject":         {},
	"time":            {},
	"data":            {},
	"data_base64":     {},
}

// UnmarshalJSON decodes the core attributes and collects extensions.
func (e *CloudEvent) UnmarshalJSON(b []byte) error {
	type plain CloudEvent
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(b, &attrs); err != nil {
		return err
	}
	for name, raw := range attrs {
		if _, core := cloudEventAttributes[name]; core {
			continue
		}
		if p.Extensions == nil {
			p.Extensions = make(map[string]json.RawMessage)
		}
		p.Extensions[name] = raw
	}
	*e = CloudEvent(p)
	return nil
}

// MarshalJSON encodes the core attributes with extensions inlined.
func (e CloudEvent) MarshalJSON() ([]byte, error) {
	type plain CloudEvent
	b, err := json.Marshal(plain(e))
	if err != nil || len(e.Extensions) == 0 {
		return b, err
	}
	var attrs map[string]json.RawMessage
	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, err
	}
	for name, raw := range e.Extensions {
		if _, core := cloudEventAttributes[name]; !core {
			attrs[name] = raw
		}
	}
	return json.Marshal(attrs)
}

// BatchItemFailures is the partial batch response understood by Lambda
// event source mappings and EventBridge Pipes.
type BatchItemFailures struct {
	BatchItemFailures []BatchItemFailure `json:"batchItemFailures"`
}

// BatchItemFailure names one failed message.
type BatchItemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

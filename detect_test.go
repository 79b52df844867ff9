package fanout

import (
	"testing"
)

func TestDetectPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Shape
	}{
		{"sqs", `{"Records": [{"eventSource": "aws:sqs", "messageId": "1"}]}`, ShapeSQS},
		{"pipes sqs", `[{"eventSource": "aws:sqs", "messageId": "1"}]`, ShapePipesSQS},
		{"sns", `{"Records": [{"EventSource": "aws:sns"}]}`, ShapeSNS},
		{"sns in array", `[{"EventSource": "aws:sns"}]`, ShapeSNS},
		{"kinesis", `{"Records": [{"eventSource": "aws:kinesis"}]}`, ShapeKinesis},
		{"pipes kinesis", `[{"eventSource": "aws:kinesis"}]`, ShapePipesKinesis},
		{"kinesis window on container", `{"Records": [{"eventSource": "aws:kinesis"}], "window": {}}`, ShapeUnknown},
		{"kinesis window on record", `[{"eventSource": "aws:kinesis", "window": {}}]`, ShapeUnknown},
		{"kinesis final window flag on container", `{"Records": [{"eventSource": "aws:kinesis"}], "isFinalInvokeForWindow": false}`, ShapeUnknown},
		{"kinesis final window flag on record", `[{"eventSource": "aws:kinesis", "isFinalInvokeForWindow": true}]`, ShapeUnknown},
		{"windowed sqs is still sqs", `{"Records": [{"eventSource": "aws:sqs"}], "window": {}}`, ShapeSQS},
		{"dynamodb", `{"Records": [{"eventSource": "aws:dynamodb"}]}`, ShapeDynamoDB},
		{"pipes dynamodb", `[{"eventSource": "aws:dynamodb"}]`, ShapePipesDynamoDB},
		{"cloudevents array", `[{"specversion": "1.0", "type": "t", "id": "1"}]`, ShapeCloudEvents},
		{"cloudevents records", `{"Records": [{"specversion": "1.0", "type": "t", "id": "1"}]}`, ShapeCloudEvents},
		{"cloudevents wrong version", `[{"specversion": "0.3", "type": "t"}]`, ShapeUnknown},
		{"cloudevents missing type", `[{"specversion": "1.0"}]`, ShapeUnknown},
		{"eventSource wins over EventSource", `[{"eventSource": "aws:sqs", "EventSource": "aws:sns"}]`, ShapePipesSQS},
		{"unknown source", `{"Records": [{"eventSource": "aws:s3"}]}`, ShapeUnknown},
		{"empty records", `{"Records": []}`, ShapeUnknown},
		{"records not array", `{"Records": {"eventSource": "aws:sqs"}}`, ShapeUnknown},
		{"empty array", `[]`, ShapeUnknown},
		{"array of scalars", `[1, 2]`, ShapeUnknown},
		{"plain object", `{"id": "1"}`, ShapeUnknown},
		{"scalar", `42`, ShapeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectPayload([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("shape = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		if _, err := DetectPayload([]byte(`[{`)); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestDetect(t *testing.T) {
	t.Run("nil record is unknown", func(t *testing.T) {
		if got := Detect(nil, nil); got != ShapeUnknown {
			t.Errorf("shape = %s, want unknown", got)
		}
	})

	t.Run("nil container is native", func(t *testing.T) {
		record := inspect(t, `{"eventSource": "aws:kinesis"}`)
		if got := Detect(record, nil); got != ShapeKinesis {
			t.Errorf("shape = %s, want kinesis", got)
		}
	})
}

func TestDetectRules(t *testing.T) {
	t.Run("nil container is native for every source", func(t *testing.T) {
		want := map[string]Shape{
			"aws:sqs":      ShapeSQS,
			"aws:sns":      ShapeSNS,
			"aws:kinesis":  ShapeKinesis,
			"aws:dynamodb": ShapeDynamoDB,
		}
		for tag, shape := range want {
			record := inspect(t, `{"eventSource": "`+tag+`"}`)
			if got := Detect(record, nil); got != shape {
				t.Errorf("%s: shape = %s, want %s", tag, got, shape)
			}
		}
	})

	t.Run("array container selects pipes", func(t *testing.T) {
		container := inspect(t, `[{"eventSource": "aws:dynamodb"}]`)
		record, _ := container.Field("0")
		if got := Detect(record, container); got != ShapePipesDynamoDB {
			t.Errorf("shape = %s, want pipes-dynamodb", got)
		}
	})
}

func TestSourceTag(t *testing.T) {
	tests := map[string]struct {
		raw  string
		want string
	}{
		"lower camel":  {`{"eventSource": "aws:sqs"}`, "aws:sqs"},
		"capitalized":  {`{"EventSource": "aws:sns"}`, "aws:sns"},
		"both":         {`{"eventSource": "aws:sqs", "EventSource": "aws:sns"}`, "aws:sqs"},
		"missing":      {`{"id": "1"}`, "default"},
		"not a string": {`{"eventSource": 7}`, "default"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := SourceTag(inspect(t, tt.raw)); got != tt.want {
				t.Errorf("tag = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShape(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		names := map[Shape]string{
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
		for shape, want := range names {
			if got := shape.String(); got != want {
				t.Errorf("String() = %q, want %q", got, want)
			}
		}
	})

	t.Run("every batched shape has a handler and materializer", func(t *testing.T) {
		for shape := ShapeSQS; shape <= ShapeCloudEvents; shape++ {
			if !shape.Batched() {
				t.Errorf("%s should be batched", shape)
			}
			if _, ok := handlers[shape]; !ok {
				t.Errorf("%s has no handler", shape)
			}
			if _, ok := materializers[shape]; !ok {
				t.Errorf("%s has no materializer", shape)
			}
		}
		if ShapeUnknown.Batched() {
			t.Error("unknown should not be batched")
		}
	})
}

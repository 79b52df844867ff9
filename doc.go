// Package fanout runs a single function over batched AWS Lambda events.
//
// A Lambda function wired to SQS, SNS, Kinesis, DynamoDB streams, EventBridge
// Pipes or CloudEvents receives one JSON payload holding many messages. The
// fanout package detects which source wrote the payload, splits it into
// messages, runs the function once per message concurrently, and answers
// with the source's partial batch response so the platform retries only the
// messages that failed.
//
// # Quick Start
//
// Write the function for one message:
//
//	type Order struct {
//	    ID    string `json:"id"`
//	    Total int    `json:"total"`
//	}
//
//	func handleOrder(ctx context.Context, o Order) error {
//	    return store.Save(ctx, o)
//	}
//
// and start it:
//
//	func main() {
//	    fanout.Start(fanout.ProcOf("orders", handleOrder))
//	}
//
// Every SQS message body is decoded into Order. When two of ten messages
// fail, the function answers
//
//	{"batchItemFailures":[{"itemIdentifier":"..."},{"itemIdentifier":"..."}]}
//
// # Shapes
//
// Payloads carry no field that reliably names their source. The detector
// looks at the first record of a batch, never at the rest:
//
//   - eventSource (or EventSource, as SNS spells it) selects SQS, SNS,
//     Kinesis or DynamoDB
//   - the container decides between native delivery (an object with a
//     "Records" array) and EventBridge Pipes (a bare array)
//   - records without a known source tag are CloudEvents when specversion
//     is "1.0" and type is present
//
// Anything else, including Kinesis tumbling window deliveries, is decoded
// directly into the function's input and the function runs once.
//
// Detection is built on the Inspector/View abstraction and composable
// discriminators:
//
//	cloudEvent := fanout.And(
//	    fanout.FieldEquals("specversion", "1.0"),
//	    fanout.HasFields("type"),
//	)
//
// # Inputs
//
// A function whose input type is the record type of the source receives the
// record itself:
//
//	fanout.ProcOf("audit", func(ctx context.Context, r events.DynamoDBEventRecord) error {
//	    return audit(ctx, r.Change.NewImage)
//	})
//
// Otherwise the record's body is decoded into the input type and validated
// if the type implements Validate() error. DynamoDB stream records have no
// body: a function consuming them must take events.DynamoDBEventRecord, or
// every message of the batch fails with ErrUnsupportedBody.
//
// # Responses
//
// SQS, Kinesis, DynamoDB and CloudEvents batches answer with a
// batchItemFailures list, empty when everything succeeded. Each source can
// turn the response off with its ReportBatchItemFailures setting, in which
// case nothing is written. SNS never writes a response.
//
// # Hooks
//
// Hooks provide observability without coupling to a metrics system:
//
//	p, err := fanout.New(fn,
//	    fanout.WithOnFailure(func(ctx context.Context, shape fanout.Shape, id string, err error, d time.Duration) {
//	        metrics.Incr("fanout.failure", "shape:"+shape.String())
//	    }),
//	)
//
// Available hooks:
//   - WithOnDetect: called after detection, enriches context
//   - WithOnDispatch: called just before the function runs for a message
//   - WithOnSuccess: called after the function succeeds
//   - WithOnFailure: called after a message fails
//   - WithOnBatchComplete: called once a batch has settled
//
// # Configuration
//
// Start reads Config from FANOUT_* environment variables:
//
//	FANOUT_EXPORT                                                     function to serve
//	FANOUT_LOG_LEVEL                                                  logrus level
//	FANOUT_ADVANCED_EVENT_HANDLING_ENABLED                            batch detection
//	FANOUT_ADVANCED_EVENT_HANDLING_SQS_REPORT_BATCH_ITEM_FAILURES     and KINESIS_, DYNAMODB_, CLOUDEVENTS_
//
// # Thread Safety
//
// Processor is safe for concurrent use. Hooks run on message goroutines and
// must be safe for concurrent use too.
package fanout

package fanout

import (
	"iter"
	"slices"

	"github.com/aws/aws-lambda-go/events"
)

// snsHandler has no partial batch response: SNS delivers one record per
// invocation and retries the invocation as a whole.
type snsHandler struct{}

func (snsHandler) Messages(e *events.SNSEvent) iter.Seq[events.SNSEventRecord] {
	if e == nil {
		return slices.Values([]events.SNSEventRecord(nil))
	}
	return slices.Values(e.Records)
}

func (snsHandler) Identifier(r events.SNSEventRecord) string {
	return r.SNS.MessageID
}

func (snsHandler) Body(r events.SNSEventRecord) BodyFunc {
	return stringBody(r.SNS.Message)
}

func (snsHandler) Response([]string, Config) (any, bool) {
	return nil, false
}

func (snsHandler) MessageType() MessageType {
	return MessageSNS
}
